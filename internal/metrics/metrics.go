// Package metrics exposes Prometheus metrics for the recompute loop.
//
// All Recorder methods are safe on a nil receiver so callers can pass a nil
// *Recorder when metrics are disabled.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-celestial/internal/logging"
)

// Recorder bundles the application's collectors.
type Recorder struct {
	gatherer prometheus.Gatherer

	Recomputes        prometheus.Counter
	RecomputeDuration prometheus.Histogram
	AboveHorizon      *prometheus.GaugeVec
	MaskedRows        *prometheus.GaugeVec
	HorizonEvents     *prometheus.CounterVec
}

// New registers the collectors against reg, defaulting to the global
// registry when nil.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	recomputes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lsc_recompute_total",
		Help: "Total number of sky snapshot recomputations.",
	}), "lsc_recompute_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lsc_recompute_duration_seconds",
		Help:    "Time spent computing one sky snapshot.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "lsc_recompute_duration_seconds")
	if err != nil {
		return nil, err
	}

	above, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lsc_objects_above_horizon",
		Help: "Catalog objects currently above the horizon.",
	}, []string{"catalog"}), "lsc_objects_above_horizon")
	if err != nil {
		return nil, err
	}

	masked, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lsc_catalog_masked_rows",
		Help: "Catalog rows whose coordinates failed to parse.",
	}, []string{"catalog"}), "lsc_catalog_masked_rows")
	if err != nil {
		return nil, err
	}

	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsc_horizon_events_total",
		Help: "Rise, set and culmination events observed between snapshots.",
	}, []string{"type"}), "lsc_horizon_events_total")
	if err != nil {
		return nil, err
	}

	return &Recorder{
		gatherer:          gatherer,
		Recomputes:        recomputes,
		RecomputeDuration: duration,
		AboveHorizon:      above,
		MaskedRows:        masked,
		HorizonEvents:     events,
	}, nil
}

// ObserveRecompute records one snapshot computation.
func (r *Recorder) ObserveRecompute(d time.Duration) {
	if r == nil {
		return
	}
	r.Recomputes.Inc()
	r.RecomputeDuration.Observe(d.Seconds())
}

// SetAboveHorizon sets the number of visible objects for a catalog.
func (r *Recorder) SetAboveHorizon(catalog string, n int) {
	if r == nil {
		return
	}
	r.AboveHorizon.WithLabelValues(catalog).Set(float64(n))
}

// SetMasked sets the number of masked rows for a catalog.
func (r *Recorder) SetMasked(catalog string, n int) {
	if r == nil {
		return
	}
	r.MaskedRows.WithLabelValues(catalog).Set(float64(n))
}

// CountEvent increments the counter for one horizon event type.
func (r *Recorder) CountEvent(eventType string) {
	if r == nil {
		return
	}
	r.HorizonEvents.WithLabelValues(eventType).Inc()
}

// Handler returns the /metrics handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if r != nil && r.gatherer != nil {
		gatherer = r.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, log *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
