package sky

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// ErrEmptyCron is returned for a blank cron expression.
var ErrEmptyCron = errors.New("empty cron expression")

// Scheduler drives periodic recomputation independently of rendering.
type Scheduler interface {
	// Start calls tick on every firing and blocks until ctx is done or
	// Stop is called.
	Start(ctx context.Context, tick func(time.Time)) error
	// Stop ends a running Start. It is safe to call more than once.
	Stop()
}

type stopper struct {
	once sync.Once
	ch   chan struct{}
	mu   sync.Mutex
}

func (s *stopper) done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

func (s *stopper) stop() {
	s.done()
	s.once.Do(func() { close(s.ch) })
}

// IntervalScheduler fires immediately and then every Interval.
type IntervalScheduler struct {
	Interval time.Duration
	stopper
}

// NewIntervalScheduler returns a scheduler firing every d.
func NewIntervalScheduler(d time.Duration) *IntervalScheduler {
	return &IntervalScheduler{Interval: d}
}

// Start implements Scheduler.
func (s *IntervalScheduler) Start(ctx context.Context, tick func(time.Time)) error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval scheduler: non-positive interval %v", s.Interval)
	}
	stop := s.done()

	tick(time.Now())

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case t := <-ticker.C:
			tick(t)
		}
	}
}

// Stop implements Scheduler.
func (s *IntervalScheduler) Stop() { s.stop() }

// CronScheduler fires on a cron expression. Five fields use minute
// resolution; six fields add a leading seconds field.
type CronScheduler struct {
	Expr     string
	Location *time.Location
	// Immediate fires once before waiting for the first cron slot.
	Immediate bool
	stopper
}

// NewCronScheduler returns a scheduler for expr evaluated in UTC.
func NewCronScheduler(expr string) *CronScheduler {
	return &CronScheduler{Expr: expr, Location: time.UTC, Immediate: true}
}

// Start implements Scheduler.
func (s *CronScheduler) Start(ctx context.Context, tick func(time.Time)) error {
	expr := strings.TrimSpace(s.Expr)
	if expr == "" {
		return ErrEmptyCron
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	stop := s.done()

	sched := gocron.NewScheduler(loc)
	sched.SingletonModeAll()

	job := func() { tick(time.Now()) }
	var err error
	if len(strings.Fields(expr)) == 6 {
		_, err = sched.CronWithSeconds(expr).Do(job)
	} else {
		_, err = sched.Cron(expr).Do(job)
	}
	if err != nil {
		return fmt.Errorf("cron %q: %w", expr, err)
	}

	if s.Immediate {
		tick(time.Now())
	}

	sched.StartAsync()
	defer sched.Stop()

	select {
	case <-ctx.Done():
	case <-stop:
	}
	return nil
}

// Stop implements Scheduler.
func (s *CronScheduler) Stop() { s.stop() }
