// Command ls-celestial is a terminal UI showing where Messier objects and
// bright stars sit in the sky of an observer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/config"
	"github.com/litescript/ls-celestial/internal/logging"
	"github.com/litescript/ls-celestial/internal/metrics"
	"github.com/litescript/ls-celestial/internal/sky"
	"github.com/litescript/ls-celestial/internal/state"
	"github.com/litescript/ls-celestial/internal/ui"
	"github.com/litescript/ls-celestial/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	jsonPath      string
	objectName    string
	miniSkyMode   bool
	eventsMode    bool
	watchInterval time.Duration
	cronExpr      string
	atTime        string
	beepMode      bool
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Config file (default: user config dir)")
	lat := flag.String("lat", "", "Observer latitude in degrees, north positive")
	lon := flag.String("lon", "", "Observer longitude in degrees, east positive")
	dut1 := flag.Duration("dut1", 0, "UT1-UTC correction (e.g., 100ms)")
	refresh := flag.Duration("refresh", config.DefaultRefresh, "Recompute interval (e.g., 1s, 1m)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI logs are discarded otherwise)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on addr (e.g., :9108)")
	catalogs := flag.String("catalog", "all", "Catalogs to load: messier, stars or all")
	saveLocation := flag.Bool("save-location", false, "Write the observer location to the config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.StringVar(&jsonPath, "json", "", "Export JSON snapshot to file (use - for stdout)")
	flag.StringVar(&objectName, "object", "", "Show card for one object (e.g., M31, Sirius)")
	flag.BoolVar(&miniSkyMode, "mini-sky", false, "Show ASCII mini sky view")
	flag.BoolVar(&eventsMode, "events", false, "Show rise/set event log")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat headless output at interval (e.g., 30s)")
	flag.StringVar(&cronExpr, "cron", "", "Repeat headless output on a cron schedule (e.g., \"*/5 * * * *\")")
	flag.StringVar(&atTime, "at", "", "Compute for a fixed instant (RFC 3339) instead of now")
	flag.BoolVar(&beepMode, "beep", false, "Beep on rise/set events (TTY only)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, version.Version)
		return
	}

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(2)
	}
	if err := applyFlags(&cfg, flagOverrides{
		lat: *lat, lon: *lon, dut1: *dut1, refresh: *refresh,
		logLevel: *logLevel, logFormat: *logFormat, logFile: *logFile,
		metricsAddr: *metricsAddr,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	kinds, err := parseCatalogs(*catalogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	var at time.Time
	if atTime != "" {
		at, err = time.Parse(time.RFC3339, atTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --at: %v\n", err)
			os.Exit(2)
		}
	}

	headless := summaryMode || jsonPath != "" || objectName != "" || miniSkyMode || eventsMode

	// Set up logging
	logger := logging.NewWithFormat(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		// The alternate screen owns the terminal.
		logger.SetOutput(io.Discard)
	}

	if *saveLocation {
		if path == "" {
			fmt.Fprintln(os.Stderr, "Error: --save-location needs --config or a user config dir")
			os.Exit(2)
		}
		if err := cfg.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("saved location %+f %+f to %s", cfg.Latitude, cfg.Longitude, path)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var recorder *metrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder, err = metrics.New(prometheus.NewRegistry())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: metrics: %v\n", err)
			os.Exit(1)
		}
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("%v", err)
			}
		}()
	}

	// Initialize components
	stateCfg := state.DefaultConfig()
	stateCfg.Observer = cfg.Observer()
	stateCfg.TimesOptions = cfg.TimesOptions()
	stateCfg.RefreshInterval = cfg.Refresh
	stateCfg.Metrics = recorder
	stateMgr := state.NewManager(stateCfg)

	if err := loadCatalogs(stateMgr, cfg, kinds, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Headless mode: no TUI
	if headless {
		if err := runHeadless(ctx, stateMgr, at, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create TUI model
	model := ui.New(ui.Options{
		State:      stateMgr,
		Config:     cfg,
		ConfigPath: path,
		Log:        logger,
	})

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// flagOverrides holds command-line values that take precedence over the
// config file and environment.
type flagOverrides struct {
	lat, lon    string
	dut1        time.Duration
	refresh     time.Duration
	logLevel    string
	logFormat   string
	logFile     string
	metricsAddr string
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cfg *config.Config, o flagOverrides) error {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if o.lat != "" {
		v, err := config.ParseCoordinateField(o.lat)
		if err != nil {
			return fmt.Errorf("--lat: %w", err)
		}
		cfg.Latitude = v
	}
	if o.lon != "" {
		v, err := config.ParseCoordinateField(o.lon)
		if err != nil {
			return fmt.Errorf("--lon: %w", err)
		}
		cfg.Longitude = v
	}
	if set["dut1"] {
		cfg.DUT1 = o.dut1
	}
	if set["refresh"] {
		cfg.Refresh = config.ClampRefresh(o.refresh)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.metricsAddr != "" {
		cfg.MetricsAddr = o.metricsAddr
	}
	return cfg.Validate()
}

// parseCatalogs turns the --catalog value into catalog kinds.
func parseCatalogs(s string) ([]catalog.Kind, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return catalog.Kinds, nil
	}
	var kinds []catalog.Kind
	for _, part := range strings.Split(s, ",") {
		k, err := catalog.ParseKind(part)
		if err != nil {
			return nil, fmt.Errorf("--catalog: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// loadCatalogs installs the requested catalogs, reading overrides from disk
// when configured and the embedded copies otherwise.
func loadCatalogs(stateMgr *state.Manager, cfg config.Config, kinds []catalog.Kind, logger *logging.Logger) error {
	for _, kind := range kinds {
		path := cfg.MessierPath
		if kind == catalog.KindStar {
			path = cfg.StarsPath
		}

		var (
			res *catalog.LoadResult
			err error
		)
		if path != "" {
			res, err = catalog.LoadFile(path, kind)
		} else {
			res, err = catalog.Default(kind)
		}
		if err != nil {
			return err
		}

		for _, rowErr := range res.RowErrors {
			logger.Warn("%s catalog: %v", kind, rowErr)
		}
		if len(res.Masked) > 0 {
			logger.Warn("%s catalog: %d rows with unreadable coordinates: %s",
				kind, len(res.Masked), strings.Join(res.Masked, ", "))
		}
		logger.Debug("loaded %d %s entries", res.Catalog.Len(), kind)

		stateMgr.SetCatalog(res)
	}
	return nil
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, stateMgr *state.Manager, at time.Time, logger *logging.Logger) error {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	var lastEvent time.Time

	outputOnce := func(now time.Time) error {
		if !at.IsZero() {
			now = at
		}
		stateMgr.Recompute(now)
		snap := stateMgr.Snapshot()
		logger.Debug("recomputed %d positions in %v", len(snap.Sky.Positions), snap.Sky.Elapsed)

		// Object card mode
		if objectName != "" {
			return writeObjectCard(stateMgr, snap.Sky, now, logger)
		}

		// Export JSON if requested
		if jsonPath != "" {
			if err := writeJSON(snap.Sky); err != nil {
				return err
			}
		}

		// Print summary table if requested
		if summaryMode {
			sky.WriteSummaryTable(os.Stdout, snap.Sky)
		}

		// Mini sky view
		if miniSkyMode {
			fmt.Println()
			sky.WriteMiniSky(os.Stdout, snap.Sky, sky.DefaultMiniSkyConfig())
		}

		// Events log
		if eventsMode {
			fmt.Println()
			sky.WriteEvents(os.Stdout, snap.Events, 10)
		}

		// Beep once per batch of new events
		if beepMode && isTTY {
			for _, e := range snap.Events {
				if e.Timestamp.After(lastEvent) {
					fmt.Print("\a")
					break
				}
			}
		}
		for _, e := range snap.Events {
			if e.Timestamp.After(lastEvent) {
				lastEvent = e.Timestamp
			}
		}
		return nil
	}

	var sched sky.Scheduler
	switch {
	case cronExpr != "":
		sched = sky.NewCronScheduler(cronExpr)
	case watchInterval > 0:
		sched = sky.NewIntervalScheduler(watchInterval)
	default:
		// Single run
		return outputOnce(time.Now())
	}

	// Watch mode: repeat on schedule
	first := true
	return sched.Start(ctx, func(t time.Time) {
		if !first && jsonPath != "-" {
			fmt.Println() // Blank line between outputs
		}
		first = false
		if err := outputOnce(t); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
}

func writeJSON(snap sky.Snapshot) error {
	export := sky.ExportSnapshot(snap)
	if jsonPath == "-" {
		if err := export.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}

func writeObjectCard(stateMgr *state.Manager, snap sky.Snapshot, now time.Time, logger *logging.Logger) error {
	entry, ok := stateMgr.Find(objectName)
	if !ok {
		return fmt.Errorf("object %q not found", objectName)
	}
	p, ok := snap.Lookup(entry.Key())
	if !ok {
		return fmt.Errorf("object %q has no position", objectName)
	}

	info, err := sky.ComputeVisibility(entry, stateMgr.Observer(), now, stateMgr.TimesOptions()...)
	if err != nil {
		logger.Warn("visibility of %s: %v", p.Name, err)
		info = nil
	}
	sky.WriteObjectCard(os.Stdout, snap, p, info)
	return nil
}
