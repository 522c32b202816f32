// Package config loads observer and runtime settings from a TOML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
)

// AppName names the config directory.
const AppName = "ls-celestial"

// Refresh interval bounds.
const (
	DefaultRefresh = time.Second
	MinRefresh     = time.Second
	MaxRefresh     = 5 * time.Minute
)

// Validation errors.
var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrInvalidNumber    = errors.New("not a number")
)

// Config holds every runtime setting.
type Config struct {
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	SiteName  string

	DUT1    time.Duration
	Refresh time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	MetricsAddr string

	// Optional catalog overrides; empty selects the embedded catalogs.
	MessierPath string
	StarsPath   string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DUT1:      astro.DefaultDUT1,
		Refresh:   DefaultRefresh,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Observer returns the configured observation site.
func (c Config) Observer() astro.Observer {
	return astro.Observer{LatDeg: c.Latitude, LonDeg: c.Longitude, Name: c.SiteName}
}

// TimesOptions returns the options for astro.ComputeTimes.
func (c Config) TimesOptions() []astro.TimesOption {
	return []astro.TimesOption{astro.WithDUT1(c.DUT1)}
}

// Validate checks the observer position.
func (c Config) Validate() error {
	if err := ValidateLatitude(c.Latitude); err != nil {
		return err
	}
	return ValidateLongitude(c.Longitude)
}

// ValidateLatitude reports whether lat is a valid latitude.
func ValidateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%v: %w", lat, ErrInvalidLatitude)
	}
	return nil
}

// ValidateLongitude reports whether lon is a valid longitude.
func ValidateLongitude(lon float64) error {
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%v: %w", lon, ErrInvalidLongitude)
	}
	return nil
}

// ClampRefresh bounds the refresh interval to [MinRefresh, MaxRefresh].
func ClampRefresh(d time.Duration) time.Duration {
	if d < MinRefresh {
		return MinRefresh
	}
	if d > MaxRefresh {
		return MaxRefresh
	}
	return d
}

// ParseCoordinateField parses a decimal coordinate typed by the user.
// A comma is accepted as decimal separator.
func ParseCoordinateField(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", text, ErrInvalidNumber)
	}
	return v, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/ls-celestial/config.toml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// Load builds the configuration from defaults, the file at path (if it
// exists) and the process environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// getEnv reads an environment variable or returns a default value
func getEnv(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return fallback
}

// ApplyEnv overrides settings from LSC_* and LOG_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v := getEnv(lookup, "LSC_LAT", ""); v != "" {
		lat, err := ParseCoordinateField(v)
		if err != nil {
			return fmt.Errorf("LSC_LAT: %w", err)
		}
		c.Latitude = lat
	}
	if v := getEnv(lookup, "LSC_LON", ""); v != "" {
		lon, err := ParseCoordinateField(v)
		if err != nil {
			return fmt.Errorf("LSC_LON: %w", err)
		}
		c.Longitude = lon
	}
	if v := getEnv(lookup, "LSC_DUT1", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LSC_DUT1: %w", err)
		}
		c.DUT1 = d
	}
	if v := getEnv(lookup, "LSC_REFRESH", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LSC_REFRESH: %w", err)
		}
		c.Refresh = ClampRefresh(d)
	}
	c.LogLevel = getEnv(lookup, "LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv(lookup, "LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = getEnv(lookup, "LSC_METRICS_ADDR", c.MetricsAddr)
	return nil
}
