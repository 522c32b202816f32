package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/naoina/toml"
)

// fileConfig is the on-disk layout. Values are strings so that hand-edited
// files may use either decimal separator.
type fileConfig struct {
	Observer observerSection `toml:"observation_position"`
	Time     timeSection     `toml:"time"`
	Log      logSection      `toml:"log"`
	Metrics  metricsSection  `toml:"metrics"`
	Catalogs catalogSection  `toml:"catalogs"`
}

type observerSection struct {
	Latitude  string `toml:"latitude"`
	Longitude string `toml:"longitude"`
	Name      string `toml:"name"`
}

type timeSection struct {
	DUT1    string `toml:"dut1"`
	Refresh string `toml:"refresh"`
}

type logSection struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type metricsSection struct {
	Addr string `toml:"addr"`
}

type catalogSection struct {
	Messier string `toml:"messier"`
	Stars   string `toml:"stars"`
}

// MergeFile overlays non-empty settings from the TOML file at path.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return c.merge(fc)
}

func (c *Config) merge(fc fileConfig) error {
	if fc.Observer.Latitude != "" {
		lat, err := ParseCoordinateField(fc.Observer.Latitude)
		if err != nil {
			return fmt.Errorf("config latitude: %w", err)
		}
		c.Latitude = lat
	}
	if fc.Observer.Longitude != "" {
		lon, err := ParseCoordinateField(fc.Observer.Longitude)
		if err != nil {
			return fmt.Errorf("config longitude: %w", err)
		}
		c.Longitude = lon
	}
	if fc.Observer.Name != "" {
		c.SiteName = fc.Observer.Name
	}
	if fc.Time.DUT1 != "" {
		d, err := time.ParseDuration(fc.Time.DUT1)
		if err != nil {
			return fmt.Errorf("config dut1: %w", err)
		}
		c.DUT1 = d
	}
	if fc.Time.Refresh != "" {
		d, err := time.ParseDuration(fc.Time.Refresh)
		if err != nil {
			return fmt.Errorf("config refresh: %w", err)
		}
		c.Refresh = ClampRefresh(d)
	}
	setIfNotEmpty(&c.LogLevel, fc.Log.Level)
	setIfNotEmpty(&c.LogFormat, fc.Log.Format)
	setIfNotEmpty(&c.LogFile, fc.Log.File)
	setIfNotEmpty(&c.MetricsAddr, fc.Metrics.Addr)
	setIfNotEmpty(&c.MessierPath, fc.Catalogs.Messier)
	setIfNotEmpty(&c.StarsPath, fc.Catalogs.Stars)
	return nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c Config) toFile() fileConfig {
	return fileConfig{
		Observer: observerSection{
			Latitude:  strconv.FormatFloat(c.Latitude, 'f', -1, 64),
			Longitude: strconv.FormatFloat(c.Longitude, 'f', -1, 64),
			Name:      c.SiteName,
		},
		Time: timeSection{
			DUT1:    c.DUT1.String(),
			Refresh: c.Refresh.String(),
		},
		Log: logSection{
			Level:  c.LogLevel,
			Format: c.LogFormat,
			File:   c.LogFile,
		},
		Metrics:  metricsSection{Addr: c.MetricsAddr},
		Catalogs: catalogSection{Messier: c.MessierPath, Stars: c.StarsPath},
	}
}

// Save validates c and writes it to path, replacing the file atomically.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(c.toFile())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
