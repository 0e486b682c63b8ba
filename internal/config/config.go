// Package config loads and saves the wburn TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/wburn/internal/model"
)

// Config holds all wburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Limits     LimitsConfig     `toml:"limits"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds storage and diagnostics preferences.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	Timezone string `toml:"timezone,omitempty"`
	LogLevel string `toml:"log_level" validate:"omitempty,oneof=debug info warn error disabled"`
}

// LimitsConfig holds the per-cycle allowances.
type LimitsConfig struct {
	ClassPass int    `toml:"classpass" validate:"gte=1,lte=1000"`
	Solidcore int    `toml:"solidcore" validate:"gte=1,lte=1000"`
	ResetDay  int    `toml:"reset_day" validate:"gte=1,lte=28"`
	YTDAnchor string `toml:"ytd_anchor" validate:"required,datetime=2006-01-02"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background HTTP service.
type DaemonConfig struct {
	Addr            string `toml:"addr" validate:"required,hostname_port"`
	IntervalSeconds int    `toml:"interval_seconds" validate:"gte=1,lte=86400"`
	EventsBuffer    int    `toml:"events_buffer" validate:"gte=1,lte=10000"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Limits: LimitsConfig{
			ClassPass: model.DefaultClassPassLimit,
			Solidcore: model.DefaultSolidcoreLimit,
			ResetDay:  model.DefaultResetDay,
			YTDAnchor: "2025-12-22",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8787",
			IntervalSeconds: 60,
			EventsBuffer:    200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the event log.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "wburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "wburn")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", ConfigPath(), err)
	}

	return cfg, nil
}

// Save validates cfg and writes it to disk.
func Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DBPath returns the event database path: WBURN_DB, then config, then the
// default under DataDir.
func (c Config) DBPath() string {
	if p := os.Getenv("WBURN_DB"); p != "" {
		return p
	}
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "events.db")
}

// ModelLimits converts the configured allowances.
func (c Config) ModelLimits() model.Limits {
	return model.Limits{
		ClassPass: c.Limits.ClassPass,
		Solidcore: c.Limits.Solidcore,
		ResetDay:  c.Limits.ResetDay,
	}
}

// YTDAnchor returns the parsed year-to-date anchor date.
func (c Config) YTDAnchor() time.Time {
	t, err := time.Parse(model.DateLayout, c.Limits.YTDAnchor)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Location returns the zone civil dates are read in. Empty means local time.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

// PollInterval returns the daemon poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}
