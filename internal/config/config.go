package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// Default config file path.
const DefaultConfigPath = "~/.config/ompd/config.yaml"

// Config holds all ompd configuration. It is treated as an immutable value:
// background tasks receive their own reference at spawn time and nothing in
// the core ever mutates or persists it after load.
type Config struct {
	IntervalSeconds   int           `yaml:"interval_seconds"`
	MaxSleepSeconds   int           `yaml:"max_sleep_seconds"`
	ShotDir           string        `yaml:"shot_dir"`
	VideoDir          string        `yaml:"video_dir"`
	FFmpeg            string        `yaml:"ffmpeg"`
	BackfillOnStartup bool          `yaml:"backfill_on_startup"`
	ShotFormat        string        `yaml:"shot_format"`
	VideoFormat       string        `yaml:"video_format"`
	ScaleFactor       float64       `yaml:"scale_factor"`
	CaptureDayHours   int           `yaml:"capture_day_hours"`
	KeepShotDays      int           `yaml:"keep_shot_days"`
	Catalog           CatalogConfig `yaml:"catalog"`
	Logging           LoggingConfig `yaml:"logging"`
}

type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Interval returns the tick interval between captures.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// MaxSleep returns the largest tick-to-tick gap tolerated before blackout
// or rollover handling kicks in.
func (c *Config) MaxSleep() time.Duration {
	return time.Duration(c.MaxSleepSeconds) * time.Second
}

// Format returns the validated still-image format for captured frames.
func (c *Config) Format() (shotdir.ImageFormat, error) {
	return shotdir.ParseImageFormat(c.ShotFormat)
}

// FrameRate derives the output video frame rate from the assumption that
// capture_day_hours of frames at interval_seconds should compress to about
// one minute of video.
func (c *Config) FrameRate() int {
	rate := (c.CaptureDayHours * 60 * 60 / c.IntervalSeconds) / 60
	if rate < 1 {
		rate = 1
	}
	return rate
}

// Validate checks that the configuration can drive a capture loop.
func (c *Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive, got %d", c.IntervalSeconds)
	}
	if c.MaxSleepSeconds <= 0 {
		return fmt.Errorf("max_sleep_seconds must be positive, got %d", c.MaxSleepSeconds)
	}
	if c.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive, got %v", c.ScaleFactor)
	}
	if c.CaptureDayHours <= 0 {
		return fmt.Errorf("capture_day_hours must be positive, got %d", c.CaptureDayHours)
	}
	if c.KeepShotDays < 0 {
		return fmt.Errorf("keep_shot_days must not be negative, got %d", c.KeepShotDays)
	}
	if c.ShotDir == "" || c.VideoDir == "" {
		return fmt.Errorf("shot_dir and video_dir must both be set")
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if c.VideoFormat == "" {
		return fmt.Errorf("video_format must be set")
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrCreateAt loads the config from the given path. If the file does not
// exist, it resolves ffmpeg from PATH, creates the directory structure and
// writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if ffmpeg, lookErr := exec.LookPath("ffmpeg"); lookErr == nil {
			cfg.FFmpeg = ffmpeg
		}

		dir := filepath.Dir(expanded)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}
		if err := os.WriteFile(expanded, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		if err := cfg.expandPaths(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(expanded)
}

// LoadOrCreate loads the config from the default path, creating it with
// defaults on first run.
func LoadOrCreate() (*Config, error) {
	return LoadOrCreateAt(DefaultConfigPath)
}

// expandPaths resolves ~ in every user-supplied path.
func (c *Config) expandPaths() error {
	var err error
	if c.ShotDir, err = expandPath(c.ShotDir); err != nil {
		return err
	}
	if c.VideoDir, err = expandPath(c.VideoDir); err != nil {
		return err
	}
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return err
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
