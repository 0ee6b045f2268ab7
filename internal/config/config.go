// Package config loads the demo program settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/pixie/internal/surface"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	CloseOnEscape bool   `yaml:"close_on_escape"`
	// FrameRate caps the demo loop; zero runs unpaced.
	FrameRate int    `yaml:"frame_rate"`
	LogLevel  string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Title:         "pixie",
		Width:         640,
		Height:        480,
		CloseOnEscape: true,
		FrameRate:     60,
		LogLevel:      "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document does not set, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > surface.MaxDimension || c.Height > surface.MaxDimension {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("%w: frame_rate %d", ErrInvalid, c.FrameRate)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}
