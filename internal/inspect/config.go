// Package inspect ties the resolvers, walker, attributor and miner into
// interactive inspection sessions.
package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/spatial"
	"github.com/mj1618/fiberscope/internal/stream"
	"gopkg.in/yaml.v3"
)

// Config controls extraction.
type Config struct {
	MaxDepth           int     `yaml:"maxDepth"`
	MinSelectionPixels float64 `yaml:"minSelectionPixels"`
	MarkupCharCap      int     `yaml:"markupCharCap"`
	StackDepth         int     `yaml:"stackDepth"`
	StreamMatchDepth   int     `yaml:"streamMatchDepth"`
	DOMTreeDepth       int     `yaml:"domTreeDepth"`
	ScreenshotPadX     float64 `yaml:"screenshotPadX"`
	ScreenshotPadY     float64 `yaml:"screenshotPadY"`
	ScreenshotScale    float64 `yaml:"screenshotScale"`
	NoScreenshots      bool    `yaml:"noScreenshots"`
	Language           string  `yaml:"language"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = fiber.DefaultMaxDepth
	}
	if c.MinSelectionPixels <= 0 {
		c.MinSelectionPixels = spatial.DefaultMinSize
	}
	if c.MarkupCharCap <= 0 {
		c.MarkupCharCap = 5000
	}
	if c.StackDepth <= 0 {
		c.StackDepth = fiber.DefaultStackDepth
	}
	if c.StreamMatchDepth <= 0 {
		c.StreamMatchDepth = stream.DefaultMatchDepth
	}
	if c.DOMTreeDepth <= 0 {
		c.DOMTreeDepth = 5
	}
	if c.ScreenshotPadX <= 0 {
		c.ScreenshotPadX = 0.2
	}
	if c.ScreenshotPadY <= 0 {
		c.ScreenshotPadY = 1.0
	}
	if c.ScreenshotScale <= 0 || c.ScreenshotScale > 1 {
		c.ScreenshotScale = 1.0
	}
	if c.Language == "" {
		c.Language = "typescript"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file. Unset fields keep their defaults.
// A missing file is not an error when optional is true.
func LoadConfig(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.defaults()
	return c, nil
}
