// Package config loads the optional composer.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"composer/internal/service"
	"composer/internal/storage"
)

// FileName is the config file looked up in the data directory.
const FileName = "composer.yaml"

// Config represents composer.yaml.
type Config struct {
	Canvas    CanvasConfig       `yaml:"canvas"`
	Templates storage.Connection `yaml:"templates"`
	Autosave  AutosaveConfig     `yaml:"autosave"`
	ImportDir string             `yaml:"importDir,omitempty"`
	Catalog   string             `yaml:"catalog,omitempty"`
	Debug     bool               `yaml:"debug,omitempty"`
}

// CanvasConfig holds interaction tuning.
type CanvasConfig struct {
	GridSize      float64 `yaml:"gridSize"`
	SnapToGrid    bool    `yaml:"snapToGrid"`
	DragThreshold float64 `yaml:"dragThreshold"`
	MinSize       float64 `yaml:"minSize"`
	DefaultWidth  float64 `yaml:"defaultWidth"`
	DefaultHeight float64 `yaml:"defaultHeight"`
	HistoryLimit  int     `yaml:"historyLimit"`
}

// AutosaveConfig enables periodic snapshots of the canvas. An empty
// schedule disables autosave.
type AutosaveConfig struct {
	Schedule string `yaml:"schedule,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

// DefaultDataDir returns ~/.local/share/composer.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".composer"
	}
	return filepath.Join(home, ".local", "share", "composer")
}

// Default returns the configuration used when no file exists. Templates
// live in a SQLite file under dataDir.
func Default(dataDir string) *Config {
	opts := service.DefaultOptions()
	return &Config{
		Canvas: CanvasConfig{
			GridSize:      opts.GridSize,
			SnapToGrid:    opts.SnapToGrid,
			DragThreshold: opts.DragThreshold,
			MinSize:       opts.MinSize,
			DefaultWidth:  opts.DefaultSize.Width,
			DefaultHeight: opts.DefaultSize.Height,
			HistoryLimit:  opts.HistoryLimit,
		},
		Templates: storage.Connection{
			Driver: storage.DriverSQLite,
			Path:   filepath.Join(dataDir, "composer.db"),
		},
		Autosave: AutosaveConfig{Name: "Autosave"},
	}
}

// LoadOptional reads path if present. Values missing from the file keep
// their defaults; a missing file yields Default(dir of path).
func LoadOptional(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate rejects values the composer cannot work with.
func (c *Config) Validate() error {
	cv := c.Canvas
	switch {
	case cv.GridSize <= 0:
		return fmt.Errorf("canvas.gridSize must be positive, got %v", cv.GridSize)
	case cv.DragThreshold < 0:
		return fmt.Errorf("canvas.dragThreshold must not be negative, got %v", cv.DragThreshold)
	case cv.MinSize <= 0:
		return fmt.Errorf("canvas.minSize must be positive, got %v", cv.MinSize)
	case cv.DefaultWidth < cv.MinSize || cv.DefaultHeight < cv.MinSize:
		return fmt.Errorf("canvas default size %vx%v is below minSize %v", cv.DefaultWidth, cv.DefaultHeight, cv.MinSize)
	case cv.HistoryLimit < 0:
		return fmt.Errorf("canvas.historyLimit must not be negative, got %d", cv.HistoryLimit)
	}
	if err := c.Templates.Validate(); err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	return nil
}

// ComposerOptions converts the canvas section into service options.
func (c *Config) ComposerOptions() service.Options {
	opts := service.DefaultOptions()
	opts.GridSize = c.Canvas.GridSize
	opts.SnapToGrid = c.Canvas.SnapToGrid
	opts.DragThreshold = c.Canvas.DragThreshold
	opts.MinSize = c.Canvas.MinSize
	opts.DefaultSize.Width = c.Canvas.DefaultWidth
	opts.DefaultSize.Height = c.Canvas.DefaultHeight
	if c.Canvas.HistoryLimit > 0 {
		opts.HistoryLimit = c.Canvas.HistoryLimit
	}
	return opts
}
