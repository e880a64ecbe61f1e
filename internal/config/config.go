// Package config handles cmykstudio configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level studio configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Tracking TrackingConfig `yaml:"tracking"`
	Tray     bool           `yaml:"tray"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	PartsDir  string `yaml:"parts_dir"` // served under /parts/
}

// DataConfig locates persistent state and catalog files.
type DataConfig struct {
	Dir         string `yaml:"dir"`
	DBPath      string `yaml:"db_path"`
	PartsFile   string `yaml:"parts_file"`   // empty uses the built-in catalog
	ArchiveFile string `yaml:"archive_file"` // seeds the archive on first run
}

// TrackingConfig controls the camera pipeline and landmark binding.
type TrackingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Camera        bool    `yaml:"camera"` // run the in-process camera pipeline
	CameraID      int     `yaml:"camera_id"`
	FPS           float64 `yaml:"fps"`
	Smoothing     float64 `yaml:"smoothing"`
	MinConfidence float64 `yaml:"min_confidence"`
	CanvasWidth   float64 `yaml:"canvas_width"`
	CanvasHeight  float64 `yaml:"canvas_height"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = defaultDataDir()
	}
	if c.Data.DBPath == "" {
		c.Data.DBPath = filepath.Join(c.Data.Dir, "cmykstudio.db")
	}
	if c.Tracking.FPS <= 0 {
		c.Tracking.FPS = 15
	}
	if c.Tracking.Smoothing <= 0 {
		c.Tracking.Smoothing = 0.3
	}
	if c.Tracking.MinConfidence <= 0 {
		c.Tracking.MinConfidence = 0.5
	}
}

func (c *Config) validate() error {
	if c.Tracking.Smoothing > 1 {
		return fmt.Errorf("tracking.smoothing %v out of range (0, 1]", c.Tracking.Smoothing)
	}
	if c.Tracking.MinConfidence > 1 {
		return fmt.Errorf("tracking.min_confidence %v out of range (0, 1]", c.Tracking.MinConfidence)
	}
	if c.Tracking.CanvasWidth < 0 || c.Tracking.CanvasHeight < 0 {
		return fmt.Errorf("tracking canvas size must not be negative")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmykstudio"
	}
	return filepath.Join(home, ".cmykstudio")
}
