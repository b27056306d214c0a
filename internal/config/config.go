// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/rigview/internal/engine"
)

var (
	ErrInvalidViewport = errors.New("viewport size must be positive")
	ErrInvalidSkeleton = errors.New("skeleton sphere scale unit must be positive")
)

// Config holds all viewer settings.
type Config struct {
	Viewer   ViewerConfig   `yaml:"viewer"`
	Skeleton SkeletonConfig `yaml:"skeleton"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewerConfig holds window and viewport settings.
type ViewerConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	ClearColor [4]float32 `yaml:"clear_color"`
	GridCells  int        `yaml:"grid_cells"` // ground grid half extent in cells, 0 hides it
	GridStep   float32    `yaml:"grid_step"`
	FontFile   string     `yaml:"font_file"`
	FontSize   float32    `yaml:"font_size"`
}

// SkeletonConfig holds the bone overlay display settings.
type SkeletonConfig struct {
	DisplayMode     string  `yaml:"display_mode"` // lines, spheres or sphere_and_spurs
	SphereBaseSize  float32 `yaml:"sphere_base_size"`
	SphereScaleUnit float32 `yaml:"sphere_scale_unit"`
	SphereFactor    float32 `yaml:"sphere_factor"`
	MidStep         float32 `yaml:"mid_step"`
	MidStepFactor   float32 `yaml:"mid_step_factor"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	OutputDir string   `yaml:"output_dir"`
	Exclude   []string `yaml:"exclude"` // node name fragments left out of exports
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := engine.DefaultSkeletonViewerOptions()
	return &Config{
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			ClearColor: [4]float32{0.18, 0.2, 0.25, 1},
			GridCells:  10,
			GridStep:   0.25,
			FontSize:   16,
		},
		Skeleton: SkeletonConfig{
			DisplayMode:     opts.DisplayMode,
			SphereBaseSize:  opts.SphereBaseSize,
			SphereScaleUnit: opts.SphereScaleUnit,
			SphereFactor:    opts.SphereFactor,
			MidStep:         opts.MidStep,
			MidStepFactor:   opts.MidStepFactor,
		},
		Export: ExportConfig{
			OutputDir: ".",
			Exclude:   []string{"joint", "ground", "scene"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ViewerOptions converts the skeleton section into overlay options.
func (s SkeletonConfig) ViewerOptions() engine.SkeletonViewerOptions {
	return engine.SkeletonViewerOptions{
		DisplayMode:     s.DisplayMode,
		SphereBaseSize:  s.SphereBaseSize,
		SphereScaleUnit: s.SphereScaleUnit,
		SphereFactor:    s.SphereFactor,
		MidStep:         s.MidStep,
		MidStepFactor:   s.MidStepFactor,
	}
}

// Validate checks values that would break rendering.
func (c *Config) Validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%dx%d: %w", c.Viewer.Width, c.Viewer.Height, ErrInvalidViewport)
	}
	if c.Skeleton.SphereScaleUnit <= 0 {
		return fmt.Errorf("%v: %w", c.Skeleton.SphereScaleUnit, ErrInvalidSkeleton)
	}
	return nil
}
