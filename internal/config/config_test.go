package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.GridCells != 10 || cfg.Viewer.GridStep != 0.25 {
		t.Errorf("unexpected grid %d x %v", cfg.Viewer.GridCells, cfg.Viewer.GridStep)
	}

	if cfg.Skeleton.DisplayMode != "sphere_and_spurs" {
		t.Errorf("expected sphere_and_spurs, got %s", cfg.Skeleton.DisplayMode)
	}
	if cfg.Skeleton.SphereBaseSize != 0.01 || cfg.Skeleton.SphereScaleUnit != 15 {
		t.Errorf("unexpected sphere settings %+v", cfg.Skeleton)
	}

	if diff := cmp.Diff([]string{"joint", "ground", "scene"}, cfg.Export.Exclude); diff != "" {
		t.Errorf("export exclude mismatch (-want +got):\n%s", diff)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rigview.yaml")

	yamlContent := `
viewer:
  width: 1920
  height: 1080
  grid_cells: 0

skeleton:
  display_mode: lines
  sphere_scale_unit: 30

export:
  output_dir: "exports"
  exclude: ["Helper"]

logging:
  level: "debug"
  log_file: "rigview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 || cfg.Viewer.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if cfg.Viewer.GridCells != 0 {
		t.Errorf("expected grid hidden, got %d cells", cfg.Viewer.GridCells)
	}

	opts := cfg.Skeleton.ViewerOptions()
	if opts.DisplayMode != "lines" || opts.SphereScaleUnit != 30 {
		t.Errorf("unexpected viewer options %+v", opts)
	}
	// Unset keys keep their defaults.
	if opts.SphereFactor != 0.9 {
		t.Errorf("expected default sphere factor, got %v", opts.SphereFactor)
	}

	if cfg.Export.OutputDir != "exports" {
		t.Errorf("expected output dir 'exports', got %s", cfg.Export.OutputDir)
	}
	if diff := cmp.Diff([]string{"Helper"}, cfg.Export.Exclude); diff != "" {
		t.Errorf("exclude mismatch (-want +got):\n%s", diff)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "rigview.log" {
		t.Errorf("expected log file 'rigview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/rigview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }, ErrInvalidViewport},
		{"negative height", func(c *Config) { c.Viewer.Height = -1 }, ErrInvalidViewport},
		{"zero scale unit", func(c *Config) { c.Skeleton.SphereScaleUnit = 0 }, ErrInvalidSkeleton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "rigview.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find rigview.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Width != 2560 || cfg.Viewer.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "out flag",
			setup: func() { *flagOut = "/tmp/exports" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.OutputDir != "/tmp/exports" {
					t.Errorf("expected output dir /tmp/exports, got %s", cfg.Export.OutputDir)
				}
			},
			teardown: func() { *flagOut = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rigview.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rigview.yaml")
	cfg := Default()
	cfg.Export.Exclude = []string{"Light"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("saved config differs (-want +got):\n%s", diff)
	}
}
