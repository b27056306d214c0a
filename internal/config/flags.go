package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagWidth  = flag.Int("width", 0, "Window width")
	flagHeight = flag.Int("height", 0, "Window height")
	flagOut    = flag.String("out", "", "Export output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
}
