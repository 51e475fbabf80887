package config

const (
	defaultConfigPath    = "~/.config/spectrum/config.toml"
	defaultStateDir      = "~/.local/share/spectrum"
	defaultLogDir        = "~/.local/share/spectrum/logs"
	defaultAPIBind       = "127.0.0.1:8799"
	defaultOutputSubdir  = "converted"
	defaultPreset        = "standard"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultDecoderBinary = "dcraw_emu"
	defaultExiftool      = "exiftool"
)

func defaultSourceExtensions() []string {
	return []string{".arw", ".cr2", ".cr3", ".nef", ".dng", ".orf", ".raf", ".rw2"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Scan: Scan{
			SourceExtensions: defaultSourceExtensions(),
			OutputSubdir:     defaultOutputSubdir,
		},
		Convert: Convert{
			Workers:          0, // 0 selects runtime.NumCPU at engine construction
			DefaultPreset:    defaultPreset,
			PreserveMetadata: true,
		},
		Tools: Tools{
			DecoderBinary:  defaultDecoderBinary,
			ExiftoolBinary: defaultExiftool,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
