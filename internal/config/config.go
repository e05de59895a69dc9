// Package config handles configuration loading and management for the
// lighting engine and its demo.
package config

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Lighting LightingConfig `yaml:"lighting"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings for the demo window.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LightingConfig holds lighting engine settings.
type LightingConfig struct {
	// ArenaCapacity bounds per-frame caster vertices. 0 uses the engine
	// default.
	ArenaCapacity int `yaml:"arena_capacity"`
	// PoolSize is the initial shadow-op pool size. 0 uses the engine
	// default.
	PoolSize int `yaml:"pool_size"`
	// BatchCapacity is the shadow generator batch size in vertices. 0
	// uses the generator default.
	BatchCapacity int `yaml:"batch_capacity"`
	// Shadows toggles the per-light shadow passes.
	Shadows bool `yaml:"shadows"`
	// AmbientColor is the lightmap clear color (RGB, 0-1 range).
	AmbientColor [3]float32 `yaml:"ambient_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Lighting: LightingConfig{
			ArenaCapacity: 0,
			PoolSize:      0,
			BatchCapacity: 0,
			Shadows:       true,
			AmbientColor:  [3]float32{0.1, 0.1, 0.15},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
