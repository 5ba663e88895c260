// Package config handles tool configuration loading and management.
package config

// Config holds all preprocessor settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds input and artifact locations.
type PathsConfig struct {
	ModelDir     string `yaml:"model_dir"`     // directory of .gltf documents
	TextureDir   string `yaml:"texture_dir"`   // texture root searched by the resolver
	CacheFile    string `yaml:"cache_file"`    // serialized cache artifact
	ProgressFile string `yaml:"progress_file"` // resume sidecar, empty disables resume
}

// BuildConfig holds batch build settings.
type BuildConfig struct {
	Workers         int `yaml:"workers"`          // 0 = NumCPU
	CheckpointEvery int `yaml:"checkpoint_every"` // 0 disables checkpointing
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ModelDir:   "models",
			TextureDir: "textures",
			CacheFile:  "cache/meshes.gmsc",
		},
		Build: BuildConfig{
			Workers:         0,
			CheckpointEvery: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
