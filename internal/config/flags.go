package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagModels     = flag.String("models", "", "Directory of .gltf documents")
	flagTextures   = flag.String("textures", "", "Texture root directory")
	flagCache      = flag.String("cache", "", "Cache artifact path")
	flagWorkers    = flag.Int("workers", 0, "Concurrent build workers (0 = all CPUs)")
	flagResume     = flag.String("resume", "", "Progress file for resumable builds")
	flagCheckpoint = flag.Int("checkpoint", -1, "Checkpoint interval in documents (0 disables)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags(args []string) {
	flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagModels != "" {
		cfg.Paths.ModelDir = *flagModels
	}
	if *flagTextures != "" {
		cfg.Paths.TextureDir = *flagTextures
	}
	if *flagCache != "" {
		cfg.Paths.CacheFile = *flagCache
	}
	if *flagWorkers > 0 {
		cfg.Build.Workers = *flagWorkers
	}
	if *flagResume != "" {
		cfg.Paths.ProgressFile = *flagResume
	}
	if *flagCheckpoint >= 0 {
		cfg.Build.CheckpointEvery = *flagCheckpoint
	}
}
