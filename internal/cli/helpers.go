package cli

import (
	"fmt"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/cache"
	"github.com/glorpus-work/kagglehub/pkg/config"
)

// These variables are bound to the global flags by NewRootCmd.
var (
	ConfigPath *string
	Verbose    *bool
	NoProgress *bool
)

// loadFileConfig loads the configuration file alone, without environment
// overrides or flags. It is what config set writes back.
func loadFileConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadConfig loads the effective configuration and initialises logging.
func loadConfig() (*config.Config, error) {
	cfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	// The command line shows progress unless asked not to.
	cfg.Settings.ShowProgress = NoProgress == nil || !*NoProgress

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

func loadCacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(cache.NewManagerFunc(cfg.CacheRoot)), nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig report a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}
