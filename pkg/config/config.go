// Package config provides configuration management for kagglehub.
// It loads settings from a YAML file, fills in defaults, applies the
// environment variable overrides recognised by the platform tooling, and
// validates the result.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	khttp "github.com/glorpus-work/kagglehub/pkg/http"
	"github.com/glorpus-work/kagglehub/pkg/mount"
	"github.com/glorpus-work/kagglehub/pkg/platform"
)

// Config represents the application configuration.
type Config struct {
	// Credentials for the platform API.
	Auth *AuthConfig `yaml:"auth,omitempty"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Cache settings. An empty CacheDir selects the default location.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Network settings
	Endpoint       string        `yaml:"endpoint"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	ShowProgress   bool          `yaml:"show_progress"`

	// Mount backends. A zero MountTimeout waits without bound.
	MountPollInterval  time.Duration `yaml:"mount_poll_interval"`
	MountTimeout       time.Duration `yaml:"mount_timeout"`
	DisableKaggleCache bool          `yaml:"disable_kaggle_cache"`
	DisableColabCache  bool          `yaml:"disable_colab_cache"`
	KaggleMountFolder  string        `yaml:"kaggle_mount_folder"`
	ColabMountFolder   string        `yaml:"colab_mount_folder"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

const (
	// LogLevelEnv overrides the log level.
	LogLevelEnv = "KAGGLEHUB_LOG_LEVEL"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	configFileName = "config.yaml"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Endpoint:          handle.DefaultEndpoint,
			ConnectTimeout:    khttp.DefaultConnectTimeout,
			ReadTimeout:       khttp.DefaultReadTimeout,
			MountPollInterval: mount.DefaultInterval,
			MountTimeout:      mount.DefaultTimeout,
			KaggleMountFolder: platform.DefaultMountFolder,
			ColabMountFolder:  platform.DefaultMountFolder,
			OutputFormat:      string(logger.FormatText),
			LogLevel:          "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader. Keys absent
// from the document keep their default values.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig writes the configuration to path, replacing the file atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}
	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	// Credentials may live in this file.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(err, "failed to create config file")
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace config file")
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// ApplyEnv applies the environment variable overrides and validates the result.
func (c *Config) ApplyEnv() error {
	if dir := os.Getenv(fsutil.CacheDirEnv); dir != "" {
		c.Settings.CacheDir = dir
	}
	if endpoint := os.Getenv(handle.EndpointEnv); endpoint != "" {
		c.Settings.Endpoint = strings.TrimRight(endpoint, "/")
	}
	if platform.EnvFlag(platform.DisableKaggleCacheEnv) {
		c.Settings.DisableKaggleCache = true
	}
	if platform.EnvFlag(platform.DisableColabCacheEnv) {
		c.Settings.DisableColabCache = true
	}
	if folder := os.Getenv(platform.KaggleMountFolderEnv); folder != "" {
		c.Settings.KaggleMountFolder = folder
	}
	if folder := os.Getenv(platform.ColabMountFolderEnv); folder != "" {
		c.Settings.ColabMountFolder = folder
	}
	if level := os.Getenv(LogLevelEnv); level != "" {
		c.Settings.LogLevel = level
	}
	c.applyEnvAuth()

	if err := c.Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	if s.Endpoint == "" {
		return errors.ErrEmptyEndpoint
	}
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(errors.ErrEmptyEndpoint, "invalid endpoint %q", s.Endpoint)
	}
	if s.ConnectTimeout < 0 || s.ReadTimeout < 0 || s.MountPollInterval < 0 || s.MountTimeout < 0 {
		return errors.ErrNegativeTimeout
	}
	validFormats := map[string]bool{string(logger.FormatText): true, string(logger.FormatJSON): true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, configFileName), nil
}

// CacheRoot returns the cache root. KAGGLEHUB_CACHE is re-read on every call
// and wins over the configured directory.
func (c *Config) CacheRoot() (string, error) {
	if dir := os.Getenv(fsutil.CacheDirEnv); dir != "" {
		return dir, nil
	}
	if c.Settings.CacheDir != "" {
		return c.Settings.CacheDir, nil
	}
	return fsutil.GetCacheDir()
}

// MountWait returns the wait options of the mount backends.
func (c *Config) MountWait() mount.WaitOptions {
	return mount.WaitOptions{Interval: c.Settings.MountPollInterval, Timeout: c.Settings.MountTimeout}
}

// applyDefaults fills in values cleared by the config file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.Endpoint == "" {
		c.Settings.Endpoint = defaults.Settings.Endpoint
	}
	c.Settings.Endpoint = strings.TrimRight(c.Settings.Endpoint, "/")
	if c.Settings.ConnectTimeout == 0 {
		c.Settings.ConnectTimeout = defaults.Settings.ConnectTimeout
	}
	if c.Settings.ReadTimeout == 0 {
		c.Settings.ReadTimeout = defaults.Settings.ReadTimeout
	}
	if c.Settings.MountPollInterval == 0 {
		c.Settings.MountPollInterval = defaults.Settings.MountPollInterval
	}
	if c.Settings.KaggleMountFolder == "" {
		c.Settings.KaggleMountFolder = defaults.Settings.KaggleMountFolder
	}
	if c.Settings.ColabMountFolder == "" {
		c.Settings.ColabMountFolder = defaults.Settings.ColabMountFolder
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
