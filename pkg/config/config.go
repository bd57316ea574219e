// Package config loads the optional docwriter YAML configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalIgnoreEnv names the environment variable that overrides
// global_ignore_file.
const GlobalIgnoreEnv = "DOCWRITER_GLOBAL_IGNORE"

type Config struct {
	IgnoreFile       string      `yaml:"ignore_file"`
	GlobalIgnoreFile string      `yaml:"global_ignore_file"`
	Ignore           []string    `yaml:"ignore"`
	TextExtensions   []string    `yaml:"text_extensions"`
	Log              LogConfig   `yaml:"log"`
	Watch            WatchConfig `yaml:"watch"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

func DefaultConfig() Config {
	return Config{
		IgnoreFile: ".docignore",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// Load reads the config file at path, or the default location when path is
// empty.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	return LoadFrom(path)
}

// LoadFrom reads configPath over the defaults. A missing file is not an
// error. The global ignore environment variable wins over the file.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), err
		}
	}

	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = ".docignore"
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if env := os.Getenv(GlobalIgnoreEnv); env != "" {
		cfg.GlobalIgnoreFile = env
	}
	cfg.GlobalIgnoreFile = expandHome(cfg.GlobalIgnoreFile)
	cfg.Log.File = expandHome(cfg.Log.File)

	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/docwriter/config.yaml, falling back
// to ~/.config/docwriter/config.yaml.
func DefaultPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "docwriter", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "docwriter", "config.yaml")
	}

	return filepath.Join(home, ".config", "docwriter", "config.yaml")
}

func expandHome(p string) string {
	if p != "~" && !hasHomePrefix(p) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func hasHomePrefix(p string) bool {
	return len(p) > 1 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator)
}
