package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ENV_PREFIX  = "HEXHIST_"
	CONFIG_DIR  = "hexhist"
	CONFIG_FILE = "config.yaml"
)

type Config struct {
	BytesPerRow         int           `yaml:"bytes_per_row" env:"BYTES_PER_ROW" validate:"min=1,max=64"`
	LogFile             string        `yaml:"log_file" env:"LOG_FILE"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	ClearClipboardDelay time.Duration `yaml:"clear_clipboard_delay" env:"CLEAR_CLIPBOARD_DELAY" validate:"min=0"`
	// Refuse to quit with unsaved changes unless forced
	ConfirmQuit         bool          `yaml:"confirm_quit" env:"CONFIRM_QUIT"`
}

type ConfigError struct {
	Path string
	err  error
}

func (e ConfigError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("Invalid configuration: %s", e.err)
	}
	return fmt.Sprintf("Invalid configuration in '%s': %s", e.Path, e.err)
}

func (e ConfigError) Unwrap() error {
	return e.err
}

func Default() Config {
	return Config{
		BytesPerRow:         16,
		LogLevel:            "info",
		ClearClipboardDelay: 10 * time.Second,
		ConfirmQuit:         true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/hexhist/config.yaml, or an empty
// string if there is no config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, CONFIG_DIR, CONFIG_FILE)
}

// Load returns the defaults overridden by the YAML file at path and then by
// HEXHIST_* environment variables. An empty path means DefaultPath, which
// may be missing.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := len(path) == 0
	if optional {
		path = DefaultPath()
	}
	if len(path) > 0 {
		if err := loadFile(&cfg, path, optional); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: ENV_PREFIX}); err != nil {
		return Config{}, ConfigError{err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ConfigError{path, err}
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return ConfigError{path, err}
	}
	return nil
}

// Validate checks the value ranges. It must be called again after flags
// have been applied.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return ConfigError{err: err}
	}
	return nil
}
