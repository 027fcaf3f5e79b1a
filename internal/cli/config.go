package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GARAGECTL"

// Config is read from ~/.garagectl/config.yaml, then GARAGECTL_* env, then flags.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	SessionFile string        `mapstructure:"session_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// HomeDir returns ~/.garagectl, falling back to the working directory.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".garagectl"
	}
	return filepath.Join(home, ".garagectl")
}

func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("session_file", filepath.Join(HomeDir(), "session.yaml"))
	v.SetDefault("timeout", "15s")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// LoadConfig reads path when given, otherwise the default file if present.
// An explicit path that does not exist is an error.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url must not be empty")
	}
	return &cfg, nil
}
