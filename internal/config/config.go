package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults for a fresh install.
const (
	DefaultAPIURL          = "http://127.0.0.1:3000/api"
	DefaultModelServiceURL = "http://molecular-property-prediction:8000"
	DefaultListenAddr      = ":3000"
	DefaultTheme           = "auto"
)

// Global configuration structure.
type Global struct {
	APIURL          string `mapstructure:"api_url" yaml:"api_url,omitempty"`
	ModelServiceURL string `mapstructure:"model_service_url" yaml:"model_service_url,omitempty"`
	DefaultModel    string `mapstructure:"default_model" yaml:"default_model,omitempty"`
	RunsDir         string `mapstructure:"runs_dir" yaml:"runs_dir,omitempty"`
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr,omitempty"`
	Theme           string `mapstructure:"theme" yaml:"theme,omitempty"`

	// 0 leaves requests without a deadline.
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec,omitempty"`
}

// Dir returns ~/.molscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".molscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.molscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) (string, error) {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (MOLSCOPE_*) > config file > defaults. Command-line flags are
// applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MOLSCOPE")
	v.AutomaticEnv()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("model_service_url", DefaultModelServiceURL)
	v.SetDefault("default_model", "in vitro (H-CLAT)")
	v.SetDefault("http_timeout_sec", 0)
	v.SetDefault("runs_dir", filepath.Join(dir, "runs"))
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("theme", DefaultTheme)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// a missing file is fine; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HTTPTimeoutSec < 0 {
		return nil, fmt.Errorf("http_timeout_sec must be >= 0, got %d", c.HTTPTimeoutSec)
	}
	return &c, nil
}
