// Package config resolves CLI configuration by binding flags over a
// viper instance, with environment variables, a .env file, and an
// optional YAML config file layered underneath, in priority order:
// flags > env > .env > YAML file > defaults.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Convert holds the resolved configuration for `warc2zim convert`.
type Convert struct {
	WarcPath     string
	OutputDir    string
	BundlePrefix string
	CustomCSS    string
	ConfigFile   string
	LogFormat    string
	LogLevel     string
}

// Serve holds the resolved configuration for `warc2zim serve`.
type Serve struct {
	Dir       string
	Addr      string
	LogFormat string
	LogLevel  string
}

// newViper builds a viper instance with WARC2ZIM_-prefixed environment
// variables, a best-effort .env load, and an optional YAML config file
// layered under whatever flags are later bound over it.
func newViper(configFile string) (*viper.Viper, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	v := viper.New()
	v.SetEnvPrefix("WARC2ZIM")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %q: %w", configFile, err)
		}
	}
	return v, nil
}

// LoadConvert resolves Convert from flags, layered over the environment,
// an optional .env file and an optional YAML config file named by the
// "config" flag.
func LoadConvert(flags *pflag.FlagSet) (Convert, error) {
	configFile, _ := flags.GetString("config")

	v, err := newViper(configFile)
	if err != nil {
		return Convert{}, err
	}
	v.SetDefault("output", "./output")
	v.SetDefault("bundle-prefix", "http://library/content/myzim/")
	v.SetDefault("log-format", "text")
	v.SetDefault("log-level", "info")

	if err := v.BindPFlags(flags); err != nil {
		return Convert{}, fmt.Errorf("config: binding flags: %w", err)
	}

	cfg := Convert{
		WarcPath:     v.GetString("warc"),
		OutputDir:    v.GetString("output"),
		BundlePrefix: v.GetString("bundle-prefix"),
		CustomCSS:    v.GetString("custom-css"),
		ConfigFile:   configFile,
		LogFormat:    v.GetString("log-format"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.WarcPath == "" {
		return cfg, fmt.Errorf("config: --warc is required")
	}
	return cfg, nil
}

// LoadServe resolves Serve from flags, layered over the environment and
// an optional .env file.
func LoadServe(flags *pflag.FlagSet) (Serve, error) {
	v, err := newViper("")
	if err != nil {
		return Serve{}, err
	}
	v.SetDefault("dir", "./output")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log-format", "text")
	v.SetDefault("log-level", "info")

	if err := v.BindPFlags(flags); err != nil {
		return Serve{}, fmt.Errorf("config: binding flags: %w", err)
	}

	return Serve{
		Dir:       v.GetString("dir"),
		Addr:      v.GetString("addr"),
		LogFormat: v.GetString("log-format"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}
