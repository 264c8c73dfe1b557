// Package config loads application configuration and initializes logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/market-dashboard/internal/auth"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port          int      `yaml:"port" mapstructure:"port"`
	CORSOrigins   []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ExcludedPaths []string `yaml:"excluded_paths" mapstructure:"excluded_paths"`
}

// AuthConfig is the single credential source for both access gates.
// Override via MARKETDASH_AUTH_USERNAME / MARKETDASH_AUTH_PASSWORD rather
// than committing real values to a config file.
type AuthConfig struct {
	Credentials  auth.Credentials `yaml:",inline" mapstructure:",squash"`
	Realm        string           `yaml:"realm" mapstructure:"realm"`
	LoginDelayMS int              `yaml:"login_delay_ms" mapstructure:"login_delay_ms"`
}

// LoginDelay returns the artificial pre-resolution delay for the login gate.
func (a AuthConfig) LoginDelay() time.Duration {
	return time.Duration(a.LoginDelayMS) * time.Millisecond
}

// StoreConfig configures the session marker backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory | sqlite | postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DatasetConfig optionally overrides the embedded dataset with a JSON or
// YAML file.
type DatasetConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.excluded_paths", []string{"/healthz", "/assets/*", "/favicon.ico"})
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "vyrite2025")
	v.SetDefault("auth.realm", "Secure Area")
	v.SetDefault("auth.login_delay_ms", 500)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "marketdash.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
