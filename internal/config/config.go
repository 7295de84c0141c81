// Package config loads runtime settings from defaults, an optional
// minibooks.yaml file, MINIBOOKS_* environment variables and command flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "MINIBOOKS"

type Config struct {
	Env       string          `mapstructure:"env"`
	User      string          `mapstructure:"user"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Server    ServerConfig    `mapstructure:"server"`
	Web       WebConfig       `mapstructure:"web"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	URL             string        `mapstructure:"url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // requests per minute per IP, 0 disables
}

type WebConfig struct {
	Addr string `mapstructure:"addr"`
}

type DashboardConfig struct {
	// LowStockThreshold flags products whose stock is at or below it.
	LowStockThreshold int64 `mapstructure:"low_stock_threshold"`
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up. Callers may bind flags before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("minibooks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/minibooks")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("user", "admin")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "minibooks.db")
	v.SetDefault("server.addr", ":8888")
	v.SetDefault("server.url", "http://localhost:8888")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 300)
	v.SetDefault("web.addr", ":8080")
	v.SetDefault("dashboard.low_stock_threshold", 5)
}

// Load reads the config file if one exists and decodes the merged settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.DB.Path == "" {
		problems = append(problems, "db.path is required")
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		problems = append(problems, fmt.Sprintf("server.url must be an http(s) URL, got %q", c.Server.URL))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server timeouts must be greater than 0")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit must not be negative")
	}
	if c.Dashboard.LowStockThreshold < 0 {
		problems = append(problems, "dashboard.low_stock_threshold must not be negative")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
