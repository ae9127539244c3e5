package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/database"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
	"github.com/kmarchat/streamgate/pkg/validator"
)

// Config represents the runtime configuration for the StreamGate proxy.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Cache       CacheTTLConfig    `mapstructure:"cache"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateWindow      time.Duration `mapstructure:"rate_window"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ProviderConfig holds the upstream Xtream account.
type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Username  string        `mapstructure:"username" validate:"required"`
	Password  string        `mapstructure:"password" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// CacheTTLConfig overrides response cache lifetimes per bucket.
type CacheTTLConfig struct {
	CategoriesTTL time.Duration `mapstructure:"categories_ttl"`
	SeriesInfoTTL time.Duration `mapstructure:"series_info_ttl"`
	SeriesTTL     time.Duration `mapstructure:"series_ttl"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
}

// MaintenanceConfig controls the background cache sweeper.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"sweep_schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("STREAMGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", "1m")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/streamgate.sqlite")

	v.SetDefault("provider.timeout", "30s")
	v.SetDefault("provider.user_agent", "streamgate/1.0")

	v.SetDefault("cache.categories_ttl", "24h")
	v.SetDefault("cache.series_info_ttl", "6h")
	v.SetDefault("cache.series_ttl", "12h")
	v.SetDefault("cache.default_ttl", "12h")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.sweep_schedule", "@hourly")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate checks the settings a running proxy cannot do without.
func (c *Config) Validate() error {
	c.Provider.BaseURL = strings.TrimSpace(c.Provider.BaseURL)
	c.Provider.Username = strings.TrimSpace(c.Provider.Username)
	c.Provider.Password = strings.TrimSpace(c.Provider.Password)

	if err := validator.ValidateStruct(c.Provider); err != nil {
		return appErrors.ErrProviderNotConfigured.WithInternal(err)
	}
	return nil
}

// DatabaseSettings maps the config section onto the database opener.
func (c *Config) DatabaseSettings() database.Config {
	cfg := database.Config{
		Driver: c.Database.Driver,
		Path:   c.Database.Path,
		DSN:    c.Database.DSN,
	}

	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "postgres", "postgresql":
		cfg.Host = c.Database.Postgres.Host
		cfg.Port = c.Database.Postgres.Port
		cfg.Name = c.Database.Postgres.Database
		cfg.User = c.Database.Postgres.Username
		cfg.Password = c.Database.Postgres.Password
	case "mysql", "mariadb":
		cfg.Host = c.Database.MySQL.Host
		cfg.Port = c.Database.MySQL.Port
		cfg.Name = c.Database.MySQL.Database
		cfg.User = c.Database.MySQL.Username
		cfg.Password = c.Database.MySQL.Password
	}

	return cfg
}

// TTLPolicy maps the cache config section onto the response cache policy,
// falling back to the standard buckets for unset values.
func (c *Config) TTLPolicy() cache.TTLPolicy {
	policy := cache.DefaultTTLPolicy()
	if c.Cache.CategoriesTTL > 0 {
		policy.Categories = c.Cache.CategoriesTTL
	}
	if c.Cache.SeriesInfoTTL > 0 {
		policy.SeriesInfo = c.Cache.SeriesInfoTTL
	}
	if c.Cache.SeriesTTL > 0 {
		policy.Series = c.Cache.SeriesTTL
	}
	if c.Cache.DefaultTTL > 0 {
		policy.Default = c.Cache.DefaultTTL
	}
	return policy
}
