package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 50, cfg.Server.RateLimit)
	require.Equal(t, 30*time.Second, cfg.Server.RateWindow)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "http://provider.example.com:8080", cfg.Provider.BaseURL)
	require.Equal(t, "proxyuser", cfg.Provider.Username)
	require.Equal(t, 20*time.Second, cfg.Provider.Timeout)
	require.Equal(t, "player/2.0", cfg.Provider.UserAgent)

	require.Equal(t, 48*time.Hour, cfg.Cache.CategoriesTTL)
	require.Equal(t, 3*time.Hour, cfg.Cache.SeriesInfoTTL)
	require.Equal(t, 6*time.Hour, cfg.Cache.SeriesTTL)
	require.Equal(t, 8*time.Hour, cfg.Cache.DefaultTTL)

	require.False(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@every 30m", cfg.Maintenance.Schedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, 100, cfg.Server.RateLimit)
	require.Equal(t, time.Minute, cfg.Server.RateWindow)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/streamgate.sqlite", cfg.Database.Path)

	require.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STREAMGATE_SERVER_PORT", "7070")
	t.Setenv("STREAMGATE_PROVIDER_BASE_URL", "http://env.example.com")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "http://env.example.com", cfg.Provider.BaseURL)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg.Provider.BaseURL = "http://provider.example.com"
	cfg.Provider.Username = "user"
	require.Error(t, cfg.Validate())

	cfg.Provider.Password = "pass"
	require.NoError(t, cfg.Validate())
}

func TestConfigTTLPolicy(t *testing.T) {
	cfg := &Config{}
	policy := cfg.TTLPolicy()
	require.Equal(t, 24*time.Hour, policy.Categories)
	require.Equal(t, 12*time.Hour, policy.Default)

	cfg.Cache.DefaultTTL = time.Hour
	policy = cfg.TTLPolicy()
	require.Equal(t, time.Hour, policy.Default)
	require.Equal(t, 24*time.Hour, policy.Categories)
}

func TestConfigDatabaseSettings(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.Database = "gate"
	cfg.Database.Postgres.Username = "svc"
	cfg.Database.Postgres.Password = "pw"

	settings := cfg.DatabaseSettings()
	require.Equal(t, "postgres", settings.Driver)
	require.Equal(t, "db.internal", settings.Host)
	require.Equal(t, "gate", settings.Name)
	require.Equal(t, "svc", settings.User)
}
