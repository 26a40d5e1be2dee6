package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_PATH", "STORE_BACKEND", "EXPORT_DIR", "STATIC_DIR",
		"ENABLE_DEV_ROUTES", "METRICS_ENABLED", "LOG_LEVEL", "LOG_FORMAT", "CORS_ORIGINS", "APP_ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 6050, cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "leave.db", cfg.DBPath)
	assert.False(t, cfg.EnableDevRoutes)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentThenFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("STORE_BACKEND", "JSON")
	t.Setenv("ENABLE_DEV_ROUTES", "true")
	t.Setenv("CORS_ORIGINS", "http://a.example, ,http://b.example")

	cfg, err := Load([]string{"-port", "7100"})
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Port, "flag wins over env")
	assert.Equal(t, BackendJSON, cfg.StoreBackend)
	assert.Equal(t, "data.json", cfg.DBPath)
	assert.True(t, cfg.EnableDevRoutes)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoad_BadFlag(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"-nope"})

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 6050, StoreBackend: BackendMemory, LogLevel: "info", LogFormat: "text"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"dev routes in production", func(c *Config) {
			c.Environment = "production"
			c.EnableDevRoutes = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	log := Config{LogLevel: "debug", LogFormat: "json"}.NewLogger()

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}
