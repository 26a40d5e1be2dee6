/*
config.go - Server configuration

PURPOSE:
  Collects server settings from command-line flags. Every flag defaults
  to an environment variable, and a .env file in the working directory
  is loaded first when present.

SETTINGS:
  Flag        Env                 Default
  -port       PORT                6050
  -db         DB_PATH             leave.db (sqlite), data.json (json)
  -store      STORE_BACKEND       sqlite   (sqlite | json | memory)
  -exports    EXPORT_DIR          ""       (no archive copy)
  -static     STATIC_DIR          web/dist
  -dev        ENABLE_DEV_ROUTES   false
  -metrics    METRICS_ENABLED     true
  -log-level  LOG_LEVEL           info
  -log-format LOG_FORMAT          text     (text | json)
              CORS_ORIGINS        comma separated, empty = local dev origins
              APP_ENV             development

SEE ALSO:
  - cmd/server/main.go: Uses Load, Validate and NewLogger
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Config holds all server settings.
type Config struct {
	Port            int
	DBPath          string
	StoreBackend    string
	ExportDir       string
	StaticDir       string
	EnableDevRoutes bool
	EnableMetrics   bool
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
	Environment     string
}

// Load reads .env (if any), then parses args over environment defaults.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "port", getEnvInt("PORT", 6050), "HTTP server port")
	flags.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", ""), "Database path (sqlite file or JSON document)")
	flags.StringVar(&cfg.StoreBackend, "store", getEnv("STORE_BACKEND", BackendSQLite), "Store backend: sqlite, json or memory")
	flags.StringVar(&cfg.ExportDir, "exports", getEnv("EXPORT_DIR", ""), "Directory receiving a copy of each detail export")
	flags.StringVar(&cfg.StaticDir, "static", getEnv("STATIC_DIR", "web/dist"), "Frontend build directory")
	flags.BoolVar(&cfg.EnableDevRoutes, "dev", getEnvBool("ENABLE_DEV_ROUTES", false), "Enable reset and scenario routes")
	flags.BoolVar(&cfg.EnableMetrics, "metrics", getEnvBool("METRICS_ENABLED", true), "Expose Prometheus metrics at /metrics")
	flags.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level")
	flags.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", ""))
	cfg.Environment = getEnv("APP_ENV", "development")

	if cfg.DBPath == "" {
		switch cfg.StoreBackend {
		case BackendSQLite:
			cfg.DBPath = "leave.db"
		case BackendJSON:
			cfg.DBPath = "data.json"
		}
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendJSON, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Environment == "production" && c.EnableDevRoutes {
		return fmt.Errorf("dev routes must not be enabled in production")
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	parsed, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
