package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	// DefaultConfigPath is the config file looked up when no path is given.
	DefaultConfigPath = "config.yaml"
	// DefaultListenAddr is the HTTP listen address.
	DefaultListenAddr = ":8080"
	// DefaultJWTExpiry is the admin session lifetime.
	DefaultJWTExpiry = 12 * time.Hour
	// DefaultCostWindowDays is the trailing cost window used by the metrics engine.
	DefaultCostWindowDays = 30
)

// AppConfig holds process-level inputs provided by the CLI.
type AppConfig struct {
	ConfigPath string // Path passed via --config.
}

// Config is the fully resolved service configuration.
type Config struct {
	ListenAddr string          `yaml:"listen-addr"`
	Database   DatabaseConfig  `yaml:"database"`
	JWT        JWTConfig       `yaml:"jwt"`
	Redis      RedisConfig     `yaml:"redis"`
	Log        LogConfig       `yaml:"log"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Metrics    MetricsConfig   `yaml:"metrics"`
}

// DatabaseConfig carries the DSNs for the two datastores.
type DatabaseConfig struct {
	FounderDSN string `yaml:"founder-dsn"` // Founder platform tables (admins, flags, settings, snapshots).
	MainDSN    string `yaml:"main-dsn"`    // Main system tables (accounts, subscriptions, ledger).
}

// JWTConfig configures admin session tokens.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// RedisConfig configures the session registry. An empty Addr selects the in-memory registry.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig configures logrus output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json".
	File       string `yaml:"file"`   // Optional rotated log file.
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	Compress   bool   `yaml:"compress"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ExporterType string `yaml:"exporter-type"` // "stdout" or "otlp".
	Endpoint     string `yaml:"endpoint"`
	ServiceName  string `yaml:"service-name"`
}

// MetricsConfig configures the metrics engine and snapshot recorder.
type MetricsConfig struct {
	CostWindowDays        int           `yaml:"cost-window-days"`
	SnapshotInterval      time.Duration `yaml:"snapshot-interval"`
	SnapshotRetentionDays int           `yaml:"snapshot-retention-days"`
	QueryTimeout          time.Duration `yaml:"query-timeout"`
}

// ResolveConfigPath returns the explicit path, FOUNDER_CONFIG, or the default path.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("FOUNDER_CONFIG")); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load reads the YAML config (if present), applies environment overrides and defaults,
// and validates the result.
func Load(path string) (Config, error) {
	cfg, errRead := read(path)
	if errRead != nil {
		return Config{}, errRead
	}
	if errValidate := cfg.Validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// LoadDatabase is Load for commands that only touch the datastores; the JWT secret is not required.
func LoadDatabase(path string) (Config, error) {
	cfg, errRead := read(path)
	if errRead != nil {
		return Config{}, errRead
	}
	if errValidate := cfg.validateDatabase(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

func read(path string) (Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	var cfg Config
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	if errDatabase := c.validateDatabase(); errDatabase != nil {
		return errDatabase
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret is not set")
	}
	return nil
}

func (c Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.FounderDSN) == "" {
		return errors.New("config: FOUNDER_DATABASE_URL or DATABASE_URL is not set")
	}
	if strings.TrimSpace(c.Database.MainDSN) == "" {
		return errors.New("config: MAIN_DATABASE_URL or DATABASE_URL is not set")
	}
	return nil
}

// applyEnv overlays environment variables onto the file configuration.
func applyEnv(cfg *Config) {
	shared := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if v := firstEnv("FOUNDER_DATABASE_URL"); v != "" {
		cfg.Database.FounderDSN = v
	} else if cfg.Database.FounderDSN == "" {
		cfg.Database.FounderDSN = shared
	}
	if v := firstEnv("MAIN_DATABASE_URL"); v != "" {
		cfg.Database.MainDSN = v
	} else if cfg.Database.MainDSN == "" {
		cfg.Database.MainDSN = shared
	}
	if v := firstEnv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := firstEnv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := firstEnv("LISTEN_ADDR", "PORT"); v != "" {
		if _, errAtoi := strconv.Atoi(v); errAtoi == nil {
			v = ":" + v
		}
		cfg.ListenAddr = v
	}
	if v := firstEnv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := firstEnv("OTEL_EXPORTER_TYPE"); v != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.ExporterType = v
	}
	if v := firstEnv("OTEL_EXPORTER_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = DefaultJWTExpiry
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Telemetry.ExporterType == "" {
		cfg.Telemetry.ExporterType = "stdout"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "founder-platform"
	}
	if cfg.Metrics.CostWindowDays <= 0 {
		cfg.Metrics.CostWindowDays = DefaultCostWindowDays
	}
	if cfg.Metrics.SnapshotInterval <= 0 {
		cfg.Metrics.SnapshotInterval = 6 * time.Hour
	}
	if cfg.Metrics.SnapshotRetentionDays <= 0 {
		cfg.Metrics.SnapshotRetentionDays = 365
	}
	if cfg.Metrics.QueryTimeout <= 0 {
		cfg.Metrics.QueryTimeout = 10 * time.Second
	}
}

// firstEnv returns the first non-empty environment value among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
