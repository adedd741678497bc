package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config holds all application configuration.
type Config struct {
	Env      string // APP_ENV: "production" or "development"
	Database DatabaseConfig
	Mongo    MongoConfig
	GRPC     GRPCConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	NATS     NATSConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
	Donation DonationConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Backend string // "sqlite" (default) or "mongo"
	Path    string // SQLite database file path
}

// MongoConfig is only read when Database.Backend is "mongo".
type MongoConfig struct {
	URI string
	DB  string
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., ":50051")
}

// HTTPConfig contains REST server settings. An empty address disables it.
type HTTPConfig struct {
	Address string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret
}

// NATSConfig enables real-time events when URL is set.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// SMTPConfig enables email when Host is set.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

type NotifyConfig struct {
	Timeout time.Duration
}

// DonationConfig holds LOCAL_TIMEZONE, the zone used for submitted
// timestamps that carry no offset.
type DonationConfig struct {
	Location *time.Location
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := load("")
	if err != nil {
		return nil, err
	}
	// Validate critical settings
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load("dev-secret-change-me")
}

func load(defaultSecret string) (*Config, error) {
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(getEnv("LOCAL_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCAL_TIMEZONE: %w", err)
	}
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Database: DatabaseConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
			Path:    getEnv("DB_PATH", "sewa.db"),
		},
		Mongo: MongoConfig{
			URI: getEnv("MONGO_URI", ""),
			DB:  getEnv("MONGO_DB", "sewa"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":8080"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultSecret),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "sewa"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       smtpPort,
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			From:       getEnv("SMTP_FROM", ""),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
		},
		Notify:   NotifyConfig{Timeout: notifyTimeout},
		Donation: DonationConfig{Location: loc},
	}

	switch cfg.Database.Backend {
	case BackendSQLite:
	case BackendMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Database.Backend)
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// getEnvDuration accepts Go durations ("5s") and falls back to defaultVal.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%s must be positive", key)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	store := c.Database.Path
	if c.Database.Backend == BackendMongo {
		store = "mongo/" + c.Mongo.DB
	}
	zone := "UTC"
	if c.Donation.Location != nil {
		zone = c.Donation.Location.String()
	}
	return fmt.Sprintf("Config{Env: %s, Store: %s, gRPC: %s, HTTP: %s, NATS: %t, SMTP: %s:%d, Zone: %s, Auth: *** (masked) ***}",
		c.Env, store, c.GRPC.Address, c.HTTP.Address, c.NATS.URL != "", c.SMTP.Host, c.SMTP.Port, zone)
}
