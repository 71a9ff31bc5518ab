package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageSupabase = "supabase"
	StorageR2       = "r2"
	StorageLocal    = "local"
)

// Session stores
const (
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	BodyLimit       int           `json:"body_limit"`

	// Hosted backend
	SupabaseURL     string `json:"supabase_url"`
	SupabaseAnonKey string `json:"-"`

	// Sessions
	SessionStore string        `json:"session_store"`
	SessionTTL   time.Duration `json:"session_ttl"`
	CookieSecure bool          `json:"cookie_secure"`
	RedisURL     string        `json:"redis_url"`
	RedisPrefix  string        `json:"redis_prefix"`

	// Object storage
	StorageDriver string `json:"storage_driver"`
	StoragePath   string `json:"storage_path"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`
	R2PublicURL string `json:"r2_public_url"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`
}

// Load reads configuration from the .env file and the environment.
// A configuration that fails Validate is fatal.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from the process environment without validating it
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		BodyLimit:       getEnvAsInt("BODY_LIMIT", 100<<20), // 100MiB

		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),

		SessionStore: strings.ToLower(getEnv("SESSION_STORE", SessionRedis)),
		SessionTTL:   getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "pressdesk:"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSupabase)),
		StoragePath:   getEnv("STORAGE_PATH", "./data/files"),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "pressdesk"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2PublicURL: strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}
}

// Validate reports the first missing or invalid setting
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return errors.New("SUPABASE_ANON_KEY is required")
	}

	switch c.SessionStore {
	case SessionRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when SESSION_STORE is redis")
		}
	case SessionMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	switch c.StorageDriver {
	case StorageSupabase:
	case StorageLocal:
		if c.StoragePath == "" {
			return errors.New("STORAGE_PATH is required when STORAGE_DRIVER is local")
		}
	case StorageR2:
		if c.R2AccessKey == "" || c.R2SecretKey == "" {
			return errors.New("R2_ACCESS_KEY and R2_SECRET_ACCESS_KEY are required when STORAGE_DRIVER is r2")
		}
		if c.R2Endpoint == "" && c.R2AccountID == "" {
			return errors.New("R2_ENDPOINT or CLOUDFLARE_ACCOUNT_ID is required when STORAGE_DRIVER is r2")
		}
		if c.R2Bucket == "" {
			return errors.New("R2_BUCKET is required when STORAGE_DRIVER is r2")
		}
		if c.R2PublicURL == "" {
			return errors.New("R2_PUBLIC_URL is required when STORAGE_DRIVER is r2")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// R2ResolvedEndpoint returns the configured endpoint or derives it from the account id
func (c *Config) R2ResolvedEndpoint() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
