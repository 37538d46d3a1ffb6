package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Error policies select which envelopes the gateway treats as rejections.
const (
	PolicySuccessFlagSet   = "success_flag_set"
	PolicySuccessFlagUnset = "success_flag_unset"
)

type Config struct {
	// Backend API
	APIBaseURL  string        `yaml:"api_base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	ErrorPolicy string        `yaml:"error_policy"`

	// Local storage
	StorageBackend  string        `yaml:"storage_backend"`
	SQLiteDBPath    string        `yaml:"sqlite_db_path"`
	StorageCacheTTL time.Duration `yaml:"storage_cache_ttl"`

	// UI side effects
	ToastDuration time.Duration `yaml:"toast_duration"`
	LoginPath     string        `yaml:"login_path"`

	// Uploads
	UploadConcurrency int `yaml:"upload_concurrency"`

	// AMQP UI bridge
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		APIBaseURL:        "http://j9sapr.natappfree.cc/bookkeeping",
		HTTPTimeout:       30 * time.Second,
		ErrorPolicy:       PolicySuccessFlagSet,
		StorageBackend:    "sqlite",
		SQLiteDBPath:      "./data/session.db",
		StorageCacheTTL:   30 * time.Second,
		ToastDuration:     2 * time.Second,
		LoginPath:         "pages/login/login",
		UploadConcurrency: 1,
		AMQPExchange:      "bookkeeping.ui",
		LogLevel:          "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.ErrorPolicy = getEnv("GATEWAY_ERROR_POLICY", cfg.ErrorPolicy)
	cfg.StorageBackend = getEnv("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.StorageCacheTTL = getEnvDuration("STORAGE_CACHE_TTL", cfg.StorageCacheTTL)
	cfg.ToastDuration = getEnvDuration("TOAST_DURATION", cfg.ToastDuration)
	cfg.LoginPath = getEnv("LOGIN_PATH", cfg.LoginPath)
	cfg.UploadConcurrency = getEnvInt("UPLOAD_CONCURRENCY", cfg.UploadConcurrency)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.HTTPTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must not be negative", c.HTTPTimeout))
	}

	switch c.ErrorPolicy {
	case PolicySuccessFlagSet, PolicySuccessFlagUnset:
	default:
		errors = append(errors, fmt.Sprintf("invalid error policy '%s': must be one of [%s %s]",
			c.ErrorPolicy, PolicySuccessFlagSet, PolicySuccessFlagUnset))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.StorageBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validBackends))
	}
	if c.StorageBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.StorageCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid storage cache TTL %v: must not be negative", c.StorageCacheTTL))
	}

	if c.ToastDuration <= 0 {
		errors = append(errors, fmt.Sprintf("invalid toast duration %v: must be positive", c.ToastDuration))
	}
	if strings.TrimSpace(c.LoginPath) == "" {
		errors = append(errors, "login path cannot be empty")
	}

	if c.UploadConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid upload concurrency %d: must be at least 1", c.UploadConcurrency))
	} else if c.UploadConcurrency > 16 {
		errors = append(errors, fmt.Sprintf("invalid upload concurrency %d: must be at most 16", c.UploadConcurrency))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
