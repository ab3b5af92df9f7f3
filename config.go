package evolution

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a knob is left unset.
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
)

// Config holds everything the client needs to reach an Evolution API
// deployment.
type Config struct {
	// BaseURL is the root of the gateway, e.g. "http://localhost:8080".
	BaseURL string
	// APIKey is the global key sent in the apikey header of every request.
	APIKey string
	// DefaultInstance fills the {instance} path segment when a call does
	// not name one explicitly.
	DefaultInstance string
	// Timeout bounds each HTTP request, including retries of it.
	Timeout time.Duration
	// RetryCount is how many times transient failures (network errors and
	// 5xx responses) are retried. Zero disables retries.
	RetryCount int
	// Debug turns on wire-level request and response logging.
	Debug bool
	// LogLevel is consumed by the bundled tooling when building loggers.
	LogLevel string
}

// LoadConfig reads EVOLUTION_* environment variables (optionally from the
// provided file) and materializes a Config.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable
		// when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		BaseURL:         getenvWithDefault("EVOLUTION_BASE_URL", DefaultBaseURL),
		APIKey:          os.Getenv("EVOLUTION_API_KEY"),
		DefaultInstance: os.Getenv("EVOLUTION_INSTANCE_NAME"),
		Timeout:         envDuration("EVOLUTION_TIMEOUT", DefaultTimeout),
		RetryCount:      envInt("EVOLUTION_RETRY_COUNT", DefaultRetryCount),
		Debug:           envBool("EVOLUTION_DEBUG"),
		LogLevel:        getenvWithDefault("EVOLUTION_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures required fields are populated and fills defaults for
// the optional ones. A missing API key is the one fatal case.
func (c *Config) Validate() error {
	if c == nil {
		return newConfigurationError("config is nil")
	}

	if c.APIKey == "" {
		return newConfigurationError("EVOLUTION_API_KEY must be provided")
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envDuration accepts either bare seconds ("45") or a Go duration string
// ("45s", "1m30s").
func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
