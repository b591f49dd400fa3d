package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr            = ":8111"
	DefaultUpstreamBaseURL = "http://localhost:8112/api/v1/employee"
	DefaultEnvironment     = "development"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = slog.LevelInfo
)

// Server captures process-wide configuration for the facade. It is built
// once at startup and passed by value; nothing mutates it afterwards.
type Server struct {
	Addr            string
	UpstreamBaseURL string
	Environment     string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TracingEnabled  bool
}

// MockUpstream configures cmd/mock-employee-api.
type MockUpstream struct {
	Addr           string
	PathPrefix     string
	SeedCount      int
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named). Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            getEnv("EMPLOYEE_API_ADDR", DefaultAddr),
		UpstreamBaseURL: strings.TrimRight(getEnv("EMPLOYEE_UPSTREAM_URL", DefaultUpstreamBaseURL), "/"),
		Environment:     getEnv("ENVIRONMENT", DefaultEnvironment),
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		TracingEnabled:  os.Getenv("TRACING_ENABLED") == "true",
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects an upstream URL that is not an absolute http(s) address.
func (s Server) Validate() error {
	u, err := url.Parse(s.UpstreamBaseURL)
	if err != nil {
		return fmt.Errorf("invalid EMPLOYEE_UPSTREAM_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid EMPLOYEE_UPSTREAM_URL %q: scheme must be http or https", s.UpstreamBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid EMPLOYEE_UPSTREAM_URL %q: host is required", s.UpstreamBaseURL)
	}
	if s.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// MockFromEnv builds the mock upstream configuration.
func MockFromEnv() MockUpstream {
	return MockUpstream{
		Addr:           getEnv("MOCK_API_ADDR", ":8112"),
		PathPrefix:     getEnv("MOCK_API_PREFIX", "/api/v1/employee"),
		SeedCount:      getInt("MOCK_SEED_COUNT", 50),
		RateLimitRPS:   getFloat("MOCK_RATE_LIMIT_RPS", 0),
		RateLimitBurst: getInt("MOCK_RATE_LIMIT_BURST", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return DefaultLogLevel
	}
	return level
}
