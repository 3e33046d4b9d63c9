package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	HRAPI    HRAPIConfig
	Database DatabaseConfig
	Session  SessionConfig
	Export   ExportConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Backend        string // rest or postgres
	AllowedOrigins []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// HRAPIConfig points at the remote HR API used by the rest backend
type HRAPIConfig struct {
	BaseURL      string
	Token        string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type SessionConfig struct {
	IdleTimeout     time.Duration
	ConfirmationTTL time.Duration
}

type ExportConfig struct {
	ArchivePath string // empty disables archiving
	LayoutFile  string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment only")
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Backend:        strings.ToLower(getEnv("HR_BACKEND", BackendREST)),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	hrTimeout, err := time.ParseDuration(getEnv("HR_API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HR_API_TIMEOUT: %w", err)
	}
	config.HRAPI = HRAPIConfig{
		BaseURL:      getEnv("HR_API_BASE_URL", ""),
		Token:        getEnv("HR_API_TOKEN", ""),
		TokenURL:     getEnv("HR_API_TOKEN_URL", ""),
		ClientID:     getEnv("HR_API_CLIENT_ID", ""),
		ClientSecret: getEnv("HR_API_CLIENT_SECRET", ""),
		Scopes:       getEnvSlice("HR_API_SCOPES", nil),
		Timeout:      hrTimeout,
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	idleTimeout, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	confirmationTTL, err := time.ParseDuration(getEnv("CONFIRMATION_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIRMATION_TTL: %w", err)
	}
	config.Session = SessionConfig{
		IdleTimeout:     idleTimeout,
		ConfirmationTTL: confirmationTTL,
	}

	config.Export = ExportConfig{
		ArchivePath: getEnv("EXPORT_ARCHIVE_PATH", ""),
		LayoutFile:  getEnv("EXPORT_LAYOUT_FILE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.App.Backend {
	case BackendREST:
		if c.HRAPI.BaseURL == "" {
			return fmt.Errorf("HR_API_BASE_URL is required when HR_BACKEND=rest")
		}
		if c.HRAPI.TokenURL != "" && (c.HRAPI.ClientID == "" || c.HRAPI.ClientSecret == "") {
			return fmt.Errorf("HR_API_CLIENT_ID and HR_API_CLIENT_SECRET are required with HR_API_TOKEN_URL")
		}
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when HR_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("HR_BACKEND must be %q or %q, got %q", BackendREST, BackendPostgres, c.App.Backend)
	}

	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.ConfirmationTTL <= 0 {
		return fmt.Errorf("CONFIRMATION_TTL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
