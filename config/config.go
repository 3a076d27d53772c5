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

// Режимы сопоставления игрока при загрузке администратором.
const (
	AdminPlayerMatchConfirm = "confirm"
	AdminPlayerMatchLegacy  = "legacy"
)

type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// RetryConfig описывает ограниченную политику повторов (только создание профиля при регистрации).
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string `yaml:"-"`
	JWTSecretKey string `yaml:"-"`
	ServerPort   int    `yaml:"server_port"`

	TokenTTL           time.Duration `yaml:"token_ttl"`
	AdminEmails        []string      `yaml:"admin_emails"`
	AdminPlayerMatch   string        `yaml:"admin_player_match"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`

	Storage     StorageConfig `yaml:"storage"`
	SignupRetry RetryConfig   `yaml:"signup_retry"`
}

// Defaults returns the configuration used before env and file overrides are applied.
func Defaults() *Config {
	return &Config{
		ServerPort:         8080,
		TokenTTL:           24 * time.Hour,
		AdminPlayerMatch:   AdminPlayerMatchConfirm,
		CORSAllowedOrigins: []string{"*"},
		MaxUploadBytes:     200 << 20,
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		SignupRetry: RetryConfig{
			MaxAttempts:    5,
			InitialBackoff: time.Second,
			MaxBackoff:     8 * time.Second,
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML-файл из CONFIG_FILE
// (если задан), затем переменные окружения. Секреты читаются только из окружения.
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	c.Storage.AccessKeyID = os.Getenv("STORAGE_ACCESS_KEY_ID")
	c.Storage.SecretAccessKey = os.Getenv("STORAGE_SECRET_ACCESS_KEY")

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		c.ServerPort = port
	}

	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		c.AdminEmails = parseCSV(v)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = parseCSV(v)
	}
	if v := os.Getenv("ADMIN_PLAYER_MATCH"); v != "" {
		c.AdminPlayerMatch = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB environment variable: %w", err)
		}
		c.MaxUploadBytes = mb << 20
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL environment variable: %w", err)
		}
		c.TokenTTL = d
	}

	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("STORAGE_REGION"); v != "" {
		c.Storage.Region = v
	}
	if v := os.Getenv("STORAGE_PUBLIC_BASE_URL"); v != "" {
		c.Storage.PublicBaseURL = v
	}

	if v := os.Getenv("SIGNUP_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SIGNUP_RETRY_MAX_ATTEMPTS environment variable: %w", err)
		}
		c.SignupRetry.MaxAttempts = n
	}
	if v := os.Getenv("SIGNUP_RETRY_INITIAL_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SIGNUP_RETRY_INITIAL_BACKOFF environment variable: %w", err)
		}
		c.SignupRetry.InitialBackoff = d
	}
	if v := os.Getenv("SIGNUP_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SIGNUP_RETRY_MAX_BACKOFF environment variable: %w", err)
		}
		c.SignupRetry.MaxBackoff = d
	}

	return nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.AdminPlayerMatch != AdminPlayerMatchConfirm && c.AdminPlayerMatch != AdminPlayerMatchLegacy {
		return fmt.Errorf("ADMIN_PLAYER_MATCH must be %q or %q, got %q", AdminPlayerMatchConfirm, AdminPlayerMatchLegacy, c.AdminPlayerMatch)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload size must be positive")
	}
	if c.SignupRetry.MaxAttempts < 1 {
		return errors.New("signup retry max attempts must be at least 1")
	}
	if c.SignupRetry.InitialBackoff < 0 || c.SignupRetry.MaxBackoff < c.SignupRetry.InitialBackoff {
		return errors.New("signup retry backoff must be non-negative and max >= initial")
	}
	return nil
}

// ValidateStorage checks the blob store settings; only commands that touch storage need them.
func (c *Config) ValidateStorage() error {
	s := c.Storage
	if s.Endpoint == "" || s.AccessKeyID == "" || s.SecretAccessKey == "" || s.PublicBaseURL == "" {
		return errors.New("STORAGE_ENDPOINT, STORAGE_ACCESS_KEY_ID, STORAGE_SECRET_ACCESS_KEY and STORAGE_PUBLIC_BASE_URL are required")
	}
	return nil
}

// IsAdminEmail сообщает, входит ли email в список администраторов.
// Используется только при регистрации, чтобы проставить is_admin.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.TrimSpace(email)
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
