package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
		// PublicURL, when set, is used to build absolute media links instead of the request host
		PublicURL       string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		MaxRequestBytes int64  `yaml:"max_request_bytes" env:"SERVER_MAX_REQUEST_BYTES"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Media struct {
		Root              string   `yaml:"root" env:"MEDIA_ROOT"`
		URLPrefix         string   `yaml:"url_prefix" env:"MEDIA_URL_PREFIX"`
		MaxUploadBytes    int64    `yaml:"max_upload_bytes" env:"MEDIA_MAX_UPLOAD_BYTES"`
		MaxImageDimension int      `yaml:"max_image_dimension" env:"MEDIA_MAX_IMAGE_DIMENSION"`
		AllowedTypes      []string `yaml:"allowed_types" env:"MEDIA_ALLOWED_TYPES"`
	} `yaml:"media"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" env:"SEED_ENABLED"`
		Username      string `yaml:"username" env:"SEED_FACULTY_USERNAME"`
		Password      string `yaml:"password" env:"SEED_FACULTY_PASSWORD"`
		Email         string `yaml:"email" env:"SEED_FACULTY_EMAIL"`
		FirstName     string `yaml:"first_name" env:"SEED_FACULTY_FIRST_NAME"`
		LastName      string `yaml:"last_name" env:"SEED_FACULTY_LAST_NAME"`
		Subject       string `yaml:"subject" env:"SEED_FACULTY_SUBJECT"`
		ContactNumber string `yaml:"contact_number" env:"SEED_FACULTY_CONTACT_NUMBER"`
		Address       string `yaml:"address" env:"SEED_FACULTY_ADDRESS"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and env vars are enough to boot
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.MaxRequestBytes = 5 * 1024 * 1024

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "college"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "60m"
	config.JWT.RefreshTokenExpiration = "24h"
	config.JWT.Issuer = "collegeapi"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Media defaults
	config.Media.Root = "media"
	config.Media.URLPrefix = "/media"
	config.Media.MaxUploadBytes = 5 * 1024 * 1024
	config.Media.MaxImageDimension = 4096
	config.Media.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

	// Seed defaults
	config.Seed.Enabled = true
	config.Seed.Username = "faculty1"
	config.Seed.Password = "Faculty@123"
	config.Seed.Email = "faculty1@example.com"
	config.Seed.FirstName = "John"
	config.Seed.LastName = "Doe"
	config.Seed.Subject = "Computer Science"
	config.Seed.ContactNumber = "1234567890"
	config.Seed.Address = "123 Faculty Building"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if config.Media.Root == "" {
		return fmt.Errorf("media root is required")
	}

	if config.Media.MaxUploadBytes <= 0 || config.Media.MaxImageDimension <= 0 {
		return fmt.Errorf("media upload limits must be positive")
	}

	if len(config.Media.AllowedTypes) == 0 {
		return fmt.Errorf("at least one allowed media type is required")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
