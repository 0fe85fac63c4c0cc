// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/utils"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	JWT      JWTConfig      `json:"jwt"`
	Logging  LoggingConfig  `json:"logging"`
	Cache    CacheConfig    `json:"cache"`
	Geo      GeoConfig      `json:"geo"`
	Recorder RecorderConfig `json:"recorder"`
	App      AppConfig      `json:"app"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	AuthRateLimit   int           `json:"auth_rate_limit"`   // requests per minute
	LinkRateLimit   int           `json:"link_rate_limit"`   // requests per minute
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	PrivateKey      string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey       string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys      bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Format     string `json:"format"` // json, text
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Provider        string        `json:"provider"` // redis, memory
	RedisURL        string        `json:"redis_url"`
	RedisDB         int           `json:"redis_db"`
	RedisPrefix     string        `json:"redis_prefix"`
	DefaultTTL      time.Duration `json:"default_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

type GeoConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path"` // MaxMind City database file
}

type RecorderConfig struct {
	QueueSize int    `json:"queue_size"`
	Workers   int    `json:"workers"`
	LogPath   string `json:"log_path"`
}

type AppConfig struct {
	BaseURL     string `json:"base_url"` // public base of short URLs
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "postgres"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024), // 1MB
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://kusanagi.sh", "https://app.kusanagi.sh"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", utils.CORSMaxAge),
			AuthRateLimit:    getEnvInt("AUTH_RATE_LIMIT", 20),
			LinkRateLimit:    getEnvInt("LINK_RATE_LIMIT", 120),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", utils.AccessTokenTTL),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", utils.RefreshTokenTTL),
			Issuer:          getEnvString("JWT_ISSUER", "kusanagi"),
			Audience:        getEnvString("JWT_AUDIENCE", "kusanagi-api"),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			Format:     getEnvString("LOG_FORMAT", "json"),
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/kusanagi/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Cache: CacheConfig{
			Enabled:         getEnvBool("CACHE_ENABLED", true),
			Provider:        getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:        getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:         getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:     getEnvString("CACHE_REDIS_PREFIX", "kusanagi:"),
			DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
			CleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Geo: GeoConfig{
			Enabled: getEnvBool("GEO_ENABLED", false),
			DBPath:  getEnvString("GEO_DB_PATH", "/var/lib/kusanagi/GeoLite2-City.mmdb"),
		},
		Recorder: RecorderConfig{
			QueueSize: getEnvInt("RECORDER_QUEUE_SIZE", 4096),
			Workers:   getEnvInt("RECORDER_WORKERS", 4),
			LogPath:   getEnvString("RECORDER_LOG_PATH", "/var/log/kusanagi/visits.log"),
		},
		App: AppConfig{
			BaseURL:     getEnvString("APP_BASE_URL", "https://kusanagi.sh"),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}

	// Validate JWT configuration
	if !cfg.JWT.UseRSAKeys {
		if cfg.JWT.SecretKey == "" {
			errors = append(errors, "JWT_SECRET_KEY is required")
		}
		if len(cfg.JWT.SecretKey) < 32 {
			errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
		}
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.RefreshTokenTTL <= 0 {
		errors = append(errors, "JWT_REFRESH_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		errors = append(errors, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		errors = append(errors, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}

	// Validate app configuration
	if cfg.App.BaseURL == "" {
		errors = append(errors, "APP_BASE_URL is required")
	}
	if !strings.HasPrefix(cfg.App.BaseURL, "http://") && !strings.HasPrefix(cfg.App.BaseURL, "https://") {
		errors = append(errors, "APP_BASE_URL must be an http(s) URL")
	}

	// Validate logging configuration
	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		valid := false
		for _, level := range validLevels {
			if cfg.Logging.Level == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled {
		if cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
			errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled with redis provider")
		}
	}

	// Validate geo configuration if enabled
	if cfg.Geo.Enabled && cfg.Geo.DBPath == "" {
		errors = append(errors, "GEO_DB_PATH is required when geo lookups are enabled")
	}

	// Validate recorder configuration
	if cfg.Recorder.QueueSize <= 0 {
		errors = append(errors, "RECORDER_QUEUE_SIZE must be positive")
	}
	if cfg.Recorder.Workers <= 0 {
		errors = append(errors, "RECORDER_WORKERS must be positive")
	}

	// Return validation errors if any
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
