package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "receiving.db"
	defaultStoreDriver    = StoreGorm
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "12h"
	defaultUploadsDir     = "./uploads"
	defaultUploadsURLBase = "/static/uploads"
	defaultMaxPhotoBytes  = 15 * 1024 * 1024
	defaultSessionIdleTTL = "30m"
	defaultLogLevel       = "info"
)

const (
	StoreGorm   = "gorm"
	StoreMemory = "memory"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	StoreDriver        string
	FixturePath        string
	JWTSecret          string
	JWTTTL             time.Duration
	UploadsDir         string
	UploadsURLBase     string
	MaxPhotoBytes      int64
	SessionIdleTTL     time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
}

// Load reads .env (when present), an optional CONFIG_FILE and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", "dev")
	v.SetDefault("http_addr", defaultHTTPAddr)
	v.SetDefault("database_url", defaultDatabaseURL)
	v.SetDefault("store_driver", defaultStoreDriver)
	v.SetDefault("fixture_path", "")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_ttl", defaultJWTTTL)
	v.SetDefault("uploads_dir", defaultUploadsDir)
	v.SetDefault("uploads_url_base", defaultUploadsURLBase)
	v.SetDefault("max_photo_bytes", defaultMaxPhotoBytes)
	v.SetDefault("session_idle_ttl", defaultSessionIdleTTL)
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("log_level", defaultLogLevel)

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         strings.ToLower(strings.TrimSpace(v.GetString("app_env"))),
		HTTPAddr:       strings.TrimSpace(v.GetString("http_addr")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		FixturePath:    strings.TrimSpace(v.GetString("fixture_path")),
		JWTSecret:      strings.TrimSpace(v.GetString("jwt_secret")),
		UploadsDir:     strings.TrimSpace(v.GetString("uploads_dir")),
		UploadsURLBase: strings.TrimRight(strings.TrimSpace(v.GetString("uploads_url_base")), "/"),
		MaxPhotoBytes:  v.GetInt64("max_photo_bytes"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}

	var err error
	cfg.JWTTTL, err = parseDuration(v, "jwt_ttl")
	if err != nil {
		return nil, err
	}
	cfg.SessionIdleTTL, err = parseDuration(v, "session_idle_ttl")
	if err != nil {
		return nil, err
	}

	for _, o := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if cfg.StoreDriver != StoreGorm && cfg.StoreDriver != StoreMemory {
		return fmt.Errorf("STORE_DRIVER must be one of: %s, %s", StoreGorm, StoreMemory)
	}
	if cfg.StoreDriver == StoreGorm && cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set when STORE_DRIVER=gorm")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be > 0")
	}
	if cfg.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be > 0")
	}
	if cfg.MaxPhotoBytes <= 0 {
		return errors.New("MAX_PHOTO_BYTES must be > 0")
	}
	if cfg.UploadsDir == "" {
		return errors.New("UPLOADS_DIR must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return errors.New("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.StoreDriver == StoreMemory {
			return errors.New("in prod/release STORE_DRIVER=memory is not allowed")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), value, err)
	}
	return d, nil
}
