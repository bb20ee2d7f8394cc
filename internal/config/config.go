package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	DeviceID   string
	Platform   string
	AppVersion string
}

type StorageConfig struct {
	Driver string
	DSN    string
	Key    string
}

type DevServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimit          int
	AutoActivateOwners bool
	AllowedOrigins     []string
}

type JWTConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	JWTSecret  string
	JWTIssuer  string
	JWTKID     string
}

type Config struct {
	Env             string
	APIConfig       *APIConfig
	StorageConfig   *StorageConfig
	DevServerConfig *DevServerConfig
	JWTConfig       *JWTConfig
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// LoadConfig reads the optional env file at path and then the process
// environment. A missing env file is not an error.
func LoadConfig(path string, logger *zap.Logger) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			if !os.IsNotExist(err) {
				logger.Error("failed to load .env file", zap.String("path", path), zap.Error(err))
				return nil, err
			}
			logger.Debug("no .env file, using environment", zap.String("path", path))
		}
	}

	var err error
	cfg := &Config{Env: getenv("APP_ENV", "production")}

	/** api config */
	api := &APIConfig{
		BaseURL:    getenv("API_BASE_URL", "http://127.0.0.1:8000/api/"),
		DeviceID:   os.Getenv("API_DEVICE_ID"),
		Platform:   os.Getenv("API_PLATFORM"),
		AppVersion: os.Getenv("API_APP_VERSION"),
	}
	if api.Timeout, err = durationEnv("API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	cfg.APIConfig = api

	/** session storage config */
	storage := &StorageConfig{
		Driver: strings.ToLower(getenv("SESSION_DRIVER", DriverSQLite)),
		DSN:    getenv("SESSION_DSN", "file:resirent.db"),
		Key:    getenv("SESSION_KEY", "authTokens"),
	}
	switch storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("SESSION_DRIVER: unsupported driver %q", storage.Driver)
	}
	cfg.StorageConfig = storage

	/** dev server config */
	dev := &DevServerConfig{Port: getenv("DEV_PORT", "8000")}
	if dev.ReadTimeout, err = durationEnv("DEV_READ_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if dev.WriteTimeout, err = durationEnv("DEV_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if dev.IdleTimeout, err = durationEnv("DEV_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if dev.RateLimit, err = intEnv("DEV_RATE_LIMIT", 300); err != nil {
		return nil, err
	}
	if dev.AutoActivateOwners, err = boolEnv("DEV_AUTO_ACTIVATE_OWNERS", true); err != nil {
		return nil, err
	}
	dev.AllowedOrigins = listEnv("DEV_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"})
	cfg.DevServerConfig = dev

	/** jwt config */
	jwtCfg := &JWTConfig{
		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer: getenv("JWT_ISSUER", "resirent-dev"),
		JWTKID:    os.Getenv("JWT_KID"),
	}
	if jwtCfg.AccessTTL, err = durationEnv("ACCESS_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if jwtCfg.RefreshTTL, err = durationEnv("REFRESH_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.JWTConfig = jwtCfg

	return cfg, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// listEnv splits a comma separated value, dropping empty entries.
func listEnv(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
