package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Unified  UnifiedConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles the shared cache store.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// UnifiedConfig tunes the unified fetching and statistics services.
type UnifiedConfig struct {
	SessionsTTL      time.Duration
	SubscriptionsTTL time.Duration
	StatisticsTTL    time.Duration
	OverviewTTL      time.Duration
	StoreTimeout     time.Duration
	ExpiryWindow     time.Duration
	DefaultCurrency  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 5*time.Minute),
	}

	currency := strings.ToUpper(strings.TrimSpace(v.GetString("UNIFIED_DEFAULT_CURRENCY")))
	if currency == "" {
		currency = "SAR"
	}
	cfg.Unified = UnifiedConfig{
		SessionsTTL:      parseDuration(v.GetString("UNIFIED_SESSIONS_CACHE_TTL"), 5*time.Minute),
		SubscriptionsTTL: parseDuration(v.GetString("UNIFIED_SUBSCRIPTIONS_CACHE_TTL"), 5*time.Minute),
		StatisticsTTL:    parseDuration(v.GetString("UNIFIED_STATS_CACHE_TTL"), 10*time.Minute),
		OverviewTTL:      parseDuration(v.GetString("UNIFIED_OVERVIEW_CACHE_TTL"), 5*time.Minute),
		StoreTimeout:     parseDuration(v.GetString("UNIFIED_STORE_TIMEOUT"), 5*time.Second),
		ExpiryWindow:     parseDuration(v.GetString("UNIFIED_EXPIRY_WINDOW"), 7*24*time.Hour),
		DefaultCurrency:  currency,
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "itqan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", true)
	v.SetDefault("CACHE_DEFAULT_TTL", "5m")

	v.SetDefault("UNIFIED_SESSIONS_CACHE_TTL", "5m")
	v.SetDefault("UNIFIED_SUBSCRIPTIONS_CACHE_TTL", "5m")
	v.SetDefault("UNIFIED_STATS_CACHE_TTL", "10m")
	v.SetDefault("UNIFIED_OVERVIEW_CACHE_TTL", "5m")
	v.SetDefault("UNIFIED_STORE_TIMEOUT", "5s")
	v.SetDefault("UNIFIED_EXPIRY_WINDOW", "168h")
	v.SetDefault("UNIFIED_DEFAULT_CURRENCY", "SAR")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
