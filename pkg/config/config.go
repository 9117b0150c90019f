package config

import (
	"errors"
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
	APIPrefix string

	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Dataset DatasetConfig
	Solver  SolverConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Jobs    JobsConfig
	Reports ReportsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DatasetConfig locates the CSV tables and controls seeding.
type DatasetConfig struct {
	DataDir       string
	SeedOnMissing bool
}

// SolverConfig carries the operational search cutoffs. Zero disables a cutoff.
type SolverConfig struct {
	TimeLimit time.Duration
	NodeLimit int64
}

// CacheConfig toggles the Redis-backed response cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JobsConfig tunes the asynchronous solve queue.
type JobsConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
}

// ReportsConfig controls report output and signed downloads.
type ReportsConfig struct {
	OutputDir       string
	SignedURLSecret string
	SignedURLTTL    time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("APP_ENV")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Server = ServerConfig{
		Host:            v.GetString("SERVER_HOST"),
		Port:            v.GetInt("SERVER_PORT"),
		ReadTimeout:     parseDuration(v.GetString("SERVER_READ_TIMEOUT"), 15*time.Second),
		WriteTimeout:    parseDuration(v.GetString("SERVER_WRITE_TIMEOUT"), 30*time.Second),
		ShutdownTimeout: parseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"), 10*time.Second),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Dataset = DatasetConfig{
		DataDir:       v.GetString("DATA_DIR"),
		SeedOnMissing: v.GetBool("SEED_ON_MISSING"),
	}

	cfg.Solver = SolverConfig{
		TimeLimit: parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 20*time.Second),
		NodeLimit: v.GetInt64("SOLVER_NODE_LIMIT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		QueueSize:  v.GetInt("JOBS_QUEUE_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
	}

	cfg.Reports = ReportsConfig{
		OutputDir:       v.GetString("OUTPUT_DIR"),
		SignedURLSecret: v.GetString("REPORT_SIGNING_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORT_URL_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SEED_ON_MISSING", true)

	v.SetDefault("SOLVER_TIME_LIMIT", "20s")
	v.SetDefault("SOLVER_NODE_LIMIT", 0)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_QUEUE_SIZE", 16)
	v.SetDefault("JOBS_MAX_RETRIES", 0)

	v.SetDefault("OUTPUT_DIR", "./output")
	v.SetDefault("REPORT_SIGNING_SECRET", "")
	v.SetDefault("REPORT_URL_TTL", "24h")
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
