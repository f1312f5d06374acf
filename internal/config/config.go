package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Dataset   DatasetConfig
	Upload    UploadConfig
	Simulator SimulatorConfig
	Session   SessionConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	LogLevel    string
	BodyLimitMB int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	UploadPerHour  int
	SessionPerHour int
}

type DatasetConfig struct {
	// Path of the mock reconstruction document; empty uses the built-in one
	Path string
}

type UploadConfig struct {
	Dir       string
	MaxSizeMB int
}

type SimulatorConfig struct {
	TickInterval time.Duration
	GraceDelay   time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Load reads config.yaml (optional) from . or ./config, then the
// environment.
func Load() (*Config, error) {
	readSecret("REDIS_PASSWORD")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.body_limit_mb", "BODY_LIMIT_MB")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("ratelimit.upload_per_hour", "RATELIMIT_UPLOAD_PER_HOUR")
	_ = v.BindEnv("ratelimit.session_per_hour", "RATELIMIT_SESSION_PER_HOUR")
	_ = v.BindEnv("dataset.path", "DATASET_PATH")
	_ = v.BindEnv("upload.dir", "UPLOAD_DIR")
	_ = v.BindEnv("upload.max_size_mb", "UPLOAD_MAX_SIZE_MB")
	_ = v.BindEnv("simulator.tick_interval", "SIMULATOR_TICK_INTERVAL")
	_ = v.BindEnv("simulator.grace_delay", "SIMULATOR_GRACE_DELAY")
	_ = v.BindEnv("session.idle_ttl", "SESSION_IDLE_TTL")
	_ = v.BindEnv("session.sweep_interval", "SESSION_SWEEP_INTERVAL")

	// Defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.body_limit_mb", 110)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.upload_per_hour", 50)
	v.SetDefault("ratelimit.session_per_hour", 100)
	v.SetDefault("dataset.path", "")
	v.SetDefault("upload.dir", "")
	v.SetDefault("upload.max_size_mb", 100)
	v.SetDefault("simulator.tick_interval", "50ms")
	v.SetDefault("simulator.grace_delay", "500ms")
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.sweep_interval", "1m")

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("server.port"),
			Env:         v.GetString("server.env"),
			LogLevel:    v.GetString("server.log_level"),
			BodyLimitMB: v.GetInt("server.body_limit_mb"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			UploadPerHour:  v.GetInt("ratelimit.upload_per_hour"),
			SessionPerHour: v.GetInt("ratelimit.session_per_hour"),
		},
		Dataset: DatasetConfig{
			Path: v.GetString("dataset.path"),
		},
		Upload: UploadConfig{
			Dir:       v.GetString("upload.dir"),
			MaxSizeMB: v.GetInt("upload.max_size_mb"),
		},
		Simulator: SimulatorConfig{
			TickInterval: v.GetDuration("simulator.tick_interval"),
			GraceDelay:   v.GetDuration("simulator.grace_delay"),
		},
		Session: SessionConfig{
			IdleTTL:       v.GetDuration("session.idle_ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
	}

	return cfg, nil
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}

// BodyLimitBytes returns the request body limit in bytes
func (c *Config) BodyLimitBytes() int {
	return c.Server.BodyLimitMB << 20
}
