package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from a YAML file and the environment.
type Config struct {
	Env      string   `mapstructure:"env"` // local, dev, production
	Server   Server   `mapstructure:"server"`
	Admin    Admin    `mapstructure:"admin"`
	Redis    Redis    `mapstructure:"redis"`
	Postgres Postgres `mapstructure:"postgres"`
	SQLite   SQLite   `mapstructure:"sqlite"`
	Catalog  Catalog  `mapstructure:"catalog"`
	History  History  `mapstructure:"history"`
}

type Server struct {
	Port          string        `mapstructure:"port"`
	FeedbackDelay time.Duration `mapstructure:"feedback_delay"` // pause after a graded answer
	AckDelay      time.Duration `mapstructure:"ack_delay"`      // pause after a review-mode selection
}

type Admin struct {
	PIN           string `mapstructure:"pin"` // empty disables the admin endpoints
	SessionSecret string `mapstructure:"session_secret"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"` // session liveness marker
}

type Postgres struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type SQLite struct {
	Path string `mapstructure:"path"` // empty keeps history in memory
}

type Catalog struct {
	TTL      time.Duration `mapstructure:"ttl"`
	SeedFile string        `mapstructure:"seed_file"`
}

type History struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneSchedule string        `mapstructure:"prune_schedule"` // cron spec, empty disables pruning
}

// Load reads the YAML config at path, then applies .env and environment overrides.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetDefault("env", "local")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.feedback_delay", "1500ms")
	v.SetDefault("server.ack_delay", "300ms")
	v.SetDefault("redis.ttl", "2h")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("catalog.ttl", "10m")
	v.SetDefault("catalog.seed_file", "data/questions.yaml")
	v.SetDefault("history.retention", "720h")
	v.SetDefault("history.prune_schedule", "@daily")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets and connection strings usually come from the environment.
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("admin.pin", "ADMIN_PIN")
	_ = v.BindEnv("admin.session_secret", "SESSION_SECRET")
	_ = v.BindEnv("postgres.url", "DATABASE_URL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
