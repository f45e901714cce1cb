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

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string    `mapstructure:"env"`       // current application environment (local, dev, production etc)
	TelegramAPIToken string    `mapstructure:"-"`         // Telegram API token loaded from environment
	Generator        Generator `mapstructure:"generator"` // remote quiz generator section
	DB               DB        `mapstructure:"database"`  // database configuration section
	Quiz             Quiz      `mapstructure:"quiz"`      // default exam parameters for new chats
	Sessions         Sessions  `mapstructure:"sessions"`  // live session housekeeping
}

// Generator describes the remote service that produces question sets.
type Generator struct {
	Endpoint     string        `mapstructure:"endpoint"`       // POST target for generation requests
	Timeout      time.Duration `mapstructure:"timeout"`        // transport-level timeout for one request
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"` // upper bound for a response body
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Quiz holds the exam parameters used until a chat picks its own.
type Quiz struct {
	Topic      string `mapstructure:"topic"`
	Difficulty string `mapstructure:"difficulty"`
	Count      int    `mapstructure:"count"`
	Language   string `mapstructure:"language"`
}

// Sessions controls how long abandoned sessions are kept in memory.
type Sessions struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron spec for the janitor
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	return load("./config", ".env")
}

func load(configPath, envFile string) (*Config, error) {
	// Pick up a local .env file; variables already set in the environment win.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("generator.endpoint", "http://localhost:3001/generate-quiz")
	v.SetDefault("generator.timeout", "60s")
	v.SetDefault("generator.max_body_bytes", 1<<20)
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("quiz.topic", "Computer Science Fundamentals")
	v.SetDefault("quiz.difficulty", "medium")
	v.SetDefault("quiz.count", 5)
	v.SetDefault("quiz.language", "English")
	v.SetDefault("sessions.idle_ttl", "30m")
	v.SetDefault("sessions.sweep_schedule", "@every 5m")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("generator.endpoint", "GENERATOR_ENDPOINT")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
