// Package config loads all runtime configuration from the environment with
// sane defaults, so components receive an explicit struct instead of reading
// env vars themselves.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AWS       AWSConfig       `mapstructure:"aws"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type ScoringConfig struct {
	// MinScore is the minimum total (0-100) for a match to be persisted.
	MinScore int `mapstructure:"min_score"`
}

type QueueConfig struct {
	Workers      int           `mapstructure:"workers"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseBackoff  time.Duration `mapstructure:"base_backoff"`
	ApplyTimeout time.Duration `mapstructure:"apply_timeout"`
	// StaleAfter is how long a job may sit in processing before the sweep
	// reclaims it. Defaults to 2x the apply timeout.
	StaleAfter time.Duration `mapstructure:"stale_after"`

	// RateLimitMax apply starts per RateLimitWindow, across all workers.
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`

	// ApplyServiceURL is the base URL of the browser-automation service that
	// performs the actual form submission.
	ApplyServiceURL string `mapstructure:"apply_service_url"`
}

type SchedulerConfig struct {
	// ScoringSpec is a robfig/cron spec for periodic scoring runs.
	ScoringSpec string `mapstructure:"scoring_spec"`
}

// Load reads configuration from the environment (APPLYFLOW_* variables, e.g.
// APPLYFLOW_DB_HOST) applying defaults for everything optional.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("applyflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "applyflow")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.bucket", "applyflow-documents")

	v.SetDefault("scoring.min_score", 60)

	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.base_backoff", 5*time.Second)
	v.SetDefault("queue.apply_timeout", 30*time.Second)
	v.SetDefault("queue.stale_after", 60*time.Second)
	v.SetDefault("queue.rate_limit_max", 10)
	v.SetDefault("queue.rate_limit_window", 60*time.Second)
	v.SetDefault("queue.apply_service_url", "http://localhost:9100")

	v.SetDefault("scheduler.scoring_spec", "@every 1h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Queue.StaleAfter < cfg.Queue.ApplyTimeout {
		cfg.Queue.StaleAfter = 2 * cfg.Queue.ApplyTimeout
	}

	return &cfg, nil
}
