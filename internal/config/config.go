package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type AnalyticsConfig struct {
	GenerationTimeout time.Duration
	MemoryLimitBytes  uint64
	MemoryThreshold   float64
}

type SchedulerConfig struct {
	Enabled bool
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	AMQP        AMQPConfig
	Analytics   AnalyticsConfig
	Scheduler   SchedulerConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
			Queue:    v.GetString("AMQP_QUEUE"),
		},
		Analytics: AnalyticsConfig{
			GenerationTimeout: v.GetDuration("ANALYTICS_GENERATION_TIMEOUT"),
			MemoryLimitBytes:  v.GetUint64("ANALYTICS_MEMORY_LIMIT_BYTES"),
			MemoryThreshold:   v.GetFloat64("ANALYTICS_MEMORY_THRESHOLD"),
		},
		Scheduler: SchedulerConfig{
			Enabled: v.GetBool("SCHEDULER_ENABLED"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "orders"
	}
	if cfg.AMQP.Queue == "" {
		cfg.AMQP.Queue = "analytics.order-events"
	}
	if cfg.Analytics.GenerationTimeout <= 0 {
		cfg.Analytics.GenerationTimeout = 5 * time.Minute
	}
	if cfg.Analytics.MemoryLimitBytes == 0 {
		cfg.Analytics.MemoryLimitBytes = 1 << 30
	}
	if cfg.Analytics.MemoryThreshold <= 0 || cfg.Analytics.MemoryThreshold > 1 {
		cfg.Analytics.MemoryThreshold = 0.8
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
