package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Pricing    PricingConfig    `toml:"pricing"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Payments   PaymentsConfig   `toml:"payments"`
	Redis      RedisConfig      `toml:"redis"`
	Venues     VenuesConfig     `toml:"venues"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`  // секунды
	WriteTimeout    int `toml:"write_timeout"` // секунды
	IdleTimeout     int `toml:"idle_timeout"`  // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PricingConfig ставки по умолчанию для новых предложений, в процентах
type PricingConfig struct {
	Currency          string  `toml:"currency"`
	TaxRatePct        float64 `toml:"tax_rate_pct"`
	GratuityPct       float64 `toml:"gratuity_pct"`
	DepositPct        float64 `toml:"deposit_pct"`
	ProposalValidDays int     `toml:"proposal_valid_days"`
}

type SchedulingConfig struct {
	MaxDailyHours     int `toml:"max_daily_hours"`
	MaxWeeklyHours    int `toml:"max_weekly_hours"`
	FinalPaymentHours int `toml:"final_payment_hours"`
	NotifyTimeoutSecs int `toml:"notify_timeout"` // секунды
}

type PaymentsConfig struct {
	SecretKey string `toml:"secret_key"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Channel  string `toml:"channel"`
}

type VenuesConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает конфигурацию из файла. Секреты можно переопределить
// переменными окружения DB_PASSWORD и STRIPE_SECRET_KEY.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Payments.SecretKey = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "tour_service"},
		Pricing: PricingConfig{
			Currency:          "usd",
			DepositPct:        50,
			ProposalValidDays: 14,
		},
		Scheduling: SchedulingConfig{
			MaxDailyHours:     10,
			MaxWeeklyHours:    60,
			FinalPaymentHours: 48,
			NotifyTimeoutSecs: 5,
		},
		Redis:  RedisConfig{Addr: "localhost:6379", Channel: "tour.notifications"},
		Venues: VenuesConfig{Timeout: 3},
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.HTTPPort <= 0 {
		errs = append(errs, errors.New("server.http_port must be positive"))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database.host and database.dbname are required"))
	}
	if c.Pricing.DepositPct < 0 || c.Pricing.DepositPct > 100 {
		errs = append(errs, errors.New("pricing.deposit_pct must be within 0..100"))
	}
	if c.Pricing.TaxRatePct < 0 || c.Pricing.GratuityPct < 0 {
		errs = append(errs, errors.New("pricing rates must be non-negative"))
	}
	if c.Scheduling.MaxDailyHours <= 0 || c.Scheduling.MaxWeeklyHours < c.Scheduling.MaxDailyHours {
		errs = append(errs, errors.New("scheduling caps must be positive and weekly >= daily"))
	}
	if c.Venues.URL == "" {
		errs = append(errs, errors.New("venues.url is required"))
	}
	return errors.Join(errs...)
}
