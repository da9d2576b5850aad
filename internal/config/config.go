package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Redis     RedisConfig     `toml:"redis"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Stripe    StripeConfig    `toml:"stripe"`
	Documents DocumentsConfig `toml:"documents"`
	Auth      AuthConfig      `toml:"auth"`
	Booking   BookingConfig   `toml:"booking"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
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
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
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

// RedisConfig блокировки автомобилей, планировщика и лимиты запросов
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	LockTTL         int    `toml:"lock_ttl"` // секунды
	RateLimit       int64  `toml:"rate_limit"`
	RateLimitWindow int    `toml:"rate_limit_window"` // секунды
}

type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	WriteTimeout int      `toml:"write_timeout"` // секунды
}

type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
	Currency      string `toml:"currency"`
	SuccessURL    string `toml:"success_url"`
	CancelURL     string `toml:"cancel_url"`
}

type DocumentsConfig struct {
	URL           string `toml:"url"`
	Timeout       int    `toml:"timeout"` // секунды
	WebhookSecret string `toml:"webhook_secret"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// BookingConfig правила бронирования, длительности в минутах
type BookingConfig struct {
	TaxRate                 float64 `toml:"tax_rate"`
	DepositAmount           float64 `toml:"deposit_amount"`
	MinLeadTimeMinutes      int     `toml:"min_lead_time_minutes"`
	AvailabilityBufferHours int     `toml:"availability_buffer_hours"`
}

// SchedulerConfig периоды планировщика истечения
type SchedulerConfig struct {
	Enabled                  bool   `toml:"enabled"`
	IntervalSeconds          int    `toml:"interval_seconds"`
	PendingTimeoutMinutes    int    `toml:"pending_timeout_minutes"`
	DocumentGraceMinutes     int    `toml:"document_grace_minutes"`
	VerifiedUnpaidTTLMinutes int    `toml:"verified_unpaid_ttl_minutes"`
	DraftMaxAgeHours         int    `toml:"draft_max_age_hours"`
	RefundRetryMinutes       int    `toml:"refund_retry_minutes"`
	BatchSize                uint64 `toml:"batch_size"`
}

// Переменные окружения, перекрывающие секреты из файла
const (
	envDBPassword             = "DB_PASSWORD"
	envStripeSecretKey        = "STRIPE_SECRET_KEY"
	envStripeWebhookSecret    = "STRIPE_WEBHOOK_SECRET"
	envJWTSecret              = "JWT_SECRET"
	envDocumentsWebhookSecret = "DOCUMENTS_WEBHOOK_SECRET"
	envRedisAddr              = "REDIS_ADDR"
	envKafkaBrokers           = "KAFKA_BROKERS"
)

// Load читает toml файл, затем .env и переменные окружения
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.Database.Password, envDBPassword)
	override(&c.Stripe.SecretKey, envStripeSecretKey)
	override(&c.Stripe.WebhookSecret, envStripeWebhookSecret)
	override(&c.Auth.JWTSecret, envJWTSecret)
	override(&c.Documents.WebhookSecret, envDocumentsWebhookSecret)
	override(&c.Redis.Addr, envRedisAddr)

	if v := os.Getenv(envKafkaBrokers); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Kafka.Brokers = brokers
	}
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 15)
	setInt(&c.Server.WriteTimeout, 15)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 30)

	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)

	setString(&c.Logs.Level, "info")
	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "car_rental")

	setInt(&c.Redis.LockTTL, 10)
	if c.Redis.RateLimit == 0 {
		c.Redis.RateLimit = 20
	}
	setInt(&c.Redis.RateLimitWindow, 60)

	setString(&c.Kafka.Topic, "booking-notifications")
	setInt(&c.Kafka.WriteTimeout, 5)

	setString(&c.Stripe.Currency, "usd")
	setInt(&c.Documents.Timeout, 10)

	setInt(&c.Booking.MinLeadTimeMinutes, int(domain.DefaultMinLeadTime/time.Minute))
	setInt(&c.Booking.AvailabilityBufferHours, int(domain.DefaultAvailabilityBuffer/time.Hour))

	setInt(&c.Scheduler.IntervalSeconds, int(domain.DefaultSchedulerInterval/time.Second))
	setInt(&c.Scheduler.PendingTimeoutMinutes, int(domain.DefaultPendingTimeout/time.Minute))
	setInt(&c.Scheduler.DocumentGraceMinutes, int(domain.DefaultDocumentGrace/time.Minute))
	setInt(&c.Scheduler.VerifiedUnpaidTTLMinutes, int(domain.DefaultVerifiedUnpaidTTL/time.Minute))
	setInt(&c.Scheduler.DraftMaxAgeHours, int(domain.DefaultDraftMaxAge/time.Hour))
	setInt(&c.Scheduler.RefundRetryMinutes, int(domain.DefaultRefundRetryBackoff/time.Minute))
	if c.Scheduler.BatchSize == 0 {
		c.Scheduler.BatchSize = domain.DefaultSweepBatchSize
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// Validate проверяет обязательные параметры, возвращает все найденные ошибки сразу
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret is required (or %s)", envJWTSecret))
	}
	if c.Booking.TaxRate < 0 || c.Booking.TaxRate >= 1 {
		errs = append(errs, fmt.Errorf("booking.tax_rate must be in [0, 1), got %v", c.Booking.TaxRate))
	}
	if c.Booking.DepositAmount < 0 {
		errs = append(errs, fmt.Errorf("booking.deposit_amount must not be negative, got %v", c.Booking.DepositAmount))
	}
	if c.Stripe.SecretKey != "" && c.Stripe.WebhookSecret == "" {
		errs = append(errs, fmt.Errorf("stripe.webhook_secret is required when stripe is enabled (or %s)", envStripeWebhookSecret))
	}

	return errors.Join(errs...)
}

// Durations

func (s ServerConfig) ShutdownDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

func (b BookingConfig) MinLeadTime() time.Duration {
	return time.Duration(b.MinLeadTimeMinutes) * time.Minute
}

func (b BookingConfig) AvailabilityBuffer() time.Duration {
	return time.Duration(b.AvailabilityBufferHours) * time.Hour
}

func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}
