package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	NewRelic NewRelicConfig `envconfig:"NEW_RELIC"`
	Log      LogConfig      `envconfig:"LOG"`
	Chapa    ChapaConfig    `envconfig:"CHAPA"`
	Payment  PaymentConfig  `envconfig:"PAYMENT"`
	SendGrid SendGridConfig `envconfig:"SENDGRID"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	// Must exceed the gateway timeout times its attempts.
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD" default:"postgres"`
	DBName   string `envconfig:"NAME" default:"travel"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`

	// AutoMigrate applies the embedded schema at startup.
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"false"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `envconfig:"APP_NAME" default:"travel-booking-service"`
	LicenseKey string `envconfig:"LICENSE_KEY"`
	Enabled    bool   `envconfig:"ENABLED" default:"false"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// ChapaConfig holds payment gateway configuration.
type ChapaConfig struct {
	BaseURL          string        `envconfig:"BASE_URL" default:"https://api.chapa.co/v1"`
	SecretKey        string        `envconfig:"SECRET_KEY"`
	WebhookSecret    string        `envconfig:"WEBHOOK_SECRET"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxAttempts      int           `envconfig:"MAX_VERIFICATION_ATTEMPTS" default:"3"`
	RetryInterval    time.Duration `envconfig:"RETRY_INTERVAL" default:"1s"`
	BreakerThreshold int64         `envconfig:"BREAKER_THRESHOLD" default:"5"`
}

// PaymentConfig holds payment workflow configuration.
type PaymentConfig struct {
	Currency         string `envconfig:"CURRENCY" default:"ETB"`
	CallbackURL      string `envconfig:"CALLBACK_URL" default:"http://localhost:8080/api/payments/webhook/"`
	DefaultReturnURL string `envconfig:"RETURN_URL" default:"http://localhost:3000/payment/complete"`
	CheckoutTitle    string `envconfig:"CHECKOUT_TITLE" default:"Travel Booking"`
}

// SendGridConfig holds email delivery configuration.
type SendGridConfig struct {
	APIKey    string `envconfig:"API_KEY"`
	FromEmail string `envconfig:"FROM_EMAIL" default:"noreply@travel.local"`
	FromName  string `envconfig:"FROM_NAME" default:"Travel Team"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
