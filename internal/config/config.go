package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Store backends selectable with STORE.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	LogLevel       string // zap level override (debug, info, warn, error)
	Port           string // HTTP port to listen on
	Store          string // storage backend: mysql | memory
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMigrate      bool   // apply embedded migrations at startup
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Booking   BookingConfig
	Gateway   GatewayConfig
	RabbitURL string // AMQP URL; empty disables the notification queue
	SMTP      SMTPConfig
	Telemetry TelemetryConfig
	Bootstrap BootstrapConfig
}

// BookingConfig tunes seat holds, checkout tokens and cancellation.
type BookingConfig struct {
	HoldDuration  time.Duration // seat lock and continuation token lifetime
	CancelCutoff  time.Duration // no cancellation within this window before showtime
	TokenSecret   string        // HS256 key for continuation tokens
	SweepInterval time.Duration // expiry worker period; 0 disables the worker
	StaleBatch    int           // pending payments failed per sweep
}

// GatewayConfig holds the Basic credentials of the payment gateway.  Both
// empty disables Basic authentication on the callback route.
type GatewayConfig struct {
	User string
	Pass string
}

// SMTPConfig configures outgoing mail.  An empty Host writes mails to
// the notification log file instead.
type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	LogPath string
}

// BootstrapConfig names an ADMIN account created at startup when it does
// not exist yet.  Empty values skip the bootstrap.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled       bool
	ServiceName   string
	CollectorAddr string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Port:           must("APP_PORT"),
		Store:          envStr("STORE", StoreMySQL),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBMigrate:      envBool("DB_MIGRATE", true),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		Booking: BookingConfig{
			HoldDuration:  envDur("HOLD_DURATION", 5*time.Minute),
			CancelCutoff:  envDur("CANCEL_CUTOFF", 6*time.Hour),
			TokenSecret:   must("CHECKOUT_TOKEN_SECRET"),
			SweepInterval: envDur("SWEEP_INTERVAL", time.Minute),
			StaleBatch:    envInt("STALE_PAYMENT_BATCH", 100),
		},
		Gateway: GatewayConfig{
			User: os.Getenv("GATEWAY_USER"),
			Pass: os.Getenv("GATEWAY_PASS"),
		},
		RabbitURL: os.Getenv("RABBITMQ_URL"),
		SMTP: SMTPConfig{
			Host:    os.Getenv("SMTP_HOST"),
			Port:    envInt("SMTP_PORT", 587),
			User:    os.Getenv("SMTP_USER"),
			Pass:    os.Getenv("SMTP_PASS"),
			From:    envStr("SMTP_FROM", "no-reply@movie-booking.local"),
			LogPath: envStr("NOTIFICATION_LOG", "logs/notifications.log"),
		},
		Telemetry: TelemetryConfig{
			Enabled:       envBool("OTEL_ENABLED", false),
			ServiceName:   envStr("OTEL_SERVICE_NAME", "movie-booking"),
			CollectorAddr: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
	}
	switch cfg.Store {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		log.Fatalf("invalid STORE %q: want %s or %s", cfg.Store, StoreMySQL, StoreMemory)
	}
	if cfg.Booking.HoldDuration <= 0 {
		log.Fatalf("HOLD_DURATION must be positive")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
