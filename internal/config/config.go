// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Billing  BillingConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
// When DSN is set it wins over the discrete fields.
type DatabaseConfig struct {
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev            bool
	Migrations     bool
	Seed           bool
	AllowedOrigins []string
}

// BillingConfig holds the invoice assembly settings.
type BillingConfig struct {
	TaxRate          decimal.Decimal
	LockTimeout      time.Duration
	DefaultListLimit int
	MaxListLimit     int
}

// RedisConfig enables the invoice read cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AMQPConfig enables event publishing when URL is set.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// JobsConfig holds background job schedules (robfig/cron syntax).
type JobsConfig struct {
	RestockScanSchedule string
}

// APIVersion is reported by the health endpoints.
const APIVersion = "1.0.0"

// DefaultTaxRate is applied when TAX_RATE is not set.
var DefaultTaxRate = decimal.RequireFromString("0.12")

var defaultAllowedOrigins = []string{
	"http://localhost:4173",
	"http://localhost:5173",
	"http://localhost:3000",
}

// ConnString returns the connection string, preferring the explicit DSN.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return d.KeyValue()
}

// KeyValue returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) KeyValue() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "4000"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			DSN:          strings.TrimSpace(os.Getenv("DATABASE_DSN")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "billing"),
			Password:     getEnv("DB_PASSWORD", "billing"),
			DBName:       getEnv("DB_NAME", "billing"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			Debug:        getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:            getEnvBool("DEV", true),
			Migrations:     getEnvBool("MIGRATIONS", false),
			Seed:           getEnvBool("DB_SEED", false),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", defaultAllowedOrigins),
		},
		Billing: BillingConfig{
			TaxRate:          getEnvDecimal("TAX_RATE", DefaultTaxRate),
			LockTimeout:      getEnvDuration("LOCK_TIMEOUT", 5*time.Second),
			DefaultListLimit: getEnvInt("INVOICE_LIST_LIMIT", 100),
			MaxListLimit:     getEnvInt("INVOICE_LIST_MAX", 500),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("INVOICE_CACHE_TTL", 10*time.Minute),
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "billing"),
		},
		Jobs: JobsConfig{
			RestockScanSchedule: os.Getenv("RESTOCK_SCAN_SCHEDULE"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("invalid integer for %s: %s", key, value)
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDecimal parses a non-negative decimal, falling back on error.
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || d.IsNegative() {
		log.Printf("invalid decimal for %s: %s", key, value)
		return defaultValue
	}
	return d
}

// getEnvDuration accepts Go durations ("5s", "250ms") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid duration for %s: %s", key, value)
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
