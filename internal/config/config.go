package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Events    EventsConfig    `mapstructure:"events"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the lifetime of access tokens in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the lifetime of refresh tokens in minutes.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// EventsConfig contains settings for the pub/sub event transport.
//
// When Enabled is false the publisher short-circuits without attempting a
// connection and the subscriber worker is not started; the REST API and the
// periodic scheduler keep working without event delivery.
type EventsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// RedisAddr is the host:port of the Redis instance backing the queue.
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Enabled true"`

	// Topic is the logical topic all domain events are published on.
	// The subscriber holds a single subscription to this topic and routes
	// internally by event type.
	Topic string `mapstructure:"topic"`

	// Concurrency is the number of concurrent event handler invocations.
	Concurrency int `mapstructure:"concurrency"`
}

// SchedulerConfig contains settings for the periodic due-task scan.
type SchedulerConfig struct {
	// Interval between scans. Defaults to one minute.
	Interval time.Duration `mapstructure:"interval"`
}

// Default values applied by Load when a setting is absent.
const (
	DefaultTopic             = "todo-events"
	DefaultEventsConcurrency = 10
	DefaultSchedulerInterval = 60 * time.Second
)
