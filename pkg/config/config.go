package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig aggregates the configuration for all services.
type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Jwt      JWTConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" env-default:"localhost"`
	Port uint16 `env:"SERVER_PORT" env-default:"4000"`
}

// Addr returns the host:port address the server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string `env:"DATABASE_HOST" env-default:"localhost"`
	Port     uint16 `env:"DATABASE_PORT" env-default:"5432"`
	Database string `env:"DATABASE_NAME" env-default:"spendwise_db"`
	User     string `env:"DATABASE_USER" env-default:"spendwise"`
	Password string `env:"DATABASE_PASSWORD" env-default:"pwd"`
}

// URL returns a postgres connection string for pgx
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// Load reads the application configuration from environment variables.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to read config from env: %w", err)
	}
	return cfg, nil
}
