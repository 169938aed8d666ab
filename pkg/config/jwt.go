package config

import "time"

// JWTConfig holds token signing configuration
// This is shared across all services to avoid duplication
type JWTConfig struct {
	Secret             string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	SetupTokenExpiry   string `env:"SETUP_TOKEN_EXPIRY" env-default:"5m"`
	SessionTokenExpiry string `env:"SESSION_TOKEN_EXPIRY" env-default:"168h"`
	Issuer             string `env:"JWT_ISSUER" env-default:"spendwise"`
	Audience           string `env:"JWT_AUDIENCE" env-default:"spendwise"`
}

// ParseSetupTokenExpiry parses the setup token expiry duration
func (j JWTConfig) ParseSetupTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.SetupTokenExpiry)
}

// ParseSessionTokenExpiry parses the session token expiry duration
func (j JWTConfig) ParseSessionTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.SessionTokenExpiry)
}
