package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Backend    string // "postgres" or "memory"
	DBSource   string
	Port       string
	Env        string
	LogLevel   string
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

func Load() (*Config, error) {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "postgres"
	}
	if backend != "postgres" && backend != "memory" {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}

	dbSource := os.Getenv("DB_SOURCE")
	if backend == "postgres" && dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		ttl = parsed
	}

	cost := 10
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cost = parsed
	}

	return &Config{
		Backend:    backend,
		DBSource:   dbSource,
		Port:       port,
		Env:        env,
		LogLevel:   logLevel,
		JWTSecret:  secret,
		TokenTTL:   ttl,
		BcryptCost: cost,
	}, nil
}
