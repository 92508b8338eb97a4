// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must()
// and missing values cause the program to exit with a fatal log
// message; tunables fall back to defaults.
type Config struct {
	Env            string        // application environment (dev, prod)
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpenConns int           // connection pool ceiling
	DBMaxIdleConns int           // idle connections kept in the pool
	DBConnMaxLife  time.Duration // recycle age for pooled connections
	DBPingTimeout  time.Duration // startup connectivity check deadline
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	SweepInterval  time.Duration // how often the booking sweeper runs
	OTPTTL         time.Duration // how long a signup OTP stays valid
	ResetTokenTTL  time.Duration // how long a password reset token stays valid
	ResetLinkBase  string        // base URL for the emailed reset link
}

// Load reads configuration from the environment and returns a Config.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         envStr("DB_PASS", ""),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLife:  envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBPingTimeout:  envDur("DB_PING_TIMEOUT", 5*time.Second),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		SweepInterval:  envDur("BOOKING_SWEEP_INTERVAL", 5*time.Minute),
		OTPTTL:         envDur("SIGNUP_OTP_TTL", 10*time.Minute),
		ResetTokenTTL:  envDur("RESET_TOKEN_TTL", 15*time.Minute),
		ResetLinkBase:  envStr("RESET_LINK_BASE", "http://localhost:5173/reset-password"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v := envStr(key, "")
	if v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, ok := parseInt(s)
	if !ok {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
