package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	IdentityLocal  = "local"
	IdentityGoTrue = "gotrue"

	BlobLocal    = "local"
	BlobSupabase = "supabase"
)

type Config struct {
	Port    string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	IdentityProvider string
	JWTSecret        string
	JWTTTL           time.Duration

	BlobBackend    string
	ReceiptsBucket string
	ReceiptsDir    string
	PublicBaseURL  string

	RedisAddr    string
	RedisDB      int
	IdempTTLSecs int

	RateLimitRPS   int
	RateLimitBurst int

	HTTPClientTimeout time.Duration

	LogLevel string
	LogFile  string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		Port:    getenv("PORT", "8080"),
		GinMode: os.Getenv("GIN_MODE"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "postgres"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		SupabaseURL:            strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),

		IdentityProvider: strings.ToLower(getenv("IDENTITY_PROVIDER", IdentityLocal)),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           getenvDuration("JWT_TTL", 24*time.Hour),

		BlobBackend:    strings.ToLower(getenv("BLOB_BACKEND", BlobLocal)),
		ReceiptsBucket: getenv("RECEIPTS_BUCKET", "receipts"),
		ReceiptsDir:    getenv("RECEIPTS_DIR", "./data/receipts"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		RateLimitRPS:   getenvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 20),

		HTTPClientTimeout: getenvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:" + c.Port
	}
	if c.JWTSecret == "" && c.GinMode != "release" {
		c.JWTSecret = "default_super_secret_key" // development fallback only
	}
	return c
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("missing PORT")
	}
	if c.DBHost == "" || c.DBPort == "" || c.DBName == "" || c.DBUser == "" {
		return errors.New("missing database config (DB_HOST/PORT/NAME/USER)")
	}
	if _, err := net.LookupPort("tcp", c.DBPort); err != nil {
		return fmt.Errorf("invalid DB_PORT %q: %w", c.DBPort, err)
	}

	switch c.IdentityProvider {
	case IdentityLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in release mode")
		}
	case IdentityGoTrue:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" || c.SupabaseServiceRoleKey == "" {
			return errors.New("gotrue identity requires SUPABASE_URL, SUPABASE_ANON_KEY and SUPABASE_SERVICE_ROLE_KEY")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	switch c.BlobBackend {
	case BlobLocal:
		if c.ReceiptsDir == "" {
			return errors.New("missing RECEIPTS_DIR")
		}
	case BlobSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" || c.ReceiptsBucket == "" {
			return errors.New("supabase storage requires SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY and RECEIPTS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string in the URL form pgx accepts.
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + net.JoinHostPort(c.DBHost, c.DBPort) + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
