package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL string

	JWTIssuer string

	// Base64-encoded PEM key material. Access and refresh use
	// independent pairs; see internal/token.
	AccessTokenPrivateKey  string
	AccessTokenPublicKey   string
	RefreshTokenPrivateKey string
	RefreshTokenPublicKey  string

	// Token validity windows, in minutes.
	AccessTokenMaxAge  int
	RefreshTokenMaxAge int

	CORSOrigins     []string
	CORSAllowOrigin string

	// Paths forwarded by the gate with no credential check.
	PublicPaths []string
	// Paths forwarded even when a presented token fails verification.
	TokenExemptPaths []string

	RateLimitRPM     int
	AuthRateLimitRPM int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 2)),
		RedisURL:                strings.TrimSpace(os.Getenv("REDIS_URL")),
		JWTIssuer:               getEnv("JWT_ISSUER", "go-user-service"),
		AccessTokenPrivateKey:   strings.TrimSpace(os.Getenv("ACCESS_TOKEN_PRIVATE_KEY")),
		AccessTokenPublicKey:    strings.TrimSpace(os.Getenv("ACCESS_TOKEN_PUBLIC_KEY")),
		RefreshTokenPrivateKey:  strings.TrimSpace(os.Getenv("REFRESH_TOKEN_PRIVATE_KEY")),
		RefreshTokenPublicKey:   strings.TrimSpace(os.Getenv("REFRESH_TOKEN_PUBLIC_KEY")),
		AccessTokenMaxAge:       getInt("ACCESS_TOKEN_MAXAGE", 15),
		RefreshTokenMaxAge:      getInt("REFRESH_TOKEN_MAXAGE", 10080),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		CORSAllowOrigin:         getEnv("CORS_ALLOW_ORIGIN", "*"),
		PublicPaths: splitCSV(getEnv("PUBLIC_PATHS",
			"/health,/api/v1/auth/login,/api/v1/auth/register,/api/v1/auth/refresh")),
		TokenExemptPaths: splitCSV(getEnv("TOKEN_EXEMPT_PATHS",
			"/api/v1/auth/login,/api/v1/auth/refresh,/api/v1/auth/logout")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	for name, value := range map[string]string{
		"ACCESS_TOKEN_PRIVATE_KEY":  c.AccessTokenPrivateKey,
		"ACCESS_TOKEN_PUBLIC_KEY":   c.AccessTokenPublicKey,
		"REFRESH_TOKEN_PRIVATE_KEY": c.RefreshTokenPrivateKey,
		"REFRESH_TOKEN_PUBLIC_KEY":  c.RefreshTokenPublicKey,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.AccessTokenMaxAge <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_MAXAGE must be positive")
	}
	if c.RefreshTokenMaxAge <= c.AccessTokenMaxAge {
		return fmt.Errorf("REFRESH_TOKEN_MAXAGE must be greater than ACCESS_TOKEN_MAXAGE")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// AccessTTL converts the configured minutes into a duration.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenMaxAge) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenMaxAge) * time.Minute
}

func getEnv(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
