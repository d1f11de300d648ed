package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	JWTSecret []byte
	TokenTTL  time.Duration

	CORSOrigins []string

	RedisAddress       string
	RedisPassword      string
	LoginRatePerMinute int

	LogLevel string

	OTLPEndpoint string
	OTLPInsecure bool

	SeedFile string
}

// Load reads configs/.env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return FromEnv()
}

// FromEnv builds the config from environment variables with development
// defaults. JWT_SECRET is mandatory when GIN_MODE=release.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		DatabaseURL:        databaseURL(),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		LoginRatePerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:       os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		SeedFile:           getEnv("SEED_FILE", "configs/seed.yaml"),
	}

	ttlHours := getEnvInt("TOKEN_TTL_HOURS", 24)
	if ttlHours <= 0 {
		ttlHours = 24
	}
	cfg.TokenTTL = time.Duration(ttlHours) * time.Hour

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.IsRelease() {
			return nil, errors.New("JWT_SECRET environment variable is required in release mode")
		}
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from DB_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "postgres")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
