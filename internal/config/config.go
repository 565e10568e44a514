package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultStoreBaseURL = "https://jsonplaceholder.typicode.com/users"

type Config struct {
	Env  string
	Port int

	// dashboard
	StoreBaseURL string
	PageSize     int
	StoreTimeout time.Duration // 0 leaves the transport defaults alone
	DiscardStale bool
	OTelEnabled  bool
	OTLPEndpoint string
	ServiceName  string

	// mockstore
	MockstorePort  int
	StoreBackend   string // memory | postgres
	DBURL          string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	AllowedOrigins []string
}

func Load() Config {
	// a missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		StoreBaseURL: getEnv("STORE_BASE_URL", defaultStoreBaseURL),
		PageSize:     getEnvInt("PAGE_SIZE", 5),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 0),
		DiscardStale: getEnvBool("DASHBOARD_DISCARD_STALE", false),
		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:  getEnv("SERVICE_NAME", "userdash"),

		MockstorePort:  getEnvInt("MOCKSTORE_PORT", 3001),
		StoreBackend:   getEnv("STORE_BACKEND", "memory"),
		DBURL:          buildDBURL(),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Second),
		AllowedOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:8080"}),
	}
}

func buildDBURL() string {
	if v := os.Getenv("DB_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "userdash")
	pass := getEnv("DB_PASSWORD", "userdash")
	name := getEnv("DB_NAME", "userdash")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return b
	}
	return fallback
}

// accepts Go durations ("2s") or bare seconds ("2")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Println(err)
		return fallback
	}

	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
