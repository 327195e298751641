package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Llm      LLMConfig
	Infra    InfraConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name               string
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	BodyLimitBytes     int
	RateLimitMax       int
	RateLimitWindow    time.Duration
}

type DatabaseConfig struct {
	Driver          string // "postgres" or "sqlite"
	Connection      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // "silent", "error", "warn", "info"
	AutoMigrate     bool
}

type AuthConfig struct {
	JwtSecret string
	TokenTTL  time.Duration
}

// LLMConfig describes the reply generator. Endpoint and Token are reserved
// for a real provider; the simulated one only logs them.
type LLMConfig struct {
	Provider string
	Endpoint string
	Token    string
	Model    string
	MinDelay time.Duration
	MaxDelay time.Duration
}

type InfraConfig struct {
	RedisURL string
	NatsURL  string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	env := getEnv("GO_ENV", "development")

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "turingtest-api"),
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        env,
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: corsOrigins(getEnv("CORS_ALLOWED_ORIGINS", defaultCorsOrigin)),
			BodyLimitBytes:     getEnvAsInt("BODY_LIMIT_BYTES", 5*1024*1024),
			RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 300),
			RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_POOL_SIZE", 20),
			MaxIdleConns:    getEnvAsInt("DB_MIN_POOL_SIZE", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", env != "production"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 10*time.Hour),
		},
		Llm: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "simulated"),
			Endpoint: getEnv("LLM_API_URL", "https://llm-provider.example.com/v1/chat/completions"),
			Token:    getEnv("LLM_API_TOKEN", "mock-token"),
			Model:    getEnv("LLM_MODEL", "mock-gpt-4o"),
			MinDelay: getEnvAsDuration("LLM_MIN_DELAY", 10*time.Second),
			MaxDelay: getEnvAsDuration("LLM_MAX_DELAY", 20*time.Second),
		},
		Infra: InfraConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			NatsURL:  getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

const defaultCorsOrigin = "http://localhost:3000"

// corsOrigins drops "*" from the allow-list. Credentialed CORS cannot use a
// wildcard and fiber's cors middleware panics on the combination.
func corsOrigins(raw string) string {
	var kept []string
	wildcard := false
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			wildcard = true
		default:
			kept = append(kept, origin)
		}
	}
	if wildcard {
		log.Println("Warning: CORS_ALLOWED_ORIGINS=\"*\" is not allowed with credentials; list origins explicitly")
	}
	if len(kept) == 0 {
		if wildcard {
			log.Printf("Warning: falling back to CORS origin %s", defaultCorsOrigin)
		}
		return defaultCorsOrigin
	}
	return strings.Join(kept, ",")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("10h", "1500ms").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
