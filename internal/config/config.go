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
	Port        string
	GinMode     string
	CORSOrigins []string

	MongoURI string
	DBName   string

	// Redis answer cache. Optional: an empty REDIS_URL disables it.
	RedisURL       string
	RedisPassword  string
	RedisDB        int
	AnswerCacheTTL time.Duration

	// Gemini capability
	GeminiAPIKey          string
	GoogleEmbeddingsModel string
	GeminiGenerationModel string
	GeminiRPM             int
	CapabilityTimeout     time.Duration

	// Upload limits
	MaxFileSize  int64
	AllowedTypes []string

	// Per-client HTTP rate limiting, enforced when Redis is configured.
	RateLimitReqs   int
	RateLimitWindow time.Duration

	// Pipeline tuning
	TargetChunkSize int
	ChunkOverlap    int
	MinChunkSize    int
	TopK            int
	MaxContextChars int

	// Telemetry
	OTLPEndpoint     string
	TelemetryEnabled bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/pdf_qa"),
		DBName:   getEnv("DB_NAME", "pdf_qa"),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AnswerCacheTTL: time.Duration(getEnvInt("ANSWER_CACHE_TTL_SECONDS", 3600)) * time.Second,

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiGenerationModel: getEnv("GEMINI_GENERATION_MODEL", "gemini-2.0-flash"),
		GeminiRPM:             getEnvInt("GEMINI_RPM", 60),
		CapabilityTimeout:     time.Duration(getEnvInt("CAPABILITY_TIMEOUT_SECONDS", 30)) * time.Second,

		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 10485760), // 10MB
		AllowedTypes: strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf"), ","),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		TargetChunkSize: getEnvInt("TARGET_CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		MinChunkSize:    getEnvInt("MIN_CHUNK_SIZE", 200),
		TopK:            getEnvInt("TOP_K", 5),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 12000),

		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: getEnvBool("TELEMETRY_ENABLED", false),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
