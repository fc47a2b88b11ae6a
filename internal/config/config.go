package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings, loaded once at startup and passed by
// handle into the services. GeminiAPIKey may be empty: the service then runs in
// degraded, ingestion-only mode and /ask returns a disabled-feature message.
type Config struct {
	GeminiAPIKey   string
	DatabaseURL    string
	CollectionName string
	EmbeddingModel string
	GeminiModel    string

	ChunkSize     int
	MaxKResults   int
	MinSimilarity float64

	GenerationTimeoutSeconds int
	MaxUploadMB              int64

	HTTPPort  string
	LogLevel  string
	LogFormat string
}

// Load reads a .env file if present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", "pdf_qa.db"),
		CollectionName: getEnv("COLLECTION_NAME", "pdf_docs"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		ChunkSize:     getEnvAsInt("CHUNK_SIZE", 1000),
		MaxKResults:   getEnvAsInt("MAX_K_RESULTS", 10),
		MinSimilarity: getEnvAsFloat("MIN_SIMILARITY", 0),

		GenerationTimeoutSeconds: getEnvAsInt("GENERATION_TIMEOUT_SECONDS", 30),
		MaxUploadMB:              int64(getEnvAsInt("MAX_UPLOAD_MB", 32)),

		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
