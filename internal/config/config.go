package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GroqAPIKey      string
	GroqBaseURL     string
	GeminiAPIKey    string
	SentimentAPIURL string
	DatabaseURL     string
	HTTPPort        string
	LogLevel        string
	JWTSecret       string
	AdminEmail      string
	UploadDir       string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		SentimentAPIURL: getEnv("SENTIMENT_API_URL", "http://localhost:8000"),
		DatabaseURL:     getEnv("DATABASE_URL", "medbot.db"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@medbot.ai"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
	}

	if AppConfig.GroqAPIKey == "" {
		log.Fatal("GROQ_API_KEY environment variable is required")
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
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
