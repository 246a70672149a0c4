package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	AnthropicAPIKey   string
	OpenAIAPIKey      string
	PineconeAPIKey    string
	PineconeIndexName string
	SessionSecret     string

	// QuizPassThreshold is the score a learner must exceed on the fixed
	// ten-question scale to earn the quiz-pass bonus.
	QuizPassThreshold int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DB_URL"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "policypath-reference-index"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		QuizPassThreshold: getEnvInt("QUIZ_PASS_THRESHOLD", 5),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARN] Invalid integer for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}
