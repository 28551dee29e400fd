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
	Keys     APIKeys
	Ai       AIConfig
	Rag      RAGConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	TranscriptLogPath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	HuggingFace  string
	EmbedTopic   string // Ingestion topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "openai"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	OllamaBaseURL     string
	LLMProvider       string // "ollama", "openai", "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	LLMBaseURL        string
}

// RAGConfig tunes the chatbot graph.
type RAGConfig struct {
	MaxGraderRetries     int
	TopK                 int
	CandidatePool        int
	MinScore             float64
	ContextCharBudget    int
	HistoryLimit         int
	LLMTimeout           time.Duration
	EmbeddingTimeout     time.Duration
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	LexiconPath          string
	VectorStore          string // "pgvector" or "memory"
	HistoryStore         string // "redis" or "memory"
	TranscriptSinks      []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			TranscriptLogPath:  getEnv("TRANSCRIPT_LOG_PATH", "logs/transcript.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		},
		Rag: RAGConfig{
			MaxGraderRetries:     getEnvAsInt("MAX_GRADER_RETRIES", 3),
			TopK:                 getEnvAsInt("RETRIEVAL_TOP_K", 5),
			CandidatePool:        getEnvAsInt("RETRIEVAL_CANDIDATE_POOL", 20),
			MinScore:             getEnvAsFloat("RETRIEVAL_MIN_SCORE", 0.3),
			ContextCharBudget:    getEnvAsInt("CONTEXT_CHAR_BUDGET", 6000),
			HistoryLimit:         getEnvAsInt("HISTORY_LIMIT", 10),
			LLMTimeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			EmbeddingTimeout:     getEnvAsDuration("EMBEDDING_TIMEOUT", 20*time.Second),
			RetryMaxAttempts:     getEnvAsInt("RETRY_MAX_ATTEMPTS", 4),
			RetryInitialInterval: getEnvAsDuration("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
			RetryMaxInterval:     getEnvAsDuration("RETRY_MAX_INTERVAL", 10*time.Second),
			LexiconPath:          getEnv("GUARDRAIL_LEXICON_PATH", ""),
			VectorStore:          getEnv("VECTOR_STORE", "pgvector"),
			HistoryStore:         getEnv("HISTORY_STORE", "redis"),
			TranscriptSinks:      getEnvAsList("TRANSCRIPT_SINKS", []string{"file"}),
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
