package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Data      DataConfig
	Ai        AIConfig
	Rag       RAGConfig
	Session   SessionConfig
	Messaging MessagingConfig
	Security  SecurityConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Mode               string // "development" | "production"
	Port               string
	LogFolderPath      string
	CorsAllowedOrigins string
}

type DataConfig struct {
	PatientsPath   string
	SourceDocPath  string
	VectorDBPath   string
	CollectionName string
	VectorStore    string // "sqlite" or "pgvector"
	DBConnection   string
}

type AIConfig struct {
	LLMProvider       string // "openai" (Groq compatible) or "ollama"
	LLMBaseURL        string
	LLMApiKey         string
	ReceptionistModel string
	ClinicalModel     string

	EmbeddingProvider string // "ollama" or "gemini"
	EmbeddingModel    string
	OllamaBaseURL     string
	GoogleGeminiKey   string
}

type RAGConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	TopK             int
	WebSearchResults int
	WebSearchURL     string
}

type SessionConfig struct {
	Store    string // "memory" or "redis"
	TTL      time.Duration
	RedisURL string
}

type MessagingConfig struct {
	NatsURL string
}

type SecurityConfig struct {
	JWTSecret string
}

type TelemetryConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Mode == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               "Post-Discharge Medical AI Assistant",
			Version:            "1.0.0",
			Mode:               getEnv("APP_MODE", "development"),
			Port:               getEnv("PORT", "8000"),
			LogFolderPath:      getEnv("LOG_FOLDER_PATH", "logs"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
		},
		Data: DataConfig{
			PatientsPath:   getEnv("PATIENTS_JSON_PATH", "data/patients.json"),
			SourceDocPath:  getEnv("NEPHROLOGY_PDF_PATH", "data/nephrology_book.pdf"),
			VectorDBPath:   getEnv("VECTOR_DB_PATH", "vector_db"),
			CollectionName: getEnv("VECTOR_COLLECTION_NAME", "nephrology_docs"),
			VectorStore:    getEnv("VECTOR_STORE", "sqlite"),
			DBConnection:   getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMApiKey:         getEnv("GROQ_API_KEY", ""),
			ReceptionistModel: getEnv("RECEPTIONIST_MODEL", "llama-3.1-8b-instant"),
			ClinicalModel:     getEnv("CLINICAL_MODEL", "llama-3.3-70b-versatile"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Rag: RAGConfig{
			ChunkSize:        getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:     getEnvAsInt("CHUNK_OVERLAP", 200),
			TopK:             getEnvAsInt("RAG_TOP_K", 3),
			WebSearchResults: getEnvAsInt("WEB_SEARCH_RESULTS", 3),
			WebSearchURL:     getEnv("WEB_SEARCH_URL", "https://html.duckduckgo.com/html/"),
		},
		Session: SessionConfig{
			Store:    getEnv("SESSION_STORE", "memory"),
			TTL:      getEnvAsDuration("SESSION_TTL", time.Hour),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Messaging: MessagingConfig{
			NatsURL: getEnv("NATS_URL", ""),
		},
		Security: SecurityConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:  getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
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
