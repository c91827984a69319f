package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Catalog    CatalogConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Timeouts   TimeoutConfig
	Indexing   IndexingConfig
	OpenAI     OpenAIConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds the pgvector store connection settings
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// CatalogConfig holds catalog loading configuration
type CatalogConfig struct {
	ListingsFile string
}

// SearchConfig holds retrieval and result-cap settings
type SearchConfig struct {
	RetrievalLimit       int
	PastQueryLimit       int
	PastQueryMinScore    float64
	PlainResultCap       int
	EmptyQueryConfidence float64
}

// RankingConfig holds hybrid ranking weights and expansion thresholds
type RankingConfig struct {
	SemanticWeight  float64
	CriteriaWeight  float64
	MinFiltered     int
	MinRelaxed      int
	MaxPriceFactor  float64
	MinPriceFactor  float64
	ExpandedScanCap int
	ResultCap       int
}

// TimeoutConfig holds per-stage timeouts
type TimeoutConfig struct {
	Retrieval      time.Duration
	Interpretation time.Duration
	Ranking        time.Duration
	Indexing       time.Duration
}

// IndexingConfig holds batch indexing settings
type IndexingConfig struct {
	BatchSize    int
	BatchDelay   time.Duration
	IndexOnStart bool
}

// OpenAIConfig holds the OpenAI-compatible API configuration used for both
// query interpretation and embeddings
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "homefinder"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Catalog: CatalogConfig{
			ListingsFile: getEnv("LISTINGS_FILE", ""),
		},
		Search: SearchConfig{
			RetrievalLimit:       getEnvAsInt("SEARCH_RETRIEVAL_LIMIT", 20),
			PastQueryLimit:       getEnvAsInt("SEARCH_PAST_QUERY_LIMIT", 3),
			PastQueryMinScore:    getEnvAsFloat("SEARCH_PAST_QUERY_MIN_SCORE", 0.7),
			PlainResultCap:       getEnvAsInt("SEARCH_PLAIN_RESULT_CAP", 60),
			EmptyQueryConfidence: getEnvAsFloat("SEARCH_EMPTY_QUERY_CONFIDENCE", 1.0),
		},
		Ranking: RankingConfig{
			SemanticWeight:  getEnvAsFloat("RANK_SEMANTIC_WEIGHT", 0.4),
			CriteriaWeight:  getEnvAsFloat("RANK_CRITERIA_WEIGHT", 0.6),
			MinFiltered:     getEnvAsInt("RANK_MIN_FILTERED", 5),
			MinRelaxed:      getEnvAsInt("RANK_MIN_RELAXED", 3),
			MaxPriceFactor:  getEnvAsFloat("RANK_MAX_PRICE_FACTOR", 1.25),
			MinPriceFactor:  getEnvAsFloat("RANK_MIN_PRICE_FACTOR", 0.75),
			ExpandedScanCap: getEnvAsInt("RANK_EXPANDED_SCAN_CAP", 80),
			ResultCap:       getEnvAsInt("RANK_RESULT_CAP", 50),
		},
		Timeouts: TimeoutConfig{
			Retrieval:      getEnvAsDuration("TIMEOUT_RETRIEVAL", 10*time.Second),
			Interpretation: getEnvAsDuration("TIMEOUT_INTERPRETATION", 10*time.Second),
			Ranking:        getEnvAsDuration("TIMEOUT_RANKING", 10*time.Second),
			Indexing:       getEnvAsDuration("TIMEOUT_INDEXING", 60*time.Second),
		},
		Indexing: IndexingConfig{
			BatchSize:    getEnvAsInt("INDEX_BATCH_SIZE", 10),
			BatchDelay:   getEnvAsDuration("INDEX_BATCH_DELAY", time.Second),
			IndexOnStart: getEnvAsBool("INDEX_ON_START", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 384),
			BatchSize:           getEnvAsInt("OPENAI_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
