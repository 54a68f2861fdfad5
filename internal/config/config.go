package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Data      DataConfig
	Reasoning ReasoningConfig
	Decision  DecisionConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type DataConfig struct {
	FixtureDir string
}

// ReasoningConfig controls the provider failover chain. ProviderOrder is the
// strict priority order; providers without credentials are skipped at startup.
type ReasoningConfig struct {
	ProviderOrder   []string
	GeminiAPIKey    string
	GeminiModel     string
	GroqAPIKey      string
	GroqModel       string
	GroqBaseURL     string
	CallTimeout     time.Duration
	MaxAttempts     int
	BackoffBase     time.Duration
	BackoffCap      time.Duration
	MaxProductIDLen int
}

type DecisionConfig struct {
	ConfidenceThreshold float64
	AlternateLocation   string
	HomeLocation        string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	PreviewTTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "restock")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_FIXTURE_DIR", "./data")
		viper.SetDefault("LLM_PROVIDER_ORDER", []string{"gemini", "groq"})
		viper.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
		viper.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
		viper.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
		viper.SetDefault("LLM_CALL_TIMEOUT_SECONDS", 30)
		viper.SetDefault("LLM_MAX_ATTEMPTS", 2)
		viper.SetDefault("LLM_BACKOFF_BASE_MS", 1000)
		viper.SetDefault("LLM_BACKOFF_CAP_MS", 5000)
		viper.SetDefault("MAX_PRODUCT_ID_LENGTH", 100)
		viper.SetDefault("AUTO_EXECUTE_THRESHOLD", 0.6)
		viper.SetDefault("ALTERNATE_LOCATION", "WAREHOUSE_B")
		viper.SetDefault("HOME_LOCATION", "WAREHOUSE_A")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_PREVIEW_TTL_SECONDS", 60)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Data: DataConfig{
				FixtureDir: viper.GetString("APP_FIXTURE_DIR"),
			},
			Reasoning: ReasoningConfig{
				ProviderOrder:   viper.GetStringSlice("LLM_PROVIDER_ORDER"),
				GeminiAPIKey:    firstNonEmpty(viper.GetString("GOOGLE_API_KEY"), viper.GetString("GEMINI_API_KEY")),
				GeminiModel:     viper.GetString("GEMINI_MODEL"),
				GroqAPIKey:      viper.GetString("GROQ_API_KEY"),
				GroqModel:       viper.GetString("GROQ_MODEL"),
				GroqBaseURL:     viper.GetString("GROQ_BASE_URL"),
				CallTimeout:     time.Duration(viper.GetInt("LLM_CALL_TIMEOUT_SECONDS")) * time.Second,
				MaxAttempts:     viper.GetInt("LLM_MAX_ATTEMPTS"),
				BackoffBase:     time.Duration(viper.GetInt("LLM_BACKOFF_BASE_MS")) * time.Millisecond,
				BackoffCap:      time.Duration(viper.GetInt("LLM_BACKOFF_CAP_MS")) * time.Millisecond,
				MaxProductIDLen: viper.GetInt("MAX_PRODUCT_ID_LENGTH"),
			},
			Decision: DecisionConfig{
				ConfidenceThreshold: viper.GetFloat64("AUTO_EXECUTE_THRESHOLD"),
				AlternateLocation:   viper.GetString("ALTERNATE_LOCATION"),
				HomeLocation:        viper.GetString("HOME_LOCATION"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				PreviewTTLSeconds: viper.GetInt("CACHE_PREVIEW_TTL_SECONDS"),
			},
		}
	})

	return instance
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
