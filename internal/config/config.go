package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Freshness cache
	CacheBackend string        `json:"cache_backend"` // "file" or "redis"
	CacheFile    string        `json:"cache_file"`
	CacheTTL     time.Duration `json:"cache_ttl"`
	RedisURL     string        `json:"redis_url"`
	RedisPrefix  string        `json:"redis_prefix"`

	// LLM backend (Groq, OpenAI-compatible chat completions)
	GroqAPIKey  string        `json:"groq_api_key"`
	GroqModel   string        `json:"groq_model"`
	LLMTimeout  time.Duration `json:"llm_timeout"`
	LLMMaxTok   int           `json:"llm_max_tokens"`
	LLMCompose  bool          `json:"llm_compose"` // style-aware LLM digest composition
	Temperature float64       `json:"temperature"`

	// Email delivery (Resend)
	ResendAPIKey string `json:"resend_api_key"`
	FromEmail    string `json:"from_email"`

	// Source credentials
	YouTubeAPIKey      string `json:"youtube_api_key"`
	TwitterBearerToken string `json:"twitter_bearer_token"`

	// Fetching
	ScrapeTimeout time.Duration `json:"scrape_timeout"`
	ScrapeDelay   time.Duration `json:"scrape_delay"`

	// Digest archive
	StoragePath string `json:"storage_path"`

	// CloudFlare R2 archive upload (optional)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Freshness cache
		CacheBackend: getEnv("CACHE_BACKEND", "file"),
		CacheFile:    getEnv("CACHE_FILE", "./data/content_cache.json"),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 30*time.Minute),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "briefly:"),

		// LLM backend
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		LLMTimeout:  getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTok:   getEnvAsInt("LLM_MAX_TOKENS", 600),
		LLMCompose:  getEnvAsBool("LLM_COMPOSE_DIGEST", true),
		Temperature: 0.3,

		// Email delivery
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@yourdomain.com"),

		// Source credentials
		YouTubeAPIKey:      getEnv("YOUTUBE_DATA_API_KEY", ""),
		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),

		// Fetching
		ScrapeTimeout: getEnvAsDuration("SCRAPE_TIMEOUT", 15*time.Second),
		ScrapeDelay:   getEnvAsDuration("SCRAPE_DELAY", time.Second),

		// Digest archive
		StoragePath: getEnv("STORAGE_PATH", "./data"),

		// CloudFlare R2
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "briefly-digests"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
