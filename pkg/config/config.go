package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Application settings
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Search   SearchConfig
	Creative CreativeConfig
	External ExternalConfig
	Storage  StorageConfig
}

// Server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

type SearchConfig struct {
	WorkerPoolSize     int
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	DefaultCountry     string
}

type CreativeConfig struct {
	DownloadConcurrency int
	MaxImages           int
	ImageSize           string
}

type ExternalConfig struct {
	ApifyToken   string
	ApifyBaseURL string
	ApifyActorID string

	GeminiAPIKey string
	GeminiModel  string

	ImageAPIURL string
	ImageAPIKey string
	ImageModel  string
}

type StorageConfig struct {
	DatabasePath string
	ImageDir     string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getDurationEnv("HTTP_REQUEST_TIMEOUT", "5m"),
		},
		Search: SearchConfig{
			WorkerPoolSize:     getIntEnv("WORKER_POOL_SIZE", 8),
			RequestTimeout:     getDurationEnv("SEARCH_REQUEST_TIMEOUT", "5m"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 2),
			DefaultCountry:     getEnv("DEFAULT_COUNTRY", "US"),
		},
		Creative: CreativeConfig{
			DownloadConcurrency: getIntEnv("IMAGE_DOWNLOAD_CONCURRENCY", 4),
			MaxImages:           getIntEnv("MAX_ANALYSIS_IMAGES", 10),
			ImageSize:           getEnv("IMAGE_SIZE", "1024x1024"),
		},
		External: ExternalConfig{
			ApifyToken:   getEnv("APIFY_TOKEN", ""),
			ApifyBaseURL: getEnv("APIFY_BASE_URL", "https://api.apify.com/v2"),
			ApifyActorID: getEnv("APIFY_ACTOR_ID", "curious_coder~facebook-ads-library-scraper"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			ImageAPIURL:  getEnv("IMAGE_API_URL", "https://api.openai.com/v1/images/generations"),
			ImageAPIKey:  getEnv("IMAGE_API_KEY", ""),
			ImageModel:   getEnv("IMAGE_MODEL", "gpt-image-1"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DATABASE_PATH", "saved_ads.db"),
			ImageDir:     getEnv("IMAGE_DIR", "generated_images"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Search.WorkerPoolSize < 1 {
		return fmt.Errorf("WORKER_POOL_SIZE must be at least 1, got %d", c.Search.WorkerPoolSize)
	}
	if c.Search.RateLimitPerSecond < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be at least 1, got %d", c.Search.RateLimitPerSecond)
	}
	if c.Search.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.Search.RateLimitBurst)
	}
	if c.Creative.DownloadConcurrency < 1 {
		return fmt.Errorf("IMAGE_DOWNLOAD_CONCURRENCY must be at least 1, got %d", c.Creative.DownloadConcurrency)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
