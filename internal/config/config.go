package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LLM backends.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Completion service
	LLMBackend       string
	LLMModel         string
	ClientURL        string
	OpenAIAPIKey     string
	StructuredOutput bool
	AnthropicAPIKey  string
	AnthropicModel   string
	ContextWindow    int
	RetryAttempts    int
	RetryBackoff     time.Duration
	StatsWindow      time.Duration

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentGenerate int

	// Chunking and selection
	MaxChunkSize   int
	MaxChunksPerQA int

	// Upload limits
	MaxUploadBytes int64

	// Wikipedia fetching
	WikiUserAgent  string
	WikiTimeout    time.Duration
	FetchCacheSize int
	FetchCacheTTL  time.Duration

	// Session and job state
	SessionTTL time.Duration
	JobTTL     time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// LoadDotenv reads KEY=VALUE pairs from path (".env" when empty) into the
// process environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("WIKIQA_API_KEY"),

		LLMBackend:       envOr("LLM_BACKEND", BackendOpenAI),
		LLMModel:         envOr("LLM_MODEL", "deepseek-ai/DeepSeek-R1-Distill-Qwen-7B"),
		ClientURL:        envOr("CLIENT_URL", "http://localhost:8000/v1"),
		OpenAIAPIKey:     envOr("OPENAI_API_KEY", "EMPTY"),
		StructuredOutput: envBool("STRUCTURED_OUTPUT", false),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		ContextWindow:    envInt("CTX_WINDOW", 2048),
		RetryAttempts:    envInt("MAX_RETRIES", 3),
		RetryBackoff:     envDuration("RETRY_BACKOFF", 1*time.Second),
		StatsWindow:      envDuration("LLM_STATS_WINDOW", 1*time.Hour),

		WorkerCount:           envInt("WORKER_COUNT", 4),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 2),

		MaxChunkSize:   envInt("MAX_CHUNK_SIZE", 2000),
		MaxChunksPerQA: envInt("MAX_CHUNKS_PER_QA", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		WikiUserAgent:  envOr("WIKI_USER_AGENT", "WikiQA/1.0 (https://github.com/dgallion1/wikiqa)"),
		WikiTimeout:    envDuration("WIKI_TIMEOUT", 30*time.Second),
		FetchCacheSize: envInt("FETCH_CACHE_SIZE", 256),
		FetchCacheTTL:  envDuration("FETCH_CACHE_TTL", 1*time.Hour),

		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),
		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 2048
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 1 * time.Second
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentGenerate <= 0 {
		cfg.MaxConcurrentGenerate = 2
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 2000
	}
	if cfg.MaxChunksPerQA <= 0 {
		cfg.MaxChunksPerQA = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.WikiTimeout <= 0 {
		cfg.WikiTimeout = 30 * time.Second
	}
	if cfg.FetchCacheSize <= 0 {
		cfg.FetchCacheSize = 256
	}
	if cfg.FetchCacheTTL <= 0 {
		cfg.FetchCacheTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings needed to talk to the completion service.
func (c Config) Validate() error {
	switch c.LLMBackend {
	case BackendOpenAI:
		if c.ClientURL == "" {
			return fmt.Errorf("CLIENT_URL is required for the %s backend", BackendOpenAI)
		}
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the %s backend", BackendAnthropic)
		}
	default:
		return fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendOpenAI, BackendAnthropic, c.LLMBackend)
	}
	return nil
}

// ValidateServer adds the checks that only apply to the HTTP server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("WIKIQA_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
