package engine

import (
	"fmt"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// LLM providers.
const (
	ProviderKit    = "kit"
	ProviderOpenAI = "openai"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// DefaultChunkChars is the per-chunk rune budget for summary prompts.
const DefaultChunkChars = 12000

// Config holds all engine configuration, injected from main.
type Config struct {
	Port string

	LLMProvider        string
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	TitleModel         string // empty = LLMModel
	WhisperModel       string

	ChunkMaxChars   int
	TranscriptLangs []string
	FetchTimeout    time.Duration

	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string

	CacheMaxEntries      int // 0 disables the in-process L1
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration
}

// ConfigFromEnv reads the configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Port:               env.Str("MCP_PORT", "8893"),
		LLMProvider:        env.Str("LLM_PROVIDER", ProviderKit),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.5),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 4096),
		OpenAIAPIKey:       env.Str("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      env.Str("OPENAI_BASE_URL", ""),
		TitleModel:         env.Str("TITLE_MODEL", ""),
		WhisperModel:       env.Str("WHISPER_MODEL", "whisper-1"),
		ChunkMaxChars:      env.Int("CHUNK_MAX_CHARS", DefaultChunkChars),
		TranscriptLangs:    env.List("TRANSCRIPT_LANGS", "en"),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 20*time.Second),
		StoreDriver:        env.Str("STORE_DRIVER", DriverSQLite),
		SQLitePath:         env.Str("SQLITE_PATH", "ytsum.db"),
		DatabaseURL:        env.Str("DATABASE_URL", ""),
		RedisURL:           env.Str("REDIS_URL", ""),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheTTL:             env.Duration("CACHE_TTL", time.Hour),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

// Validate rejects settings the app cannot start with.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderKit, ProviderOpenAI:
	default:
		return &InvalidArgumentError{Name: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q (kit, openai)", c.LLMProvider)}
	}
	if c.ChunkMaxChars <= 0 {
		return &InvalidArgumentError{Name: "CHUNK_MAX_CHARS", Reason: fmt.Sprintf("must be positive, got %d", c.ChunkMaxChars)}
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return &InvalidArgumentError{Name: "LLM_TEMPERATURE", Reason: fmt.Sprintf("must be within [0, 2], got %g", c.LLMTemperature)}
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return &InvalidArgumentError{Name: "SQLITE_PATH", Reason: "required for sqlite store"}
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return &InvalidArgumentError{Name: "DATABASE_URL", Reason: "required for postgres store"}
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return &InvalidArgumentError{Name: "REDIS_URL", Reason: "required for redis store"}
		}
	case DriverMemory:
	default:
		return &InvalidArgumentError{Name: "STORE_DRIVER", Reason: fmt.Sprintf("unknown driver %q (sqlite, postgres, redis, memory)", c.StoreDriver)}
	}
	return nil
}

// TranscriptionKey returns the API key used for audio transcription.
func (c Config) TranscriptionKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return c.LLMAPIKey
}

// HasLLMKey reports whether the selected provider has credentials.
func (c Config) HasLLMKey() bool {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey != "" || c.LLMAPIKey != ""
	}
	return c.LLMAPIKey != ""
}
