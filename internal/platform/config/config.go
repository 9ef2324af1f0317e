package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"doccheck/internal/embedding"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	LogLevel   string
	LogFormat  string
	UploadRoot string
	PolicyFile string
	AdminToken string

	// TesseractPath is the OCR binary; empty disables image documents.
	TesseractPath  string
	RequestTimeout time.Duration
	// AuditCapacity is how many recent verdicts are kept; zero disables the trail.
	AuditCapacity  int

	Redis     RedisConfig
	Embedding EmbeddingConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// RedisConfig configures the optional embedding cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// EmbeddingConfig selects the semantic description backend and its limits.
type EmbeddingConfig struct {
	embedding.Config
	Timeout       time.Duration
	MaxConcurrent int
	CacheTTL      time.Duration
	CacheSize     int

	// BreakerCooldown is how long a failing backend is left alone before a probe.
	BreakerCooldown time.Duration
}

// AuthConfig enables service token checks when SigningKey is set.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// RateLimitConfig bounds validations per caller. Requests of zero turns the
// limit off.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Enabled reports whether validations are throttled.
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 && r.Window > 0
}

// Enabled reports whether callers must present a service token.
func (a AuthConfig) Enabled() bool {
	return a.SigningKey != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	p := parser{lookup: lookup}

	emb := embedding.DefaultConfig()
	emb.Provider = p.str("EMBEDDING_PROVIDER", emb.Provider)
	emb.OllamaEndpoint = p.str("OLLAMA_ENDPOINT", emb.OllamaEndpoint)
	emb.OllamaModel = p.str("OLLAMA_MODEL", emb.OllamaModel)
	emb.GenAIAPIKey = p.str("GENAI_API_KEY", "")
	emb.GenAIModel = p.str("GENAI_MODEL", emb.GenAIModel)
	emb.TaskType = p.str("GENAI_TASK_TYPE", emb.TaskType)

	cfg := Server{
		Addr:           p.str("DOCCHECK_ADDR", ":8003"),
		LogLevel:       p.str("DOCCHECK_LOG_LEVEL", "info"),
		LogFormat:      p.str("DOCCHECK_LOG_FORMAT", "json"),
		UploadRoot:     p.str("DOCCHECK_UPLOAD_ROOT", "./uploads"),
		PolicyFile:     p.str("DOCCHECK_POLICY_FILE", ""),
		AdminToken:     p.str("DOCCHECK_ADMIN_TOKEN", ""),
		TesseractPath:  p.str("DOCCHECK_TESSERACT", "tesseract"),
		RequestTimeout: p.duration("DOCCHECK_REQUEST_TIMEOUT", 90*time.Second),
		AuditCapacity:  p.integer("DOCCHECK_AUDIT_CAPACITY", 500),
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Embedding: EmbeddingConfig{
			Config:          emb,
			Timeout:         p.duration("EMBEDDING_TIMEOUT", 5*time.Second),
			MaxConcurrent:   p.integer("EMBEDDING_MAX_CONCURRENT", 4),
			CacheTTL:        p.duration("EMBEDDING_CACHE_TTL", 24*time.Hour),
			CacheSize:       p.integer("EMBEDDING_CACHE_SIZE", 1024),
			BreakerCooldown: p.duration("EMBEDDING_BREAKER_COOLDOWN", 30*time.Second),
		},
		Auth: AuthConfig{
			SigningKey: p.str("SERVICE_JWT_KEY", ""),
			Issuer:     p.str("SERVICE_JWT_ISSUER", "doccheck"),
			Audience:   p.str("SERVICE_JWT_AUDIENCE", "document-validator"),
		},
		RateLimit: RateLimitConfig{
			Requests: p.integer("DOCCHECK_RATE_LIMIT", 60),
			Window:   p.duration("DOCCHECK_RATE_WINDOW", time.Minute),
		},
	}
	if p.err != nil {
		return Server{}, p.err
	}
	return cfg, nil
}

// parser records the first malformed variable and keeps the fallback for it.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) str(key, fallback string) string {
	if v, ok := p.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.fail(key, v)
		return fallback
	}
	return n
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.fail(key, v)
		return fallback
	}
	return d
}

func (p *parser) fail(key, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid value for %s: %q", key, value)
	}
}
