// Package embedding turns product descriptions into vectors for semantic
// comparison. Backends are a local Ollama server or Google GenAI.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrDisabled is returned by NewEngine when no provider is configured.
var ErrDisabled = errors.New("embedding provider disabled")

// Engine generates vector embeddings for text.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the backend and model, e.g. "ollama:embeddinggemma".
	Name() string
}

// Provider names accepted in Config.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderGenAI  = "genai"
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider string

	OllamaEndpoint string
	OllamaModel    string

	GenAIAPIKey string
	GenAIModel  string
	// TaskType for GenAI, e.g. "SEMANTIC_SIMILARITY".
	TaskType string
}

// DefaultConfig leaves semantic comparison disabled.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderNone,
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		GenAIModel:     "gemini-embedding-001",
		TaskType:       "SEMANTIC_SIMILARITY",
	}
}

// NewEngine creates the configured backend. It returns ErrDisabled when the
// provider is empty or "none".
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, ErrDisabled
	case ProviderOllama:
		return NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel)
	case ProviderGenAI:
		return NewGenAIEngine(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'none', 'ollama' or 'genai')", cfg.Provider)
	}
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). A zero-magnitude vector has
// similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("vectors must not be empty")
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}
