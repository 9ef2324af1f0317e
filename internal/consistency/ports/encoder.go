package ports

import "context"

// Encoder turns text into a fixed-length embedding vector. Implementations
// must be safe for concurrent use; the evaluator may call Encode from several
// goroutines at once.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}
