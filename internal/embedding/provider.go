// Package embedding abstracts the text-embedding provider and the cosine
// similarity the evaluator consumes.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Provider turns text into fixed-length vectors.
type Provider interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds several texts in one call, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrUnavailable marks a transient upstream failure (rate limit, 5xx,
// network). Callers may retry; it is distinct from integrity errors.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string { return fmt.Sprintf("embedding provider unavailable: %v", e.Err) }
func (e *ErrUnavailable) Unwrap() error { return e.Err }

// Cosine computes cosine similarity between two vectors. Mismatched lengths
// are compared over the shorter prefix; a zero-norm operand yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
