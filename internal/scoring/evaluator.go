package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/prepdesk/assessment-engine/internal/bank"
	"github.com/prepdesk/assessment-engine/internal/embedding"
)

// Embedder is the slice of the embedding provider the evaluator needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerVectors serves precomputed correct-answer embeddings by question
// number.
type AnswerVectors interface {
	CorrectAnswer(number int) ([]float32, bool)
}

// Evaluator blends semantic similarity against the reference answer with
// keyword content accuracy, then discretizes the blend into a reward score.
type Evaluator struct {
	bank     *bank.Bank
	embedder Embedder
	vectors  AnswerVectors
}

func NewEvaluator(b *bank.Bank, e Embedder, v AnswerVectors) *Evaluator {
	return &Evaluator{bank: b, embedder: e, vectors: v}
}

// Evaluate scores a free-text answer for a question. The result is either a
// band value from the reward ladder (50..100) or, for clearly weak answers,
// the raw blended percentage below 45.
//
// The semantic term is cosine*100 without clamping, so a negative cosine can
// drag the blend below the keyword-only score. The blend is clamped to
// [0,100] before rounding.
func (e *Evaluator) Evaluate(ctx context.Context, answer string, questionNumber int) (int, error) {
	q, err := e.bank.Lookup(questionNumber)
	if err != nil {
		return 0, err
	}
	correct, ok := e.vectors.CorrectAnswer(questionNumber)
	if !ok {
		return 0, fmt.Errorf("no reference embedding for question %d", questionNumber)
	}
	vec, err := e.embedder.Embed(ctx, answer)
	if err != nil {
		return 0, fmt.Errorf("embed answer: %w", err)
	}

	semantic := embedding.Cosine(vec, correct) * 100
	content := ContentAccuracy(q.Keywords, answer).Score

	final := (semantic + content) / 2
	final = math.Max(0, math.Min(100, final))
	return Discretize(int(math.RoundToEven(final))), nil
}

// Discretize maps a blended 0..100 percentage onto the reward ladder. Bands
// are inclusive on their low bound; below 45 the raw value passes through.
func Discretize(final int) int {
	switch {
	case final >= 70:
		return 100
	case final >= 65:
		return 90
	case final >= 60:
		return 80
	case final >= 55:
		return 70
	case final >= 50:
		return 60
	case final >= 45:
		return 50
	default:
		return final
	}
}
