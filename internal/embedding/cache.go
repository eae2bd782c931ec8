package embedding

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prepdesk/assessment-engine/internal/bank"
)

// Cache holds the precomputed embeddings of every correct answer, keyed by
// question number. Built once at startup; read-only afterwards.
type Cache struct {
	vectors map[int][]float32
}

const precomputeBatchSize = 64

// NewCache embeds the correct answer of every question in the bank. A
// failure here is a startup failure; the engine cannot score without
// reference vectors.
func NewCache(ctx context.Context, p Provider, b *bank.Bank) (*Cache, error) {
	start := time.Now()

	var numbers []int
	var texts []string
	for _, s := range b.Sections() {
		for _, n := range s.Questions {
			q, err := b.Lookup(n)
			if err != nil {
				// Catalog numbers with no bank record cannot be scored;
				// serving them fails later with a lookup error.
				log.Printf("warn: no bank record for question %d, skipping precompute", n)
				continue
			}
			numbers = append(numbers, n)
			texts = append(texts, q.CorrectAnswer)
		}
	}

	c := &Cache{vectors: make(map[int][]float32, len(numbers))}
	for lo := 0; lo < len(texts); lo += precomputeBatchSize {
		hi := lo + precomputeBatchSize
		if hi > len(texts) {
			hi = len(texts)
		}
		vecs, err := p.EmbedBatch(ctx, texts[lo:hi])
		if err != nil {
			return nil, fmt.Errorf("precompute correct-answer embeddings: %w", err)
		}
		for i, v := range vecs {
			c.vectors[numbers[lo+i]] = v
		}
	}
	log.Printf("precomputed %d correct-answer embeddings in %.2fs", len(c.vectors), time.Since(start).Seconds())
	return c, nil
}

// CorrectAnswer returns the cached reference vector for a question.
func (c *Cache) CorrectAnswer(number int) ([]float32, bool) {
	v, ok := c.vectors[number]
	return v, ok
}
