package retriever

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"research/internal/domain"
)

// epsilon keeps the cosine denominator non-zero for all-zero vectors.
const epsilon = 1e-9

// SimilarityEngine ranks owner-scoped records by cosine similarity.
// It performs a full linear scan with no index structure.
type SimilarityEngine struct {
	logger *slog.Logger
}

// NewSimilarityEngine creates a new similarity engine.
func NewSimilarityEngine(logger *slog.Logger) *SimilarityEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilarityEngine{logger: logger}
}

type scored struct {
	record *domain.VectorRecord
	score  float64
}

// Rank filters records to owner and returns the top k by descending similarity.
// Ties keep the order in which records appear in the collection.
func (e *SimilarityEngine) Rank(records []domain.VectorRecord, query []float32, owner string, k int) ([]domain.SearchHit, error) {
	if k <= 0 {
		return []domain.SearchHit{}, nil
	}

	candidates := make([]scored, 0)
	skipped := 0
	for i := range records {
		rec := &records[i]
		if rec.Owner != owner {
			continue
		}
		if len(rec.Embedding) != len(query) {
			skipped++
			continue
		}
		candidates = append(candidates, scored{record: rec})
	}
	if skipped > 0 {
		e.logger.Debug("skipped records with foreign dimension",
			"owner", owner, "skipped", skipped, "query_dimension", len(query))
	}
	if len(candidates) == 0 {
		if skipped > 0 {
			return nil, fmt.Errorf("%w: no records of dimension %d for owner", domain.ErrDimensionMismatch, len(query))
		}
		return []domain.SearchHit{}, nil
	}

	queryNorm := norm(query)
	for i := range candidates {
		candidates[i].score = CosineSimilarity(candidates[i].record.Embedding, query, queryNorm)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	hits := make([]domain.SearchHit, k)
	for i := 0; i < k; i++ {
		rec := candidates[i].record
		hits[i] = domain.SearchHit{
			ID:       rec.ID,
			Text:     rec.Text,
			Metadata: map[string]string{"title": rec.Title},
			Score:    candidates[i].score,
		}
	}
	return hits, nil
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b|| + epsilon).
// queryNorm is ||b||, computed once per search by the caller.
func CosineSimilarity(a, b []float32, queryNorm float64) float64 {
	var dot, sumA float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		sumA += float64(a[i]) * float64(a[i])
	}
	return dot / (math.Sqrt(sumA)*queryNorm + epsilon)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
