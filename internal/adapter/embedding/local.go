package embedding

import (
	"hash/fnv"
	"math"
	"sort"

	"research/internal/adapter/analyzer"
)

// DefaultLocalDimension matches all-MiniLM-L6-v2.
const DefaultLocalDimension = 384

// LocalEmbedder is an offline feature-hashing embedder. Stemmed terms are
// hashed into a fixed number of signed buckets and the result is
// L2-normalized, so texts sharing vocabulary score high under cosine.
type LocalEmbedder struct {
	tokenizer *analyzer.Tokenizer
	dimension int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	return &LocalEmbedder{
		tokenizer: analyzer.NewTokenizer(true),
		dimension: dimension,
	}
}

func (e *LocalEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embedOne(text)
	}
	return embeddings, nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	terms := e.tokenizer.Terms(text)
	keys := make([]string, 0, len(terms))
	for term := range terms {
		keys = append(keys, term)
	}
	sort.Strings(keys)

	acc := make([]float64, e.dimension)
	for _, term := range keys {
		h := fnv.New64a()
		h.Write([]byte(term))
		sum := h.Sum64()

		// sublinear tf keeps a repeated word from dominating the vector
		weight := 1 + math.Log(float64(terms[term]))
		bucket := int(sum % uint64(e.dimension))
		if sum&(1<<63) != 0 {
			weight = -weight
		}
		acc[bucket] += weight
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dimension)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func (e *LocalEmbedder) Dimension() int {
	return e.dimension
}

func (e *LocalEmbedder) ModelName() string {
	return "local-hashing"
}
