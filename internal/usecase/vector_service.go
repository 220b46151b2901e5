package usecase

import (
	"fmt"
	"log/slog"

	"research/internal/adapter/cache"
	"research/internal/adapter/retriever"
	"research/internal/adapter/store"
	"research/internal/domain"
	"research/internal/port"
)

// VectorService is the entry point for indexing and searching sources.
// Construct it once per process and share it.
type VectorService struct {
	store    *store.RecordStore
	embedder port.Embedder
	engine   *retriever.SimilarityEngine
	cache    *cache.QueryCache
	logger   *slog.Logger
}

// ServiceOptions holds optional collaborators of VectorService.
type ServiceOptions struct {
	// Cache memoizes search hits; nil disables caching.
	Cache  *cache.QueryCache
	Logger *slog.Logger
}

// NewVectorService composes a record store and an embedder. The embedder is
// typically an *embedding.Lazy, so nothing is initialized until first use.
func NewVectorService(st *store.RecordStore, embedder port.Embedder, opts ServiceOptions) *VectorService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorService{
		store:    st,
		embedder: embedder,
		engine:   retriever.NewSimilarityEngine(logger),
		cache:    opts.Cache,
		logger:   logger,
	}
}

// EmbeddingText is the text embedded for a source: the title always prefixes the body.
func EmbeddingText(title, text string) string {
	return title + ": " + text
}

// Upsert embeds "{title}: {text}" and stores it under docID, replacing any
// earlier record with that id.
func (s *VectorService) Upsert(docID, owner, title, text string) error {
	if docID == "" {
		return domain.ErrEmptyID
	}
	if owner == "" {
		return domain.ErrEmptyOwner
	}

	vec, err := s.embedOne(EmbeddingText(title, text))
	if err != nil {
		return fmt.Errorf("failed to embed %s: %w", docID, err)
	}

	err = s.store.Upsert(domain.VectorRecord{
		ID:        docID,
		Owner:     owner,
		Title:     title,
		Text:      text,
		Embedding: vec,
	})
	if err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("upserted document", "id", docID, "owner", owner)
	return nil
}

// Delete removes docID for owner. A missing id is not an error.
func (s *VectorService) Delete(docID, owner string) error {
	removed, err := s.store.Delete(docID, owner)
	if err != nil {
		return err
	}
	if removed {
		s.invalidate()
		s.logger.Info("deleted document", "id", docID, "owner", owner)
	}
	return nil
}

// Search embeds the raw query and returns at most n hits from owner's records,
// best first. An owner without records gets an empty result and the
// embedding provider is not touched.
func (s *VectorService) Search(query, owner string, n int) ([]domain.SearchHit, error) {
	if n <= 0 {
		return []domain.SearchHit{}, nil
	}

	// read before the snapshot so a write landing mid-search voids the entry
	var gen uint64
	if s.cache != nil {
		gen = s.cache.Generation()
	}

	records := s.store.Snapshot()
	if !hasOwner(records, owner) {
		return []domain.SearchHit{}, nil
	}

	if s.cache != nil {
		if hits, ok := s.cache.Get(owner, query, n); ok {
			return hits, nil
		}
	}

	vec, err := s.embedOne(query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if dim := s.store.Dimension(); dim != 0 && len(vec) != dim {
		return nil, fmt.Errorf("%w: query has %d, store has %d", domain.ErrDimensionMismatch, len(vec), dim)
	}

	hits, err := s.engine.Rank(records, vec, owner, n)
	if err != nil {
		return nil, err
	}

	for _, hit := range hits {
		if hit.Score > 0.3 {
			s.logger.Debug("match found", "title", hit.Title(), "score", hit.Score)
		}
	}

	if s.cache != nil {
		s.cache.PutAt(gen, owner, query, n, hits)
	}
	return hits, nil
}

// Stats summarizes the store contents.
func (s *VectorService) Stats() domain.Stats {
	return s.store.Stats()
}

// Sources lists owner's records in insertion order.
func (s *VectorService) Sources(owner string) []domain.SourceRef {
	refs := []domain.SourceRef{}
	for _, rec := range s.store.Snapshot() {
		if rec.Owner == owner {
			refs = append(refs, domain.SourceRef{ID: rec.ID, Title: rec.Title})
		}
	}
	return refs
}

// ModelName returns the embedding model in use.
func (s *VectorService) ModelName() string {
	return s.embedder.ModelName()
}

// Close releases the underlying store.
func (s *VectorService) Close() error {
	return s.store.Close()
}

func (s *VectorService) embedOne(text string) ([]float32, error) {
	embeddings, err := s.embedder.Embed([]string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: embedding returned empty result", domain.ErrProviderUnavailable)
	}
	return embeddings[0], nil
}

func (s *VectorService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func hasOwner(records []domain.VectorRecord, owner string) bool {
	for i := range records {
		if records[i].Owner == owner {
			return true
		}
	}
	return false
}
