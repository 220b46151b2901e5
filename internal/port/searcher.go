package port

import "research/internal/domain"

// Searcher ranks owner-scoped records against a query text.
type Searcher interface {
	Search(query, owner string, k int) ([]domain.SearchHit, error)
}

// SourceLister lists every source an owner has saved.
type SourceLister interface {
	Sources(owner string) []domain.SourceRef
}
