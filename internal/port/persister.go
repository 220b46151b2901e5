package port

import "research/internal/domain"

// RecordPersister reads and writes the complete record collection.
type RecordPersister interface {
	// Load returns the persisted collection in stored order.
	// A missing backing file yields an empty collection and no error.
	Load() ([]domain.VectorRecord, error)

	// Save replaces the persisted collection in full.
	Save(records []domain.VectorRecord) error

	// Location describes where the collection lives, for logs.
	Location() string

	Close() error
}
