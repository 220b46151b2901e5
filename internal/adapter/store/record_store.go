package store

import (
	"fmt"
	"log/slog"
	"sync"

	"research/internal/domain"
	"research/internal/port"
)

// Options configures a RecordStore.
type Options struct {
	// Dimension fixes the embedding length. Zero infers it from the first record.
	Dimension int
	// OwnerScopedUpsert makes (id, owner) the upsert key instead of id alone.
	OwnerScopedUpsert bool
	Logger            *slog.Logger
}

// RecordStore is the in-memory record collection backed by a persister.
// Every mutation rewrites the persisted collection in full. Mutations build a
// new slice and swap it in, so a reader holding a snapshot never sees a
// partial update.
type RecordStore struct {
	persister port.RecordPersister
	opts      Options
	logger    *slog.Logger

	mu        sync.RWMutex
	records   []domain.VectorRecord
	dimension int
}

// NewRecordStore creates a store and loads the persisted collection.
func NewRecordStore(persister port.RecordPersister, opts Options) *RecordStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &RecordStore{
		persister: persister,
		opts:      opts,
		logger:    logger,
		dimension: opts.Dimension,
	}
	s.Load()
	return s
}

// Load replaces the in-memory collection with the persisted one. A read or
// decode failure is logged and leaves the store empty.
func (s *RecordStore) Load() {
	records, err := s.persister.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to load vector store, starting empty",
			"location", s.persister.Location(), "error", err)
		records = nil
	}
	s.records = records
	s.dimension = s.opts.Dimension
	if s.dimension == 0 && len(records) > 0 {
		s.dimension = len(records[0].Embedding)
	}

	foreign := 0
	for _, rec := range records {
		if len(rec.Embedding) != s.dimension {
			foreign++
		}
	}
	if foreign > 0 {
		s.logger.Warn("loaded records with foreign dimension",
			"location", s.persister.Location(), "count", foreign, "dimension", s.dimension)
	}
	if err == nil {
		s.logger.Info("loaded vector store",
			"location", s.persister.Location(), "records", len(records), "dimension", s.dimension)
	}
}

// Save persists the current collection.
func (s *RecordStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persister.Save(s.records)
}

// Upsert removes any record with the same id and appends rec, then persists.
// Unless OwnerScopedUpsert is set, an id held by another owner is replaced.
func (s *RecordStore) Upsert(rec domain.VectorRecord) error {
	if rec.ID == "" {
		return domain.ErrEmptyID
	}
	if rec.Owner == "" {
		return domain.ErrEmptyOwner
	}
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for %s", domain.ErrDimensionMismatch, rec.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimension
	if dimension == 0 {
		dimension = len(rec.Embedding)
	}
	if len(rec.Embedding) != dimension {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dimension, len(rec.Embedding))
	}

	next := make([]domain.VectorRecord, 0, len(s.records)+1)
	for _, existing := range s.records {
		if existing.ID != rec.ID {
			next = append(next, existing)
			continue
		}
		if existing.Owner == rec.Owner {
			continue
		}
		if s.opts.OwnerScopedUpsert {
			next = append(next, existing)
			continue
		}
		s.logger.Warn("upsert replaces record of another owner",
			"id", rec.ID, "previous_owner", existing.Owner, "owner", rec.Owner)
	}
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	next = append(next, rec)

	if err := s.persister.Save(next); err != nil {
		return fmt.Errorf("failed to persist upsert of %s: %w", rec.ID, err)
	}
	s.records = next
	s.dimension = dimension
	return nil
}

// Delete removes records matching both id and owner. It reports whether
// anything was removed and persists only in that case.
func (s *RecordStore) Delete(id, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.VectorRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.ID == id && rec.Owner == owner {
			continue
		}
		next = append(next, rec)
	}
	if len(next) == len(s.records) {
		return false, nil
	}

	if err := s.persister.Save(next); err != nil {
		return false, fmt.Errorf("failed to persist delete of %s: %w", id, err)
	}
	s.records = next
	if len(next) == 0 && s.opts.Dimension == 0 {
		s.dimension = 0
	}
	return true, nil
}

// Snapshot returns the current collection. Callers must not modify it.
func (s *RecordStore) Snapshot() []domain.VectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Dimension returns the store's embedding length, 0 while unknown.
func (s *RecordStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Count returns the number of records in the store.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *RecordStore) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make(map[string]int)
	for _, rec := range s.records {
		owners[rec.Owner]++
	}
	return domain.Stats{
		TotalRecords: len(s.records),
		Owners:       owners,
		Dimension:    s.dimension,
	}
}

// Close releases the underlying persister.
func (s *RecordStore) Close() error {
	return s.persister.Close()
}
