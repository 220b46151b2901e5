package memstore

import (
	"sync"

	"research/internal/domain"
)

// MemoryPersister keeps the collection in process memory only.
type MemoryPersister struct {
	mu      sync.RWMutex
	records []domain.VectorRecord
	saves   int
}

func NewMemoryPersister(records ...domain.VectorRecord) *MemoryPersister {
	return &MemoryPersister{records: cloneRecords(records)}
}

func (p *MemoryPersister) Load() ([]domain.VectorRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneRecords(p.records), nil
}

func (p *MemoryPersister) Save(records []domain.VectorRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = cloneRecords(records)
	p.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (p *MemoryPersister) Saves() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saves
}

func (p *MemoryPersister) Location() string {
	return "memory"
}

func (p *MemoryPersister) Close() error {
	return nil
}

func cloneRecords(records []domain.VectorRecord) []domain.VectorRecord {
	if records == nil {
		return nil
	}
	out := make([]domain.VectorRecord, len(records))
	for i, rec := range records {
		rec.Embedding = append([]float32(nil), rec.Embedding...)
		out[i] = rec
	}
	return out
}
