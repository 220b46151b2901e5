package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"research/internal/domain"
)

// JSONFilePersister keeps the collection in a single JSON array file:
// [{"id","user_id","title","text","embedding"}, ...].
type JSONFilePersister struct {
	path string
}

// NewJSONFilePersister creates a persister for the given file path.
func NewJSONFilePersister(path string) *JSONFilePersister {
	return &JSONFilePersister{path: path}
}

func (p *JSONFilePersister) Load() ([]domain.VectorRecord, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}

	var records []domain.VectorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p.path, err)
	}
	return records, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers only ever see a complete file.
func (p *JSONFilePersister) Save(records []domain.VectorRecord) error {
	if records == nil {
		records = []domain.VectorRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}

func (p *JSONFilePersister) Location() string {
	return "json:" + p.path
}

func (p *JSONFilePersister) Close() error {
	return nil
}
