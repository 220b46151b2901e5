package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"research/internal/port"
)

// CurrentSchemaVersion is the current bolt schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the schema version stored in the database, 0 if unset.
func (p *BoltPersister) SchemaVersion() (int, error) {
	var version int
	err := p.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

func (p *BoltPersister) ensureSchema() error {
	version, err := p.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("bolt store schema v%d is newer than supported v%d", version, CurrentSchemaVersion)
	}
	if version == CurrentSchemaVersion {
		return nil
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// MigrationResult describes a completed migration.
type MigrationResult struct {
	From    string
	To      string
	Records int
}

// Migrate copies the complete collection from src to dst, replacing
// whatever dst held before.
func Migrate(src, dst port.RecordPersister) (*MigrationResult, error) {
	records, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Location(), err)
	}
	if err := dst.Save(records); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dst.Location(), err)
	}
	return &MigrationResult{
		From:    src.Location(),
		To:      dst.Location(),
		Records: len(records),
	}, nil
}
