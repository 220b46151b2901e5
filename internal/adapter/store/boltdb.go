package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"research/internal/domain"
)

// boltLockTimeout bounds the wait for the file lock held by another process,
// such as a running server.
var boltLockTimeout = time.Second

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyRecords    = []byte("records")
)

// BoltPersister stores the whole collection as one value inside a bbolt
// database. Every Save is a single bbolt transaction.
type BoltPersister struct {
	db   *bbolt.DB
	path string
}

// NewBoltPersister opens (or creates) the bbolt database at path.
func NewBoltPersister(path string) (*BoltPersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("bolt db %s is locked by another process: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	p := &BoltPersister{db: db, path: path}
	if err := p.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *BoltPersister) Load() ([]domain.VectorRecord, error) {
	var records []domain.VectorRecord
	err := p.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketVectors).Get(keyRecords)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to decode records: %w", err)
		}
		return nil
	})
	return records, err
}

func (p *BoltPersister) Save(records []domain.VectorRecord) error {
	if records == nil {
		records = []domain.VectorRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Put(keyRecords, data)
	})
}

func (p *BoltPersister) Location() string {
	return "bolt:" + p.path
}

func (p *BoltPersister) Close() error {
	return p.db.Close()
}
