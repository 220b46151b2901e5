package store

import (
	"fmt"
	"strings"

	"research/internal/adapter/memstore"
	"research/internal/domain"
	"research/internal/port"
)

const (
	FormatJSON   = "json"
	FormatBolt   = "bolt"
	FormatSQLite = "sqlite"
	FormatMemory = "memory"
)

// OpenPersister opens the persister for the given on-disk format.
func OpenPersister(format, path string) (port.RecordPersister, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return NewJSONFilePersister(path), nil
	case FormatBolt:
		return NewBoltPersister(path)
	case FormatSQLite:
		return NewSQLitePersister(path)
	case FormatMemory:
		return memstore.NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownFormat, format)
	}
}

// ParseLocation splits "format:path" into its parts. A bare path is JSON.
func ParseLocation(location string) (format, path string) {
	if i := strings.Index(location, ":"); i > 0 {
		switch prefix := strings.ToLower(location[:i]); prefix {
		case FormatJSON, FormatBolt, FormatSQLite, FormatMemory:
			return prefix, location[i+1:]
		}
	}
	return FormatJSON, location
}
