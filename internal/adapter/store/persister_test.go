package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.etcd.io/bbolt"
	"research/internal/domain"
	"research/internal/port"
)

func sampleRecords() []domain.VectorRecord {
	return []domain.VectorRecord{
		rec("d1", "u1", "Paper A", "about graphs", 0.1, 0.2, 0.3),
		rec("d2", "u1", "Paper B", "about banking", -0.5, 0.25, 1e-7),
		rec("d3", "u2", "Paper C", "", 1, 0, 0),
	}
}

func assertSameRecords(t *testing.T, want, got []domain.VectorRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.ID != g.ID || w.Owner != g.Owner || w.Title != g.Title || w.Text != g.Text {
			t.Errorf("record %d: expected %+v, got %+v", i, w, g)
		}
		if len(w.Embedding) != len(g.Embedding) {
			t.Fatalf("record %d: embedding length %d != %d", i, len(g.Embedding), len(w.Embedding))
		}
		for j := range w.Embedding {
			if math.Abs(float64(w.Embedding[j]-g.Embedding[j])) > 1e-6 {
				t.Errorf("record %d: embedding[%d] %v != %v", i, j, g.Embedding[j], w.Embedding[j])
			}
		}
	}
}

func TestPersisterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		path   string
	}{
		{FormatJSON, filepath.Join(dir, "vectors.json")},
		{FormatBolt, filepath.Join(dir, "vectors.db")},
		{FormatSQLite, filepath.Join(dir, "vectors.sqlite")},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := OpenPersister(tt.format, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			empty, err := p.Load()
			if err != nil {
				t.Fatalf("load of fresh store failed: %v", err)
			}
			if len(empty) != 0 {
				t.Errorf("expected empty fresh store, got %d", len(empty))
			}

			st := NewRecordStore(p, Options{})
			for _, r := range sampleRecords() {
				if err := st.Upsert(r); err != nil {
					t.Fatal(err)
				}
			}
			if err := st.Close(); err != nil {
				t.Fatal(err)
			}

			// Simulate a process restart.
			p2, err := OpenPersister(tt.format, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer p2.Close()
			reloaded := NewRecordStore(p2, Options{})
			assertSameRecords(t, sampleRecords(), reloaded.Snapshot())
		})
	}
}

func TestJSONFileSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	p := NewJSONFilePersister(path)
	if err := p.Save(sampleRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"id"`, `"user_id"`, `"title"`, `"text"`, `"embedding"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected field %s in %s", field, data)
		}
	}
}

func TestJSONFileLoadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	legacy := `[{"id": "abc", "user_id": "u1", "title": "T", "text": "body", "embedding": [0.5, -0.5]}]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := NewJSONFilePersister(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	assertSameRecords(t, []domain.VectorRecord{rec("abc", "u1", "T", "body", 0.5, -0.5)}, records)
}

func TestJSONFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewJSONFilePersister(filepath.Join(dir, "nested", "vectors.json"))
	for i := 0; i < 3; i++ {
		if err := p.Save(sampleRecords()); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "vectors.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only vectors.json, got %v", names)
	}
}

func TestBoltSchemaVersion(t *testing.T) {
	p, err := NewBoltPersister(filepath.Join(t.TempDir(), "vectors.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	version, err := p.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("expected schema v%d, got v%d", CurrentSchemaVersion, version)
	}
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	src := NewJSONFilePersister(filepath.Join(dir, "vectors.json"))
	if err := src.Save(sampleRecords()); err != nil {
		t.Fatal(err)
	}

	bolt, err := NewBoltPersister(filepath.Join(dir, "vectors.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer bolt.Close()
	sqlite, err := NewSQLitePersister(filepath.Join(dir, "vectors.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()

	var chain = []port.RecordPersister{src, bolt, sqlite}
	for i := 1; i < len(chain); i++ {
		result, err := Migrate(chain[i-1], chain[i])
		if err != nil {
			t.Fatal(err)
		}
		if result.Records != 3 {
			t.Errorf("expected 3 migrated records, got %d", result.Records)
		}
	}

	records, err := sqlite.Load()
	if err != nil {
		t.Fatal(err)
	}
	assertSameRecords(t, sampleRecords(), records)
}

func TestOpenPersisterUnknownFormat(t *testing.T) {
	_, err := OpenPersister("parquet", "x")
	if !errors.Is(err, domain.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in, format, path string
	}{
		{"vectors.json", FormatJSON, "vectors.json"},
		{"bolt:data/v.db", FormatBolt, "data/v.db"},
		{"SQLITE:v.sqlite", FormatSQLite, "v.sqlite"},
		{"json:/abs/v.json", FormatJSON, "/abs/v.json"},
		{"C:/data/v.json", FormatJSON, "C:/data/v.json"},
	}
	for _, tt := range tests {
		format, path := ParseLocation(tt.in)
		if format != tt.format || path != tt.path {
			t.Errorf("ParseLocation(%q) = %q, %q; want %q, %q", tt.in, format, path, tt.format, tt.path)
		}
	}
}

func TestBoltLockedByAnotherHandle(t *testing.T) {
	defer func(d time.Duration) { boltLockTimeout = d }(boltLockTimeout)
	boltLockTimeout = 50 * time.Millisecond

	path := filepath.Join(t.TempDir(), "vectors.db")
	holder, err := NewBoltPersister(path)
	if err != nil {
		t.Fatal(err)
	}
	defer holder.Close()

	start := time.Now()
	_, err = NewBoltPersister(path)
	if !errors.Is(err, bbolt.ErrTimeout) {
		t.Fatalf("expected lock timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("open waited %s for the lock", elapsed)
	}
}
