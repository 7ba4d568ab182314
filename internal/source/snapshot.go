package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// snapshotSchemaVersion tracks the snapshot database layout. A mismatch means
// the file was written by an incompatible build and must be recreated.
const snapshotSchemaVersion = 1

// ErrSnapshotMiss reports data the snapshot was never recorded with.
var ErrSnapshotMiss = errors.New("not recorded in snapshot")

// Snapshot is a sqlite cache of fetched conference data. It implements
// Source, so an offline build reads from it exactly the way an online build
// reads from the backend.
type Snapshot struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSnapshot opens or creates a snapshot database at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	s := &Snapshot{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSnapshotInMemory opens an in-memory snapshot (for testing).
func OpenSnapshotInMemory() (*Snapshot, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	s := &Snapshot{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the snapshot database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

func (s *Snapshot) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conferences (
			code TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS collections (
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (code, name)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize snapshot schema: %w", err)
	}

	var stored string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(`INSERT INTO meta (key, value) VALUES ('version', ?)`,
			fmt.Sprintf("%d", snapshotSchemaVersion)); err != nil {
			return fmt.Errorf("set snapshot version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read snapshot version: %w", err)
	case stored != fmt.Sprintf("%d", snapshotSchemaVersion):
		return fmt.Errorf("snapshot schema version %s is not supported", stored)
	}
	return nil
}

// StoreConference records a conference's metadata.
func (s *Snapshot) StoreConference(meta *Meta) error {
	record, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode conference record: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO conferences (code, record, fetched_at)
		VALUES (?, ?, ?)
	`, meta.Code, string(record), s.now().Unix())
	if err != nil {
		return fmt.Errorf("store conference %s: %w", meta.Code, err)
	}
	return nil
}

// StoreCollection records one raw collection payload.
func (s *Snapshot) StoreCollection(code, name string, payload json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO collections (code, name, payload, fetched_at)
		VALUES (?, ?, ?, ?)
	`, code, name, string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("store collection %s/%s: %w", code, name, err)
	}
	return nil
}

// Conference reads a recorded conference record.
func (s *Snapshot) Conference(ctx context.Context, code string) (*Meta, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM conferences WHERE code = ?`, code).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conference %s: %w", code, ErrSnapshotMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("read conference %s: %w", code, err)
	}
	var meta Meta
	if err := json.Unmarshal([]byte(record), &meta); err != nil {
		return nil, fmt.Errorf("parse conference record %s: %w", code, err)
	}
	return &meta, nil
}

// Collection reads a recorded collection payload.
func (s *Snapshot) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM collections WHERE code = ? AND name = ?`, code, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection %s/%s: %w", code, name, ErrSnapshotMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s/%s: %w", code, name, err)
	}
	return json.RawMessage(payload), nil
}

// Recording wraps a Source so every successful fetch is also written to a
// snapshot, keeping the cache current for later offline builds.
type Recording struct {
	src  Source
	snap *Snapshot
}

// NewRecording builds a recording source over src.
func NewRecording(src Source, snap *Snapshot) *Recording {
	return &Recording{src: src, snap: snap}
}

func (r *Recording) Conference(ctx context.Context, code string) (*Meta, error) {
	meta, err := r.src.Conference(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := r.snap.StoreConference(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (r *Recording) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	payload, err := r.src.Collection(ctx, code, name)
	if err != nil {
		return nil, err
	}
	if err := r.snap.StoreCollection(code, name, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
