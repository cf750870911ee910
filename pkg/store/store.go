// Package store persists controller state as chunked key-value records in a
// local sqlite file. Chunks are loaded strictly one at a time at boot to
// bound peak memory, and a chunk that fails to load falls back to its default
// without touching what is on disk.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS state_chunks (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const upsertChunkSQL = `
INSERT INTO state_chunks (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value=excluded.value,
    updated_at=excluded.updated_at
`

type Store struct {
	db  *sql.DB
	seq *Sequencer
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// one writer, matching the one-in-flight discipline
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, seq: NewSequencer()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveChunk serializes v and upserts it under key.
func (s *Store) SaveChunk(ctx context.Context, key string, v any) error {
	return s.seq.Do(func() error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal chunk %q: %w", key, err)
		}
		_, err = s.db.ExecContext(ctx, upsertChunkSQL, key, string(b), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("save chunk %q: %w", key, err)
		}
		return nil
	})
}

// LoadChunk unmarshals the stored chunk into v. Returns false with nil error
// if no chunk exists yet.
func (s *Store) LoadChunk(ctx context.Context, key string, v any) (bool, error) {
	var found bool
	err := s.seq.Do(func() error {
		var raw string
		row := s.db.QueryRowContext(ctx, "SELECT value FROM state_chunks WHERE key=?", key)
		if err := row.Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("load chunk %q: %w", key, err)
		}
		if err := json.Unmarshal([]byte(raw), v); err != nil {
			return fmt.Errorf("decode chunk %q: %w", key, err)
		}
		found = true
		return nil
	})
	return found, err
}

// Chunk pairs a key with the destination it loads into.
type Chunk struct {
	Key  string
	Dest any
}

// LoadSequence loads chunks one at a time. A failed chunk is logged and left
// at its default; loading continues with the next chunk.
func (s *Store) LoadSequence(ctx context.Context, chunks []Chunk) {
	for _, c := range chunks {
		found, err := s.LoadChunk(ctx, c.Key, c.Dest)
		if err != nil {
			logrus.WithFields(logrus.Fields{"chunk": c.Key, "error": err}).Warn("store: chunk load failed, using defaults")
			continue
		}
		logrus.WithFields(logrus.Fields{"chunk": c.Key, "found": found}).Debug("store: chunk loaded")
	}
}
