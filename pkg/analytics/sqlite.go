package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps events in a single-table SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("analytics: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analytics: init schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id      TEXT PRIMARY KEY,
		ts      INTEGER NOT NULL,
		kind    TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}'
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS events_ts ON events (ts)`)
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, kind Kind, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return utils.WrapIfNotNil(err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, ts, kind, payload) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), s.now().UTC().UnixNano(), string(kind), string(encoded),
	)
	if err != nil {
		return fmt.Errorf("analytics: insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Counts(ctx context.Context) (Usage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return Usage{}, fmt.Errorf("analytics: count: %w", err)
	}
	defer rows.Close()

	usage := newUsage()
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return Usage{}, fmt.Errorf("analytics: scan: %w", err)
		}
		usage.add(Kind(kind), n)
	}
	return usage, utils.WrapIfNotNil(rows.Err())
}

// Events returns the most recent events first.
func (s *SQLiteStore) Events(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, kind, payload FROM events ORDER BY ts DESC, id LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("analytics: list: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			event   Event
			ts      int64
			kind    string
			payload string
		)
		if err := rows.Scan(&event.ID, &ts, &kind, &payload); err != nil {
			return nil, fmt.Errorf("analytics: scan: %w", err)
		}
		event.Timestamp = time.Unix(0, ts).UTC()
		event.Kind = Kind(kind)
		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			event.Payload = map[string]any{"raw": payload}
		}
		events = append(events, event)
	}
	return events, utils.WrapIfNotNil(rows.Err())
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
