/*
Package sqlite provides the SQLite-backed activity ledger.

PURPOSE:
  Durable implementation of activity.Log. In production the same
  pattern applies to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the activities table
  - No DELETE statements on the activities table

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/frontdesk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - activity: ledger interface and in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/actor"
)

// Store implements activity.Log on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite-backed ledger at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id           TEXT PRIMARY KEY,
			property_id  TEXT NOT NULL,
			actor_role   TEXT NOT NULL,
			actor_id     TEXT NOT NULL,
			actor_label  TEXT NOT NULL,
			kind         TEXT NOT NULL,
			reference    TEXT NOT NULL DEFAULT '',
			details_json TEXT NOT NULL DEFAULT '{}',
			created_at   TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activities_property_created
			ON activities(property_id, created_at DESC);
	`)
	return err
}

// Append stores one record. Records are never updated or deleted.
func (s *Store) Append(ctx context.Context, rec activity.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	details := rec.Details
	if details == nil {
		details = map[string]string{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (id, property_id, actor_role, actor_id, actor_label, kind, reference, details_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PropertyID, string(rec.Actor.Role), rec.Actor.ID, rec.Actor.Label,
		string(rec.Kind), rec.Reference, string(detailsJSON), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// ListByProperty returns up to limit records for a property, newest first.
// limit <= 0 means no limit.
func (s *Store) ListByProperty(ctx context.Context, propertyID string, limit int) ([]activity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, property_id, actor_role, actor_id, actor_label, kind, reference, details_json, created_at
		FROM activities
		WHERE property_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{propertyID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []activity.Record
	for rows.Next() {
		var (
			rec         activity.Record
			role        string
			kind        string
			detailsJSON string
			createdAt   time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.PropertyID, &role, &rec.Actor.ID, &rec.Actor.Label,
			&kind, &rec.Reference, &detailsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		rec.Actor.Role = actor.Role(role)
		rec.Kind = activity.Kind(kind)
		rec.CreatedAt = createdAt.UTC()
		if err := json.Unmarshal([]byte(detailsJSON), &rec.Details); err != nil {
			rec.Details = nil
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
