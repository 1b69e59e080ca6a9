// Package history keeps a local DuckDB journal of every change the
// panel has seen, powering the activity chart and session stats.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wikivigil/vigil/internal/model"
)

const defaultQueryTimeout = 10 * time.Second

// Store manages the DuckDB database holding seen changes.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens or creates the history database. An empty path opens an
// in-memory database, used by tests and by --no-history runs.
func Open(dbPath string) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, queryTimeout: defaultQueryTimeout}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS seen_changes (
			revision_id BIGINT PRIMARY KEY,
			title       VARCHAR NOT NULL,
			change_kind VARCHAR NOT NULL,
			ts          TIMESTAMP NOT NULL,
			old_size    INTEGER NOT NULL,
			new_size    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS seen_tags (
			revision_id BIGINT NOT NULL,
			tag         VARCHAR NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record journals a batch of fetched changes. Revisions already seen in
// a previous poll are skipped, so re-fetching an overlapping window does
// not inflate the counts.
func (s *Store) Record(records []model.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertChange, err := tx.PrepareContext(ctx,
		`INSERT INTO seen_changes (revision_id, title, change_kind, ts, old_size, new_size)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (revision_id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer insertChange.Close()

	insertTag, err := tx.PrepareContext(ctx,
		`INSERT INTO seen_tags (revision_id, tag) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer insertTag.Close()

	for _, rec := range records {
		res, err := insertChange.ExecContext(ctx,
			rec.RevisionID, rec.Title, rec.ChangeKind, rec.Timestamp.UTC(),
			rec.OldSize, rec.NewSize)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			continue // already journaled
		}
		for _, tag := range rec.Tags {
			if _, err := insertTag.ExecContext(ctx, rec.RevisionID, tag); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// TotalSeen returns how many distinct changes have ever been journaled.
func (s *Store) TotalSeen() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_changes`).Scan(&total)
	return total, err
}

// CountsByMinute returns per-minute change counts over the most recent
// window of the given number of buckets, oldest first. Minutes with no
// changes are absent.
func (s *Store) CountsByMinute(buckets int) ([]model.BucketCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	since := time.Now().UTC().Add(-time.Duration(buckets) * time.Minute)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date_trunc('minute', ts) AS bucket, COUNT(*) AS n
		 FROM seen_changes
		 WHERE ts >= ?
		 GROUP BY bucket
		 ORDER BY bucket`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BucketCount
	for rows.Next() {
		var bc model.BucketCount
		if err := rows.Scan(&bc.Bucket, &bc.Count); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

// TopTags returns the most frequent change tags among journaled changes.
func (s *Store) TopTags(limit int) ([]model.TagCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, COUNT(*) AS n
		 FROM seen_tags
		 GROUP BY tag
		 ORDER BY n DESC, tag
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TagCount
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
