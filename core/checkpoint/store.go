// Package checkpoint persists resolved enrichment so an interrupted or
// repeated harvest does not need to fetch every detail page again.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/senseiharvest/core"
	_ "modernc.org/sqlite"
)

// Memory opens a private in-process store.
const Memory = ":memory:"

// Entry is the enrichment resolved for one record. Term is the record's
// key field at the time it was stored; a lookup for a different term is a
// miss.
type Entry struct {
	Term           string
	SentenceSource string
	SentenceTarget string
	SentenceURL    string
	MediaPath      string
	Notes          string
}

// Store is an SQLite-backed enrichment cache.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	dsn := path
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer and :memory: databases are
	// per connection.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS enrichment (
			level TEXT NOT NULL,
			kind TEXT NOT NULL,
			idx INTEGER NOT NULL,
			term TEXT NOT NULL,
			sentence_source TEXT NOT NULL DEFAULT '',
			sentence_target TEXT NOT NULL DEFAULT '',
			sentence_url TEXT NOT NULL DEFAULT '',
			media_path TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (level, kind, idx)
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the stored entry for the record at index if it was stored
// for the same term.
func (s *Store) Get(ctx context.Context, id core.CollectionID, index int, term string) (Entry, bool, error) {
	var e Entry
	err := s.conn.QueryRowContext(ctx,
		`SELECT term, sentence_source, sentence_target, sentence_url, media_path, notes
		FROM enrichment WHERE level = ? AND kind = ? AND idx = ?`,
		string(id.Level), string(id.Kind), index,
	).Scan(&e.Term, &e.SentenceSource, &e.SentenceTarget, &e.SentenceURL, &e.MediaPath, &e.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get checkpoint %s #%d: %w", id, index, err)
	}
	if e.Term != term {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Put stores or replaces the entry for the record at index.
func (s *Store) Put(ctx context.Context, id core.CollectionID, index int, e Entry) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO enrichment (level, kind, idx, term, sentence_source, sentence_target, sentence_url, media_path, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (level, kind, idx) DO UPDATE SET
			term = excluded.term,
			sentence_source = excluded.sentence_source,
			sentence_target = excluded.sentence_target,
			sentence_url = excluded.sentence_url,
			media_path = excluded.media_path,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP`,
		string(id.Level), string(id.Kind), index,
		e.Term, e.SentenceSource, e.SentenceTarget, e.SentenceURL, e.MediaPath, e.Notes,
	)
	if err != nil {
		return fmt.Errorf("put checkpoint %s #%d: %w", id, index, err)
	}
	return nil
}

// Count returns the number of entries stored for a collection.
func (s *Store) Count(ctx context.Context, id core.CollectionID) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrichment WHERE level = ? AND kind = ?`,
		string(id.Level), string(id.Kind),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count checkpoint %s: %w", id, err)
	}
	return n, nil
}

// Reset removes every entry of a collection.
func (s *Store) Reset(ctx context.Context, id core.CollectionID) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM enrichment WHERE level = ? AND kind = ?`,
		string(id.Level), string(id.Kind),
	)
	if err != nil {
		return fmt.Errorf("reset checkpoint %s: %w", id, err)
	}
	return nil
}
