// Package sqldb reads and writes the embedding data file: a SQLite database
// holding precomputed distances, ordered id lists (set members and clue
// neighbors) and the clue vocabulary. The data is meant to be loaded once at
// startup, after which lookups go through the in-memory embedding types.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/bcspragu/PictureNames/embedding"

	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("sqldb: database is closed")

// List kinds stored in the lists table.
const (
	Members   = "members"
	Neighbors = "neighbors"
)

const schema = `
CREATE TABLE IF NOT EXISTS distances (
	a TEXT NOT NULL,
	b TEXT NOT NULL,
	distance REAL NOT NULL,
	PRIMARY KEY (a, b)
);
CREATE TABLE IF NOT EXISTS lists (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	position INTEGER NOT NULL,
	item TEXT NOT NULL,
	PRIMARY KEY (kind, id, position)
);
CREATE TABLE IF NOT EXISTS vocabulary (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// DB is a handle to an embedding data file.
// NOTE: Since SQLite doesn't support concurrent writers, we don't actually hold
// the *sql.DB in this struct, we force all callers to get a handle via
// channels.
type DB struct {
	dbChan   chan func(*sql.DB)
	doneChan chan struct{}
	errChan  chan error
}

// New opens (or creates) the data file at the given path.
func New(fn string) (*DB, error) {
	sdb, err := sql.Open("sqlite3", fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %q: %w", fn, err)
	}
	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to create schema in %q: %w", fn, err)
	}

	db := &DB{
		dbChan:   make(chan func(*sql.DB)),
		doneChan: make(chan struct{}),
		errChan:  make(chan error, 1),
	}
	go db.run(sdb)
	return db, nil
}

// run handles all database calls, and ensures that only one thing is happening
// against the database at a time.
func (s *DB) run(sdb *sql.DB) {
	for {
		select {
		case dbFn := <-s.dbChan:
			dbFn(sdb)
		case <-s.doneChan:
			s.errChan <- sdb.Close()
			return
		}
	}
}

// Close closes the underlying database. It must only be called once.
func (s *DB) Close() error {
	close(s.doneChan)
	return <-s.errChan
}

func (s *DB) do(ctx context.Context, fn func(*sql.DB) error) error {
	errC := make(chan error, 1)
	select {
	case s.dbChan <- func(sdb *sql.DB) { errC <- fn(sdb) }:
	case <-s.doneChan:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-errC
}

func (s *DB) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	return s.do(ctx, func(sdb *sql.DB) error {
		tx, err := sdb.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// SetVersion records the version of the data in the file.
func (s *DB) SetVersion(ctx context.Context, version string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO metadata (key, value) VALUES ('version', ?)`, version)
		return err
	})
}

// Version returns the version of the data in the file, or an empty string if
// none was recorded.
func (s *DB) Version(ctx context.Context) (string, error) {
	var v string
	err := s.do(ctx, func(sdb *sql.DB) error {
		err := sdb.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'version'`).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to load version: %w", err)
	}
	return v, nil
}

// WriteDistances stores the given distances, replacing any existing distance
// between the same pair.
func (s *DB) WriteDistances(ctx context.Context, entries []embedding.Entry) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO distances (a, b, distance) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			a, b := e.A, e.B
			if b < a {
				a, b = b, a
			}
			if _, err := stmt.ExecContext(ctx, a, b, e.Distance); err != nil {
				return fmt.Errorf("failed to insert distance (%q, %q): %w", a, b, err)
			}
		}
		return nil
	})
}

// WriteLists replaces every list of the given kind.
func (s *DB) WriteLists(ctx context.Context, kind string, lists map[string][]string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE kind = ?`, kind); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO lists (kind, id, position, item) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for id, items := range lists {
			for i, item := range items {
				if _, err := stmt.ExecContext(ctx, kind, id, i, item); err != nil {
					return fmt.Errorf("failed to insert %s entry for %q: %w", kind, id, err)
				}
			}
		}
		return nil
	})
}

// WriteVocabulary replaces the clue vocabulary.
func (s *DB) WriteVocabulary(ctx context.Context, words []string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vocabulary`); err != nil {
			return fmt.Errorf("failed to clear vocabulary: %w", err)
		}
		for i, w := range words {
			if _, err := tx.ExecContext(ctx, `INSERT INTO vocabulary (position, id) VALUES (?, ?)`, i, w); err != nil {
				return fmt.Errorf("failed to insert vocabulary word %q: %w", w, err)
			}
		}
		return nil
	})
}

// LoadTable reads every distance into an in-memory table.
func (s *DB) LoadTable(ctx context.Context) (*embedding.Table, error) {
	var entries []embedding.Entry
	err := s.do(ctx, func(sdb *sql.DB) error {
		rows, err := sdb.QueryContext(ctx, `SELECT a, b, distance FROM distances`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e embedding.Entry
			if err := rows.Scan(&e.A, &e.B, &e.Distance); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load distances: %w", err)
	}

	tbl, err := embedding.NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("bad distance table: %w", err)
	}
	log.Printf("Loaded %d distances", tbl.Len())
	return tbl, nil
}

// LoadIndex reads every list of the given kind.
func (s *DB) LoadIndex(ctx context.Context, kind string) (*embedding.Index, error) {
	lists := make(map[string][]string)
	err := s.do(ctx, func(sdb *sql.DB) error {
		rows, err := sdb.QueryContext(ctx, `SELECT id, item FROM lists WHERE kind = ? ORDER BY id, position`, kind)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id, item string
			if err := rows.Scan(&id, &item); err != nil {
				return err
			}
			lists[id] = append(lists[id], item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	log.Printf("Loaded %s for %d items", kind, len(lists))
	return embedding.NewIndex(lists), nil
}

// LoadVocabulary returns the clue vocabulary, in the order it was written.
func (s *DB) LoadVocabulary(ctx context.Context) ([]string, error) {
	var words []string
	err := s.do(ctx, func(sdb *sql.DB) error {
		rows, err := sdb.QueryContext(ctx, `SELECT id FROM vocabulary ORDER BY position`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var w string
			if err := rows.Scan(&w); err != nil {
				return err
			}
			words = append(words, w)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return words, nil
}
