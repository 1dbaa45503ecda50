// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers and their mechanism tags in a relational
// database. The same SQL runs on SQLite and Postgres; the dialect is picked
// from the database URL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a database/sql driver the store knows how to talk to.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// ErrMissingDatabaseURL is returned by Open for an empty URL.
var ErrMissingDatabaseURL = errors.New("database URL missing")

// Store wraps the database connection shared by a run.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// ParseURL maps a database URL to a driver and DSN.
//
//	postgres://... or postgresql://...  → pgx, postgres:// rewritten to postgresql://
//	sqlite://path, file:path, or a path → sqlite3 with foreign keys enforced
func ParseURL(databaseURL string) (Dialect, string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", ErrMissingDatabaseURL
	case strings.HasPrefix(u, "postgres://"):
		return DialectPostgres, "postgresql://" + strings.TrimPrefix(u, "postgres://"), nil
	case strings.HasPrefix(u, "postgresql://"):
		return DialectPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		u = strings.TrimPrefix(u, "sqlite://")
	case strings.Contains(u, "://"):
		return "", "", fmt.Errorf("unsupported database URL scheme in %q", redactURL(u))
	}
	if u == "" {
		return "", "", fmt.Errorf("sqlite URL has no path")
	}
	return DialectSQLite, sqliteDSN(u), nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	return path + sep + "_foreign_keys=on"
}

// redactURL hides the password of a URL-shaped DSN for error messages.
func redactURL(u string) string {
	at := strings.LastIndex(u, "@")
	scheme := strings.Index(u, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return u
	}
	userinfo := u[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":REDACTED"
	}
	return u[:scheme+3] + userinfo + u[at:]
}

// Open connects to databaseURL. It does not create the schema; call
// EnsureSchema before writing.
func Open(databaseURL string) (*Store, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One statement at a time, in program order.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// OpenSQLiteFile opens (creating if needed) a SQLite database at path.
func OpenSQLiteFile(path string) (*Store, error) {
	return Open("sqlite://" + filepath.Clean(path))
}

// Dialect reports which driver backs the store.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			year INTEGER,
			doi TEXT,
			work_type TEXT,
			journal TEXT,
			url TEXT,
			cited_by_count INTEGER,
			abstract TEXT,
			condition TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS paper_tags (
			paper_id TEXT REFERENCES papers(id) ON DELETE CASCADE,
			tag TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_condition ON papers(condition)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_tag ON paper_tags(tag)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_paper_id ON paper_tags(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres. Queries in this package
// never contain a literal question mark.
func rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
