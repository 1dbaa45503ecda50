// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdiddy/mecfs-explorer/internal/abstract"
	"github.com/pdiddy/mecfs-explorer/internal/tagging"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// ErrMissingID is returned for a work without an identifier.
var ErrMissingID = errors.New("work has no identifier")

const upsertPaperSQL = `INSERT INTO papers (id, title, year, doi, work_type, journal, url, cited_by_count, abstract, condition)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		year = excluded.year,
		doi = excluded.doi,
		work_type = excluded.work_type,
		journal = excluded.journal,
		url = excluded.url,
		cited_by_count = excluded.cited_by_count,
		abstract = excluded.abstract,
		condition = excluded.condition`

// Tx is a write batch. Nothing it writes is visible to other connections
// until Commit.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// Begin opens a write batch.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: s.dialect}, nil
}

// Commit makes the batch durable.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the batch. Calling it after Commit is harmless.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// PaperFromWork projects a raw work onto the persisted paper columns.
func PaperFromWork(w types.Work) (types.Paper, error) {
	if w.ID == "" {
		return types.Paper{}, ErrMissingID
	}
	p := types.Paper{
		ID:           w.ID,
		Title:        w.TitleText(),
		Year:         w.PublicationYear,
		DOI:          w.DOI,
		WorkType:     w.Type,
		Journal:      w.JournalName(),
		URL:          w.ID,
		CitedByCount: w.CitedByCount,
		Condition:    w.Condition,
	}
	if text, ok := abstract.FromWork(w); ok {
		p.Abstract = &text
	}
	return p, nil
}

// TagsForPaper classifies a paper's title and abstract.
func TagsForPaper(p types.Paper, tax tagging.Taxonomy) []string {
	abs := ""
	if p.Abstract != nil {
		abs = *p.Abstract
	}
	return tax.Classify(tagging.CombinedText(p.Title, abs))
}

// UpsertWork inserts or fully replaces the paper for w, then replaces its tag
// rows with a fresh classification. It returns the tags written.
func (t *Tx) UpsertWork(ctx context.Context, w types.Work, tax tagging.Taxonomy) ([]string, error) {
	p, err := PaperFromWork(w)
	if err != nil {
		return nil, err
	}
	tags := TagsForPaper(p, tax)

	_, err = t.tx.ExecContext(ctx, rebind(t.dialect, upsertPaperSQL),
		p.ID, p.Title, nullInt(p.Year), nullString(p.DOI), nullString(p.WorkType),
		nullString(p.Journal), p.URL, nullInt(p.CitedByCount), nullString(p.Abstract),
		string(p.Condition),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}

	if _, err := t.tx.ExecContext(ctx,
		rebind(t.dialect, `DELETE FROM paper_tags WHERE paper_id = ?`), p.ID,
	); err != nil {
		return nil, fmt.Errorf("clearing tags for %s: %w", p.ID, err)
	}

	insertTag := rebind(t.dialect, `INSERT INTO paper_tags (paper_id, tag) VALUES (?, ?)`)
	for _, tag := range tags {
		if _, err := t.tx.ExecContext(ctx, insertTag, p.ID, tag); err != nil {
			return nil, fmt.Errorf("inserting tag %q for %s: %w", tag, p.ID, err)
		}
	}
	return tags, nil
}

// UpsertWork writes a single work in its own transaction.
func (s *Store) UpsertWork(ctx context.Context, w types.Work, tax tagging.Taxonomy) ([]string, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tags, err := tx.UpsertWork(ctx, w, tax)
	if err != nil {
		return nil, err
	}
	return tags, tx.Commit()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
