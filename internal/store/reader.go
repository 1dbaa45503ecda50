// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// ErrNotFound is returned when a paper id has no row.
var ErrNotFound = errors.New("paper not found")

// LabelCount is a label with the number of rows carrying it.
type LabelCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Counts summarizes the store contents for the dashboard.
type Counts struct {
	Papers      int          `json:"papers" yaml:"papers"`
	Tags        int          `json:"tags" yaml:"tags"`
	ByCondition []LabelCount `json:"by_condition" yaml:"by_condition"`
	ByTag       []LabelCount `json:"by_tag" yaml:"by_tag"`
}

// Filter narrows Papers. Zero values match everything.
type Filter struct {
	Condition types.Condition
	Tag       string
	Limit     int
}

const selectPaperFields = `id, title, year, doi, work_type, journal, url, cited_by_count, abstract, condition`

// Counts returns row totals plus breakdowns by condition and by tag.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&c.Papers); err != nil {
		return c, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM paper_tags`).Scan(&c.Tags); err != nil {
		return c, fmt.Errorf("counting tags: %w", err)
	}

	var err error
	c.ByCondition, err = s.labelCounts(ctx,
		`SELECT COALESCE(condition, ''), COUNT(*) FROM papers GROUP BY condition ORDER BY condition`)
	if err != nil {
		return c, fmt.Errorf("counting by condition: %w", err)
	}
	c.ByTag, err = s.labelCounts(ctx,
		`SELECT COALESCE(tag, ''), COUNT(*) FROM paper_tags GROUP BY tag ORDER BY COUNT(*) DESC, tag`)
	if err != nil {
		return c, fmt.Errorf("counting by tag: %w", err)
	}
	return c, nil
}

func (s *Store) labelCounts(ctx context.Context, query string) ([]LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LabelCount{}
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// Paper loads one paper with its tags.
func (s *Store) Paper(ctx context.Context, id string) (*types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		rebind(s.dialect, `SELECT `+selectPaperFields+` FROM papers WHERE id = ?`), id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading paper %s: %w", id, err)
	}
	if p.Tags, err = s.Tags(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Tags returns the tags of a paper in alphabetical order.
func (s *Store) Tags(ctx context.Context, paperID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		rebind(s.dialect, `SELECT tag FROM paper_tags WHERE paper_id = ? ORDER BY tag`), paperID)
	if err != nil {
		return nil, fmt.Errorf("reading tags for %s: %w", paperID, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Papers lists papers matching f, ordered by id, each with its tags.
func (s *Store) Papers(ctx context.Context, f Filter) ([]types.Paper, error) {
	var (
		where []string
		args  []any
	)
	if f.Condition != "" {
		where = append(where, "condition = ?")
		args = append(args, string(f.Condition))
	}
	if f.Tag != "" {
		where = append(where, "id IN (SELECT paper_id FROM paper_tags WHERE tag = ?)")
		args = append(args, f.Tag)
	}

	query := `SELECT ` + selectPaperFields + ` FROM papers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the single connection before the per-paper tag queries.
	rows.Close()

	for i := range papers {
		if papers[i].Tags, err = s.Tags(ctx, papers[i].ID); err != nil {
			return nil, err
		}
	}
	return papers, nil
}

// DeletePaper removes a paper; its tags go with it through the cascade.
func (s *Store) DeletePaper(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, rebind(s.dialect, `DELETE FROM papers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(r rowScanner) (*types.Paper, error) {
	var (
		p                                  types.Paper
		title, doi, workType, journal, url sql.NullString
		abs, condition                     sql.NullString
		year, citedBy                      sql.NullInt64
	)
	if err := r.Scan(&p.ID, &title, &year, &doi, &workType, &journal, &url, &citedBy, &abs, &condition); err != nil {
		return nil, err
	}
	p.Title = title.String
	p.URL = url.String
	p.Condition = types.Condition(condition.String)
	p.Year = intPtr(year)
	p.CitedByCount = intPtr(citedBy)
	p.DOI = strPtr(doi)
	p.WorkType = strPtr(workType)
	p.Journal = strPtr(journal)
	p.Abstract = strPtr(abs)
	return &p, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
