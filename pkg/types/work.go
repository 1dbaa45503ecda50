// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Work is a raw record from the OpenAlex works endpoint. Only the fields the
// pipeline persists are decoded; every optional field is a pointer because
// OpenAlex returns explicit nulls.
type Work struct {
	ID              string  `json:"id"`
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	DOI             *string `json:"doi"`
	Type            *string `json:"type"`
	CitedByCount    *int    `json:"cited_by_count"`

	PrimaryLocation *Location `json:"primary_location"`

	// Abstract is a ready plain-text abstract. OpenAlex itself only ships
	// the inverted index, but mirrored datasets sometimes carry both.
	Abstract *string `json:"abstract"`

	// AbstractInvertedIndex maps each distinct word to the 0-based
	// positions where it occurs in the original abstract.
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`

	// Condition is stamped by the fetcher from the query that returned the
	// work. It is not part of the API payload.
	Condition Condition `json:"-"`
}

// Location is a place where a work is hosted.
type Location struct {
	Source *Source `json:"source"`
}

// Source is the journal or repository behind a Location.
type Source struct {
	DisplayName *string `json:"display_name"`
}

// JournalName returns the display name of the primary location's source, or
// nil when any link in the chain is missing.
func (w Work) JournalName() *string {
	if w.PrimaryLocation == nil || w.PrimaryLocation.Source == nil {
		return nil
	}
	return w.PrimaryLocation.Source.DisplayName
}

// TitleText returns the title, or "" when the work has none.
func (w Work) TitleText() string {
	if w.Title == nil {
		return ""
	}
	return *w.Title
}
