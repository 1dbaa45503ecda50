// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the mecfs-explorer pipeline.
// Implements: ingestion data model (Work, Paper, PaperTag, Condition);
//
//
//	pipeline configuration (IngestConfig, StoreConfig, QuerySpec).
package types

import "fmt"

// Condition is the categorical label assigned to every work fetched by a
// query. It is never derived from paper content.
type Condition string

const (
	ConditionMECFS     Condition = "ME/CFS"
	ConditionLongCOVID Condition = "Long COVID"
)

// Conditions lists the closed set of labels in display order.
var Conditions = []Condition{ConditionMECFS, ConditionLongCOVID}

// Valid reports whether c is one of the known condition labels.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCondition returns the Condition matching s, or an error listing the
// accepted labels.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown condition %q: want one of %v", s, Conditions)
	}
	return c, nil
}

// Paper is the persisted projection of a Work. Nullable columns are pointers
// so a missing value round-trips as NULL rather than a zero value.
type Paper struct {
	// ID is the OpenAlex work URI and the primary key.
	ID string `json:"id" yaml:"id"`

	// Title is the work title, or "" when the source had none.
	Title string `json:"title" yaml:"title"`

	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	DOI *string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// WorkType is the OpenAlex work type (e.g. "article", "review").
	WorkType *string `json:"work_type,omitempty" yaml:"work_type,omitempty"`

	// Journal is the display name of the primary location's source.
	Journal *string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// URL is the canonical link to the work; currently identical to ID.
	URL string `json:"url" yaml:"url"`

	CitedByCount *int `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`

	// Abstract is the reconstructed plain-text abstract, nil when the work
	// carried neither representation.
	Abstract *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	Condition Condition `json:"condition" yaml:"condition"`

	// Tags holds the mechanism tags on read paths (stats, export). The
	// writer derives tags itself and ignores this field.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// PaperTag is one (paper, mechanism tag) row.
type PaperTag struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`
	Tag     string `json:"tag" yaml:"tag"`
}
