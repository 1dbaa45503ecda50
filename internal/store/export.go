// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// ExportFormat selects the serialization written by Export.
type ExportFormat string

const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
)

// ExportDocument is the top-level shape of an export file.
type ExportDocument struct {
	Total  int           `json:"total" yaml:"total"`
	Papers []types.Paper `json:"papers" yaml:"papers"`
}

// Export writes the papers matching f, with their tags, to w.
func (s *Store) Export(ctx context.Context, w io.Writer, f Filter, format ExportFormat) error {
	papers, err := s.Papers(ctx, f)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if papers == nil {
		papers = []types.Paper{}
	}
	doc := ExportDocument{Total: len(papers), Papers: papers}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
