// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// ErrInvalidPlan is wrapped by every plan validation failure.
var ErrInvalidPlan = errors.New("invalid query plan")

// PlanFile is the on-disk form of a query plan.
//
//	queries:
//	  - query: myalgic encephalomyelitis chronic fatigue syndrome
//	    condition: ME/CFS
type PlanFile struct {
	Queries []types.QuerySpec `yaml:"queries"`
}

// DefaultPlan returns the built-in queries, one per condition.
func DefaultPlan() []types.QuerySpec {
	return []types.QuerySpec{
		{
			Query:     "myalgic encephalomyelitis chronic fatigue syndrome",
			Condition: types.ConditionMECFS,
		},
		{
			Query:     "long covid OR post-acute sequelae of sars-cov-2 OR PASC",
			Condition: types.ConditionLongCOVID,
		},
	}
}

// ValidatePlan checks that every entry has a search string and a known
// condition label.
func ValidatePlan(plan []types.QuerySpec) error {
	for i, q := range plan {
		if strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("%w: entry %d has an empty query", ErrInvalidPlan, i)
		}
		if !q.Condition.Valid() {
			return fmt.Errorf("%w: entry %d: unknown condition %q: want one of %v",
				ErrInvalidPlan, i, q.Condition, types.Conditions)
		}
	}
	return nil
}

// ReadPlan loads and validates a plan file. An empty file is an error.
func ReadPlan(path string) ([]types.QuerySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var pf PlanFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	if len(pf.Queries) == 0 {
		return nil, fmt.Errorf("%w: %s lists no queries", ErrInvalidPlan, path)
	}
	if err := ValidatePlan(pf.Queries); err != nil {
		return nil, err
	}
	return pf.Queries, nil
}

// WritePlan saves plan to path as YAML.
func WritePlan(path string, plan []types.QuerySpec) error {
	if err := ValidatePlan(plan); err != nil {
		return err
	}
	data, err := yaml.Marshal(&PlanFile{Queries: plan})
	if err != nil {
		return fmt.Errorf("marshaling plan file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
