// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tagging assigns mechanism tags to paper text using a fixed keyword
// taxonomy.
package tagging

import "strings"

// Rule maps one mechanism tag to the needles that trigger it. Needles are
// lower-case and matched as plain substrings, so "gli" also hits "glial"
// and "glia-derived".
type Rule struct {
	Tag     string
	Needles []string
}

// Taxonomy is an ordered rule set. Classification output follows rule order.
type Taxonomy []Rule

// defaultRules is the mechanism taxonomy. Read-only: DefaultTaxonomy hands
// out deep copies.
var defaultRules = [...]Rule{
	{"mitochondrial dysfunction", []string{"mitochond", "oxidative phosphorylation", "electron transport chain", "atp", "tca cycle"}},
	{"immune dysregulation", []string{"cytokine", "interferon", "t cell", "b cell", "autoantibod", "inflamm"}},
	{"endothelial / microclot", []string{"endothel", "microclot", "fibrin", "platelet", "amyloid fibrin"}},
	{"viral persistence", []string{"persistent", "reservoir", "viral rna", "antigen", "reactivation", "herpesvirus", "ebv", "cmv"}},
	{"autonomic / pots", []string{"dysautonomia", "p o t s", "postural tachycardia", "orthostatic", "autonomic"}},
	{"metabolism", []string{"metabol", "lactate", "glycolysis", "fatty acid oxidation"}},
	{"neuroinflammation", []string{"microglia", "neuroinflamm", "brain fog", "gli", "cns"}},
}

// DefaultTaxonomy returns a copy of the built-in mechanism taxonomy.
func DefaultTaxonomy() Taxonomy {
	t := make(Taxonomy, len(defaultRules))
	for i, r := range defaultRules {
		t[i] = Rule{Tag: r.Tag, Needles: append([]string(nil), r.Needles...)}
	}
	return t
}

// Tags returns the tag names in rule order.
func (t Taxonomy) Tags() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Tag
	}
	return out
}

// Classify returns every tag with at least one needle occurring in text,
// ignoring case. The result is never nil.
func (t Taxonomy) Classify(text string) []string {
	tags := []string{}
	if text == "" {
		return tags
	}
	lower := strings.ToLower(text)
	for _, r := range t {
		for _, n := range r.Needles {
			if strings.Contains(lower, strings.ToLower(n)) {
				tags = append(tags, r.Tag)
				break
			}
		}
	}
	return tags
}

// CombinedText joins a title and abstract into the blob the classifier sees.
func CombinedText(title, abstract string) string {
	return title + "\n\n" + abstract
}
