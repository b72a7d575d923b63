// Package manifest resolves submission file manifests into glob pattern
// lists and compiles them into allow filters.
//
// A manifest is the allowlist of file paths that submission commits may
// touch. It is either a flat pattern list or a map from branch name to
// pattern list, with "*" as the fallback branch key. Patterns given as a
// single string are newline-delimited, with "#" comments and blank lines
// dropped.
package manifest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Patterns is a glob pattern list. In YAML it may be a sequence of
// strings or a single (typically multiline) string.
type Patterns []string

func (p *Patterns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*p = splitPatternLines(s)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("manifest patterns must be a string or a list, got %s", nodeKind(node))
	}
}

func splitPatternLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Manifest is either flat Patterns or a branch-keyed map of Patterns.
type Manifest struct {
	flat     Patterns
	byBranch map[string]Patterns
}

func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		return node.Decode(&m.flat)
	case yaml.MappingNode:
		return node.Decode(&m.byBranch)
	default:
		return fmt.Errorf("manifest must be a string, list, or branch map, got %s", nodeKind(node))
	}
}

// FromPatterns builds a flat manifest; used for defaults and tests.
func FromPatterns(patterns ...string) Manifest {
	return Manifest{flat: patterns}
}

// FromBranchMap builds a branch-keyed manifest.
func FromBranchMap(byBranch map[string]Patterns) Manifest {
	return Manifest{byBranch: byBranch}
}

// IsZero reports whether the manifest carries no configuration at all,
// so config merging can tell "absent" apart from "explicitly empty".
func (m Manifest) IsZero() bool {
	return m.flat == nil && m.byBranch == nil
}

// Resolve returns the concrete pattern list for branch. An empty branch
// selects the "*" fallback. A branch-keyed manifest with no entry for the
// branch (and no fallback) resolves to an empty list: nothing is allowed.
func (m Manifest) Resolve(branch string) []string {
	if m.byBranch == nil {
		return m.flat
	}
	if branch == "" {
		branch = "*"
	}
	if p, ok := m.byBranch[branch]; ok {
		return p
	}
	return m.byBranch["*"]
}

// PatternSets returns every concrete pattern list the manifest can
// resolve to, so all of them can be compile-checked up front.
func (m Manifest) PatternSets() [][]string {
	if m.byBranch == nil {
		return [][]string{m.flat}
	}
	sets := make([][]string, 0, len(m.byBranch))
	for _, p := range m.byBranch {
		sets = append(sets, p)
	}
	return sets
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
