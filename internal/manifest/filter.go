package manifest

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter is a compiled manifest pattern list.
//
// Patterns are evaluated in order and the first match decides. A leading
// "!" marks matching paths as disallowed: an exception carved out of the
// broader allow patterns that follow it (e.g. ["!/.github", "**/*"]
// allows everything except the .github tree). A pattern naming a
// directory covers every path beneath it. Paths matching no pattern are
// outside the manifest.
type Filter struct {
	rules []rule
}

type rule struct {
	negate bool
	// glob matches the path itself, subtree matches descendants of a
	// directory named by the pattern.
	glob    string
	subtree string
	dirOnly bool
}

// Compile builds a Filter from resolved manifest patterns. Malformed glob
// patterns are reported as errors so config validation can reject them
// before any event is processed.
func Compile(patterns []string) (*Filter, error) {
	f := &Filter{rules: make([]rule, 0, len(patterns))}
	for _, pat := range patterns {
		r, err := compileRule(pat)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, r)
	}
	return f, nil
}

func compileRule(pat string) (rule, error) {
	var r rule
	orig := pat
	if strings.HasPrefix(pat, "!") {
		r.negate = true
		pat = pat[1:]
	}
	if strings.HasSuffix(pat, "/") {
		r.dirOnly = true
		pat = strings.TrimSuffix(pat, "/")
	}
	// A slash anywhere but the end anchors the pattern to the repo root;
	// otherwise it matches at any depth (gitignore convention).
	anchored := strings.Contains(pat, "/")
	pat = strings.TrimPrefix(pat, "/")
	if pat == "" {
		return rule{}, fmt.Errorf("manifest pattern %q is empty", orig)
	}
	if !anchored {
		pat = "**/" + pat
	}
	r.glob = pat
	r.subtree = pat + "/**"
	for _, g := range []string{r.glob, r.subtree} {
		if !doublestar.ValidatePattern(g) {
			return rule{}, fmt.Errorf("manifest pattern %q: %w", orig, doublestar.ErrBadPattern)
		}
	}
	return r, nil
}

// Outside reports whether path is not covered by the manifest allow set.
func (f *Filter) Outside(path string) bool {
	path = strings.TrimPrefix(path, "/")
	for _, r := range f.rules {
		if r.matches(path) {
			return r.negate
		}
	}
	return true
}

func (r rule) matches(path string) bool {
	if !r.dirOnly {
		// Pattern errors were rejected at Compile time.
		if ok, _ := doublestar.Match(r.glob, path); ok {
			return true
		}
	}
	ok, _ := doublestar.Match(r.subtree, path)
	return ok
}
