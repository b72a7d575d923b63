package config

import (
	"fmt"
	"reflect"
	"slices"

	"dario.cat/mergo"

	"github.com/clusterhack/classbot/internal/manifest"
)

// Overlay returns a new Config with override's set fields layered over c.
// Neither input is mutated. Scalars and slices present in the override
// replace the base values; absent fields keep the base. A manifest in the
// override replaces the base manifest wholesale rather than merging
// branch maps. Boolean flags are pointers, so an explicit false in the
// override does override a true below it.
//
// Overrides come from student-writable repos: they may tune components
// the deployment enabled, but a section absent from the base stays
// absent no matter what the override carries.
func (c Config) Overlay(override Config) (Config, error) {
	result := c.clone()
	err := mergo.Merge(&result, override,
		mergo.WithOverride,
		mergo.WithTransformers(overlayTransformer{}))
	if err != nil {
		return Config{}, fmt.Errorf("merging config override: %w", err)
	}

	if c.Watchdog == nil {
		result.Watchdog = nil
	}
	if c.Autograde == nil {
		result.Autograde = nil
	}
	if c.Badges == nil {
		result.Badges = nil
	}
	if c.Gradelog == nil {
		result.Gradelog = nil
	}
	if c.Workflows == nil {
		result.Workflows = nil
	}
	return result, nil
}

// overlayTransformer fixes mergo's handling of the two field kinds whose
// zero value is meaningful here: manifest.Manifest is replaced atomically
// instead of having its internals merged, and a non-nil *bool always
// replaces the base flag, even when it points at false.
type overlayTransformer struct{}

func (overlayTransformer) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	switch typ {
	case reflect.TypeOf(manifest.Manifest{}):
		return func(dst, src reflect.Value) error {
			if !src.Interface().(manifest.Manifest).IsZero() {
				dst.Set(src)
			}
			return nil
		}
	case reflect.TypeOf((*bool)(nil)):
		return func(dst, src reflect.Value) error {
			if !src.IsNil() {
				dst.Set(src)
			}
			return nil
		}
	}
	return nil
}

// clone deep-copies the config so merges cannot write through shared
// component pointers into the base.
func (c Config) clone() Config {
	out := c
	out.Classroom.Staff = slices.Clone(c.Classroom.Staff)
	out.Submission.AuthorsAllow = slices.Clone(c.Submission.AuthorsAllow)
	out.Submission.CommitersAllow = slices.Clone(c.Submission.CommitersAllow)
	if c.Watchdog != nil {
		w := *c.Watchdog
		w.Disabled = cloneFlag(c.Watchdog.Disabled)
		w.ValidateFiles = cloneFlag(c.Watchdog.ValidateFiles)
		w.ValidateAuthor = cloneFlag(c.Watchdog.ValidateAuthor)
		w.TimestampComment = cloneFlag(c.Watchdog.TimestampComment)
		w.Issue.Assignees = slices.Clone(c.Watchdog.Issue.Assignees)
		w.Issue.ExtraLabels = slices.Clone(c.Watchdog.Issue.ExtraLabels)
		out.Watchdog = &w
	}
	if c.Autograde != nil {
		a := *c.Autograde
		a.Disabled = cloneFlag(c.Autograde.Disabled)
		out.Autograde = &a
	}
	if c.Badges != nil {
		b := *c.Badges
		b.Disabled = cloneFlag(c.Badges.Disabled)
		out.Badges = &b
	}
	if c.Gradelog != nil {
		g := *c.Gradelog
		g.Disabled = cloneFlag(c.Gradelog.Disabled)
		out.Gradelog = &g
	}
	if c.Workflows != nil {
		w := *c.Workflows
		w.Disabled = cloneFlag(c.Workflows.Disabled)
		out.Workflows = &w
	}
	return out
}

func cloneFlag(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
