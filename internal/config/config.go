// Package config carries classbot's configuration: process environment
// (Env) and per-repository bot behavior (Config), the latter assembled by
// layering repo-provided YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/clusterhack/classbot/internal/manifest"
)

// ErrConfig marks configuration errors. These are fatal and reported
// before any event is processed.
var ErrConfig = errors.New("invalid classbot config")

type Config struct {
	Classroom  ClassroomConfig  `yaml:"classroom"`
	Submission SubmissionConfig `yaml:"submission"`

	// Component sections. A component is disabled by omitting its
	// section or by setting its disabled flag.
	Watchdog  *WatchdogConfig  `yaml:"watchdog"`
	Autograde *AutogradeConfig `yaml:"autograde"`
	Badges    *BadgesConfig    `yaml:"badges"`
	Gradelog  *GradeLogConfig  `yaml:"gradelog"`
	Workflows *WorkflowsConfig `yaml:"workflows"`
}

type ClassroomConfig struct {
	// Usernames of classroom staff (instructor, TAs).
	Staff []string `yaml:"staff"`
}

type SubmissionConfig struct {
	// Branch on which submissions are expected.
	Branch string `yaml:"branch"`
	// Allowlist of file glob patterns submission commits may touch.
	Manifest manifest.Manifest `yaml:"manifest"`
	// Additional usernames allowed as commit authors/committers. The repo
	// owner and push collaborators are always allowed; staff must be
	// listed explicitly.
	AuthorsAllow   []string `yaml:"authors_allow"`
	CommitersAllow []string `yaml:"commiters_allow"`
}

// ComponentConfig is embedded by every component section. Flags are
// pointers so layered overrides can distinguish "absent" (keep the lower
// layer) from an explicit false (override it).
type ComponentConfig struct {
	Disabled *bool `yaml:"disabled"`
}

type WatchdogConfig struct {
	ComponentConfig  `yaml:",inline"`
	ValidateFiles    *bool       `yaml:"validate_files"`
	ValidateAuthor   *bool       `yaml:"validate_author"`
	TimestampComment *bool       `yaml:"timestamp_comment"`
	Issue            IssueConfig `yaml:"issue"`
}

type IssueConfig struct {
	// Label unique to the bot; used to find an already-existing issue.
	Label string `yaml:"label"`
	Title string `yaml:"title"`
	// Mustache template for the issue body. Template variables:
	// description, assignees, labels, owner, repo, title.
	Template    string   `yaml:"template"`
	Assignees   []string `yaml:"assignees"`
	ExtraLabels []string `yaml:"extra_labels"`
}

type AutogradeConfig struct {
	ComponentConfig `yaml:",inline"`
	Skeleton        SkeletonConfig `yaml:"skeleton"`
}

type SkeletonConfig struct {
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
}

type BadgesConfig struct {
	ComponentConfig `yaml:",inline"`
	Branch          string `yaml:"branch"`
	Path            string `yaml:"path"`
}

type GradeLogConfig struct {
	ComponentConfig `yaml:",inline"`
	JobName         string `yaml:"job_name"`
	ArtifactName    string `yaml:"artifact_name"`
}

type WorkflowsConfig struct {
	ComponentConfig `yaml:",inline"`
	// Paths relative to the repo root (not to .github).
	SourcePath      string `yaml:"source_path"`
	DestinationPath string `yaml:"destination_path"`
	// Optional regexps identifying the Classroom bot's setup push.
	PusherFilter  string `yaml:"pusher_filter"`
	MessageFilter string `yaml:"message_filter"`
}

// flagSet reads an optional boolean flag; an absent flag is false.
func flagSet(b *bool) bool { return b != nil && *b }

// Enabled reports whether the component section is present and not
// disabled.
func (c *WatchdogConfig) Enabled() bool  { return c != nil && !flagSet(c.Disabled) }
func (c *AutogradeConfig) Enabled() bool { return c != nil && !flagSet(c.Disabled) }
func (c *BadgesConfig) Enabled() bool    { return c != nil && !flagSet(c.Disabled) }
func (c *GradeLogConfig) Enabled() bool  { return c != nil && !flagSet(c.Disabled) }
func (c *WorkflowsConfig) Enabled() bool { return c != nil && !flagSet(c.Disabled) }

func (c *WatchdogConfig) ValidatesFiles() bool    { return flagSet(c.ValidateFiles) }
func (c *WatchdogConfig) ValidatesAuthor() bool   { return flagSet(c.ValidateAuthor) }
func (c *WatchdogConfig) TimestampsCommits() bool { return flagSet(c.TimestampComment) }

// Default is the built-in base configuration; repo YAML is layered on top.
func Default() Config {
	return Config{
		Classroom: ClassroomConfig{Staff: []string{}},
		Submission: SubmissionConfig{
			Branch: "main",
			Manifest: manifest.FromBranchMap(map[string]manifest.Patterns{
				"main":   {"!/.github", "!/test", "**/*"},
				"status": {"/badges"},
			}),
			AuthorsAllow:   []string{"github-classroom[bot]", "clusterhack-classbot[bot]"},
			CommitersAllow: []string{"web-flow", "clusterhack-classbot[bot]"},
		},
		Watchdog: &WatchdogConfig{
			Issue: IssueConfig{
				Label:    "classbot",
				Title:    "Potential problems in commit(s)",
				Template: "{{{description}}}",
			},
		},
		Gradelog: &GradeLogConfig{
			JobName:      "Autograding",
			ArtifactName: "autograde",
		},
		Badges: &BadgesConfig{
			Branch: "status",
			Path:   "badges",
		},
		Workflows: &WorkflowsConfig{
			SourcePath:      ".github/classroom/autograde-action.yml",
			DestinationPath: ".github/workflows/classroom.yml",
			PusherFilter:    `^github-classroom\[bot\]$`,
			MessageFilter:   `^(Setting up GitHub Classroom|add deadline$)`,
		},
	}
}

// Validate rejects configurations that would make event processing
// undefined: blank watchdog issue templates, manifests that do not
// compile, bad workflow filters. Called once per config load, before
// dispatch.
func (c *Config) Validate() error {
	if c.Watchdog.Enabled() {
		if strings.TrimSpace(c.Watchdog.Issue.Template) == "" {
			return fmt.Errorf("%w: watchdog issue template missing or blank", ErrConfig)
		}
		if c.Watchdog.Issue.Label == "" {
			return fmt.Errorf("%w: watchdog issue label missing", ErrConfig)
		}
	}
	for _, patterns := range c.Submission.Manifest.PatternSets() {
		if _, err := manifest.Compile(patterns); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	if c.Gradelog.Enabled() {
		if c.Gradelog.JobName == "" || c.Gradelog.ArtifactName == "" {
			return fmt.Errorf("%w: gradelog requires job_name and artifact_name", ErrConfig)
		}
	}
	if c.Workflows.Enabled() {
		for _, expr := range []string{c.Workflows.PusherFilter, c.Workflows.MessageFilter} {
			if expr == "" {
				continue
			}
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("%w: workflows filter %q: %v", ErrConfig, expr, err)
			}
		}
		if c.Workflows.SourcePath == "" || c.Workflows.DestinationPath == "" {
			return fmt.Errorf("%w: workflows requires source_path and destination_path", ErrConfig)
		}
	}
	return nil
}

func fmtBotEmail(id int64, username string) string {
	return fmt.Sprintf("%d+%s@users.noreply.github.com", id, username)
}
