package config

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/internal/identity"
)

const configDir = ".github"

// Loader assembles the effective bot config for one repository: built-in
// defaults, then the owner-wide classbot.yml, then an assignment-specific
// classbot-<assignment>.yml. Each file is looked up in the event repo
// first and in the owner's ".github" repo as a fallback.
type Loader struct {
	gh github.Client
}

func NewLoader(gh github.Client) *Loader {
	return &Loader{gh: gh}
}

func (l *Loader) Load(ctx context.Context, owner, repo string) (*Config, error) {
	cfg := Default()

	cfg, err := l.applyOverrideFile(ctx, cfg, owner, repo, "classbot.yml")
	if err != nil {
		return nil, err
	}

	if parts, ok := identity.ParseAssignmentRepo(repo, ""); ok {
		name := fmt.Sprintf("classbot-%s.yml", parts.Assignment)
		cfg, err = l.applyOverrideFile(ctx, cfg, owner, repo, name)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) applyOverrideFile(ctx context.Context, base Config, owner, repo, name string) (Config, error) {
	raw, err := l.fetch(ctx, owner, repo, name)
	if err != nil {
		return Config{}, err
	}
	if raw == "" {
		return base, nil
	}

	var override Config
	if err := yaml.Unmarshal([]byte(raw), &override); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, name, err)
	}
	return base.Overlay(override)
}

// fetch returns the file contents, or "" when the file exists nowhere.
func (l *Loader) fetch(ctx context.Context, owner, repo, name string) (string, error) {
	content, _, err := l.gh.GetFileContent(ctx, owner, repo, configDir+"/"+name, "")
	if err == nil {
		return content, nil
	}
	if !github.IsNotFound(err) {
		return "", fmt.Errorf("fetching %s from %s/%s: %w", name, owner, repo, err)
	}

	// Owner-level fallback: the conventional ".github" repo.
	content, _, err = l.gh.GetFileContent(ctx, owner, configDir, configDir+"/"+name, "")
	if err == nil {
		return content, nil
	}
	if !github.IsNotFound(err) {
		return "", fmt.Errorf("fetching %s from %s/%s: %w", name, owner, configDir, err)
	}
	return "", nil
}
