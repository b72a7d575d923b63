package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cbroglie/mustache"
	gh "github.com/google/go-github/v80/github"

	"github.com/clusterhack/classbot/internal/config"
)

const updatedTitlePrefix = "[Updated] "

const multiIssueWarning = "> **Warning**\n" +
	"> Other open classbot issues found! Updating only the latest, but please resolve others too.\n\n"

// fileOrUpdateIssue creates the labeled violation issue, or updates the
// most-recently-updated open one if any exists. Updates prepend a
// timestamped section above the previous body; history is never
// discarded, and the "[Updated]" title prefix is applied at most once.
func (s *watchdogService) fileOrUpdateIssue(ctx context.Context, icfg config.IssueConfig, owner, repo, description string) (*gh.Issue, error) {
	labels := append([]string{icfg.Label}, icfg.ExtraLabels...)
	body, err := mustache.Render(icfg.Template, map[string]any{
		"owner":       owner,
		"repo":        repo,
		"title":       icfg.Title,
		"assignees":   icfg.Assignees,
		"labels":      labels,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering issue template: %w", err)
	}

	// Fetch at most 2: we only need to know "one" vs "more than one".
	openIssues, err := s.gh.ListOpenIssuesByLabel(ctx, owner, repo, icfg.Label, 2)
	if err != nil {
		return nil, fmt.Errorf("listing open issues: %w", err)
	}

	timestamp := s.now().Format(time.RFC1123)
	if len(openIssues) == 0 {
		created := fmt.Sprintf("***Created on %s:***\n\n%s", timestamp, body)
		return s.gh.CreateIssue(ctx, owner, repo, icfg.Title, created, icfg.Assignees, labels)
	}

	issue := openIssues[0]
	warning := ""
	if len(openIssues) > 1 {
		warning = multiIssueWarning
	}
	title := issue.GetTitle()
	if !strings.HasPrefix(title, updatedTitlePrefix) {
		title = updatedTitlePrefix + title
	}
	// Updates accumulate in reverse-chronological order.
	updatedBody := fmt.Sprintf("***Updated on %s:***\n\n%s%s\n---\n\n%s",
		timestamp, warning, body, issue.GetBody())
	return s.gh.UpdateIssue(ctx, owner, repo, issue.GetNumber(), title, updatedBody)
}
