package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"
)

func (c *client) ListOpenIssuesByLabel(ctx context.Context, owner, repo, label string, limit int) ([]*gh.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:     "open",
		Labels:    []string{label},
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: limit,
		},
	}
	return withRetry(ctx, func() ([]*gh.Issue, error) {
		issues, _, err := c.github.Issues.ListByRepo(ctx, owner, repo, opts)
		return issues, err
	})
}

func (c *client) CreateIssue(ctx context.Context, owner, repo, title, body string, assignees, labels []string) (*gh.Issue, error) {
	req := &gh.IssueRequest{
		Title:     gh.Ptr(title),
		Body:      gh.Ptr(body),
		Assignees: &assignees,
		Labels:    &labels,
	}
	issue, _, err := c.github.Issues.Create(ctx, owner, repo, req)
	return issue, err
}

func (c *client) UpdateIssue(ctx context.Context, owner, repo string, number int, title, body string) (*gh.Issue, error) {
	req := &gh.IssueRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
	}
	issue, _, err := c.github.Issues.Edit(ctx, owner, repo, number, req)
	return issue, err
}
