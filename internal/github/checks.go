package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"
)

func (c *client) CreateCheckRun(ctx context.Context, owner, repo string, opts gh.CreateCheckRunOptions) (*gh.CheckRun, error) {
	run, _, err := c.github.Checks.CreateCheckRun(ctx, owner, repo, opts)
	return run, err
}
