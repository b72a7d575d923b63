package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"
)

func (c *client) GetCommit(ctx context.Context, owner, repo, ref string) (*gh.RepositoryCommit, error) {
	return withRetry(ctx, func() (*gh.RepositoryCommit, error) {
		commit, _, err := c.github.Repositories.GetCommit(ctx, owner, repo, ref, nil)
		return commit, err
	})
}

func (c *client) ListPushCollaborators(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &gh.ListCollaboratorsOptions{
		Affiliation: "direct",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var logins []string
	for {
		users, resp, err := c.github.Repositories.ListCollaborators(ctx, owner, repo, opts)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.GetPermissions()["push"] {
				logins = append(logins, u.GetLogin())
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return logins, nil
}

func (c *client) CreateCommitComment(ctx context.Context, owner, repo, sha, body string) error {
	comment := &gh.RepositoryComment{Body: gh.Ptr(body)}
	_, _, err := c.github.Repositories.CreateComment(ctx, owner, repo, sha, comment)
	return err
}
