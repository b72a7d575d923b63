package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"
)

func (c *client) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, string, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	content, _, _, err := c.github.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return "", "", err
	}
	decoded, err := content.GetContent()
	if err != nil {
		return "", "", err
	}
	return decoded, content.GetSHA(), nil
}

func (c *client) CreateOrUpdateFile(ctx context.Context, owner, repo, path, branch, message, content string, fileSHA *string, committer *gh.CommitAuthor) error {
	opts := &gh.RepositoryContentFileOptions{
		Message:   gh.Ptr(message),
		Content:   []byte(content),
		Committer: committer,
	}
	if branch != "" {
		opts.Branch = gh.Ptr(branch)
	}
	if fileSHA == nil {
		_, _, err := c.github.Repositories.CreateFile(ctx, owner, repo, path, opts)
		return err
	}
	opts.SHA = fileSHA
	_, _, err := c.github.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	return err
}
