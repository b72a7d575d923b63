// Package github wraps the slice of the GitHub API that classbot
// consumes behind a narrow interface, so services can be tested against
// mocks.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
)

// Client is the external source-control collaborator of every bot
// component. All methods take owner+repo explicitly: a single bot
// instance serves assignment repos across classroom orgs.
type Client interface {
	// Issues
	ListOpenIssuesByLabel(ctx context.Context, owner, repo, label string, limit int) ([]*gh.Issue, error)
	CreateIssue(ctx context.Context, owner, repo, title, body string, assignees, labels []string) (*gh.Issue, error)
	UpdateIssue(ctx context.Context, owner, repo string, number int, title, body string) (*gh.Issue, error)

	// Commits and collaborators
	GetCommit(ctx context.Context, owner, repo, ref string) (*gh.RepositoryCommit, error)
	ListPushCollaborators(ctx context.Context, owner, repo string) ([]string, error)
	CreateCommitComment(ctx context.Context, owner, repo, sha, body string) error

	// Workflow-run artifacts
	ListArtifactsByName(ctx context.Context, owner, repo, name string) ([]*gh.Artifact, error)
	DownloadArtifact(ctx context.Context, owner, repo string, artifactID, maxBytes int64) ([]byte, error)

	// Repo contents
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (content, sha string, err error)
	CreateOrUpdateFile(ctx context.Context, owner, repo, path, branch, message, content string, fileSHA *string, committer *gh.CommitAuthor) error

	// Check runs
	CreateCheckRun(ctx context.Context, owner, repo string, opts gh.CreateCheckRunOptions) (*gh.CheckRun, error)
}

type client struct {
	github *gh.Client
	// Plain client for pre-signed artifact download URLs (no auth header).
	httpClient *http.Client
}

type authTransport struct {
	token string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

func New(token string) Client {
	var httpClient *http.Client
	if token != "" {
		httpClient = &http.Client{
			Transport: &authTransport{
				token: token,
			},
		}
	}
	return &client{
		github:     gh.NewClient(httpClient),
		httpClient: http.DefaultClient,
	}
}

// IsNotFound reports whether err is a GitHub 404, so callers can tell
// "no such file/resource" apart from real API failures.
func IsNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) &&
		ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound
}

// withRetry runs call, retrying with the server-suggested delay on rate
// limit errors. Any other error is returned as-is.
func withRetry[T any](ctx context.Context, call func() (T, error)) (T, error) {
	const maxRetries = 5
	baseDelay := 1 * time.Second

	var zero T
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}

		var rateLimitErr *gh.RateLimitError
		if !errors.As(err, &rateLimitErr) {
			return zero, err
		}

		if attempt == maxRetries {
			return zero, fmt.Errorf("max retries reached: %w", err)
		}

		waitDuration := time.Until(rateLimitErr.Rate.Reset.Time)
		if waitDuration < 0 {
			waitDuration = baseDelay * time.Duration(1<<attempt)
		}

		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, fmt.Errorf("unexpected retry loop exit")
}
