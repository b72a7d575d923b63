package github

import (
	"context"
	"fmt"
	"io"
	"net/http"

	gh "github.com/google/go-github/v80/github"
)

func (c *client) ListArtifactsByName(ctx context.Context, owner, repo, name string) ([]*gh.Artifact, error) {
	opts := &gh.ListArtifactsOptions{
		Name:        gh.Ptr(name),
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	list, err := withRetry(ctx, func() (*gh.ArtifactList, error) {
		artifacts, _, err := c.github.Actions.ListArtifacts(ctx, owner, repo, opts)
		return artifacts, err
	})
	if err != nil {
		return nil, err
	}
	return list.Artifacts, nil
}

// DownloadArtifact resolves the artifact's pre-signed archive URL and
// fetches it, refusing bodies larger than maxBytes.
func (c *client) DownloadArtifact(ctx context.Context, owner, repo string, artifactID, maxBytes int64) ([]byte, error) {
	url, _, err := c.github.Actions.DownloadArtifact(ctx, owner, repo, artifactID, 3)
	if err != nil {
		return nil, fmt.Errorf("resolving artifact %d download URL: %w", artifactID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading artifact %d: %w", artifactID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading artifact %d: unexpected status code: %d", artifactID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("artifact %d exceeds %d byte limit", artifactID, maxBytes)
	}
	return data, nil
}
