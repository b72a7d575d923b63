package config

import (
	"context"
	"net/http"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	githubMocks "github.com/clusterhack/classbot/internal/github/mocks"
)

func notFound() error {
	return &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

func TestLoad_DefaultsWhenNoConfigFiles(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	// Every lookup misses: event repo and the owner's .github repo, for
	// both classbot.yml and the assignment override.
	mockClient.
		On("GetFileContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "").
		Return("", "", notFound())

	loader := NewLoader(mockClient)
	cfg, err := loader.Load(ctx, "cs101", "hw1-alice")
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Submission.Branch)
	assert.Equal(t, "classbot", cfg.Watchdog.Issue.Label)
}

func TestLoad_RepoOverrideApplied(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot.yml", "").
		Once().
		Return("submission:\n  branch: submit\n", "sha1", nil)
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", ".github", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())

	loader := NewLoader(mockClient)
	cfg, err := loader.Load(ctx, "cs101", "hw1-alice")
	require.NoError(t, err)

	assert.Equal(t, "submit", cfg.Submission.Branch)
}

func TestLoad_AssignmentOverrideWinsOverGlobal(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot.yml", "").
		Once().
		Return("watchdog:\n  issue:\n    label: global\n", "sha1", nil)
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot-hw1.yml", "").
		Once().
		Return("watchdog:\n  issue:\n    label: hw1\n", "sha2", nil)

	loader := NewLoader(mockClient)
	cfg, err := loader.Load(ctx, "cs101", "hw1-alice")
	require.NoError(t, err)

	assert.Equal(t, "hw1", cfg.Watchdog.Issue.Label)
}

func TestLoad_OwnerFallbackUsed(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot.yml", "").
		Once().
		Return("", "", notFound())
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", ".github", ".github/classbot.yml", "").
		Once().
		Return("submission:\n  branch: course-wide\n", "sha1", nil)
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", ".github", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())

	loader := NewLoader(mockClient)
	cfg, err := loader.Load(ctx, "cs101", "hw1-alice")
	require.NoError(t, err)

	assert.Equal(t, "course-wide", cfg.Submission.Branch)
}

func TestLoad_BlankOverrideCannotClearDefault(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot.yml", "").
		Once().
		Return("watchdog:\n  issue:\n    template: \"\"\n", "sha1", nil)
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", ".github", ".github/classbot-hw1.yml", "").
		Once().
		Return("", "", notFound())

	loader := NewLoader(mockClient)
	_, err := loader.Load(ctx, "cs101", "hw1-alice")

	assert.NoError(t, err) // blank template in override does not clear the default
}

func TestLoad_APIErrorPropagates(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classbot.yml", "").
		Once().
		Return("", "", assert.AnError)

	loader := NewLoader(mockClient)
	_, err := loader.Load(ctx, "cs101", "hw1-alice")

	assert.ErrorIs(t, err, assert.AnError)
}
