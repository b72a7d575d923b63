package service

import (
	"context"
	"net/http"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clusterhack/classbot/internal/config"
	githubMocks "github.com/clusterhack/classbot/internal/github/mocks"
	"github.com/clusterhack/classbot/models"
)

func notFound() error {
	return &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

func setupPush() models.Push {
	return models.Push{
		Owner:  "cs101",
		Repo:   "hw1-alice",
		Ref:    "refs/heads/main",
		Pusher: "github-classroom[bot]",
		Commits: []models.Commit{{
			SHA:     "aaa111",
			Message: "Setting up GitHub Classroom Feedback",
		}},
	}
}

func TestWorkflowSetup_InstallsTemplate(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)
	committer := &gh.CommitAuthor{Name: gh.Ptr("classbot"), Email: gh.Ptr("bot@example.com")}
	cfg := config.Default()

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/workflows/classroom.yml", "").
		Once().
		Return("", "", notFound())
	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/classroom/autograde-action.yml", "").
		Once().
		Return("name: Autograding\n", "srcsha", nil)
	mockClient.
		On("CreateOrUpdateFile", mock.Anything, "cs101", "hw1-alice", ".github/workflows/classroom.yml", "",
			workflowCommitMessage, "name: Autograding\n", (*string)(nil), committer).
		Once().
		Return(nil)

	svc := NewWorkflowSetupService(mockClient, committer, zerolog.Nop())
	require.NoError(t, svc.HandlePush(ctx, &cfg, setupPush()))
}

func TestWorkflowSetup_SkipsWhenAlreadyInstalled(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)
	cfg := config.Default()

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", ".github/workflows/classroom.yml", "").
		Once().
		Return("name: Autograding\n", "dstsha", nil)

	svc := NewWorkflowSetupService(mockClient, nil, zerolog.Nop())
	require.NoError(t, svc.HandlePush(ctx, &cfg, setupPush()))
}

func TestWorkflowSetup_SkipsWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)
	cfg := config.Default()

	mockClient.
		On("GetFileContent", mock.Anything, "cs101", "hw1-alice", mock.Anything, "").
		Twice().
		Return("", "", notFound())

	svc := NewWorkflowSetupService(mockClient, nil, zerolog.Nop())
	require.NoError(t, svc.HandlePush(ctx, &cfg, setupPush()))
}

func TestWorkflowSetup_FiltersNonSetupPushes(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)
	cfg := config.Default()
	svc := NewWorkflowSetupService(mockClient, nil, zerolog.Nop())

	// Student push: wrong pusher.
	push := setupPush()
	push.Pusher = "alice"
	require.NoError(t, svc.HandlePush(ctx, &cfg, push))

	// Classroom bot pushing something other than repo setup.
	push = setupPush()
	push.Commits = []models.Commit{{SHA: "bbb222", Message: "update grades"}}
	require.NoError(t, svc.HandlePush(ctx, &cfg, push))
}

func TestMatchesSetupPush_DeadlineCommit(t *testing.T) {
	cfg := config.Default()

	push := setupPush()
	push.Commits = []models.Commit{{SHA: "ccc333", Message: "add deadline"}}
	match, err := matchesSetupPush(cfg.Workflows, push)
	require.NoError(t, err)
	require.True(t, match)
}

func TestWorkflowSetup_BadFilterErrorsInsteadOfPanicking(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	// Validation normally rejects this; a handler reached with it anyway
	// must fail cleanly.
	cfg := config.Default()
	cfg.Workflows.PusherFilter = "("

	svc := NewWorkflowSetupService(mockClient, nil, zerolog.Nop())
	require.Error(t, svc.HandlePush(ctx, &cfg, setupPush()))
}
