package service

import (
	"context"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clusterhack/classbot/internal/config"
	githubMocks "github.com/clusterhack/classbot/internal/github/mocks"
	"github.com/clusterhack/classbot/models"
)

func autogradeTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Autograde = &config.AutogradeConfig{}
	return &cfg
}

func TestHandleCheckSuite_FilesCheckRun(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	mockClient.
		On("CreateCheckRun", mock.Anything, "cs101", "hw1-alice",
			mock.MatchedBy(func(opts gh.CreateCheckRunOptions) bool {
				return opts.Name == "Autograding (fake)" &&
					opts.HeadSHA == "aaa111" &&
					opts.GetStatus() == "completed" &&
					opts.GetConclusion() == "success" &&
					opts.Output.GetSummary() == "Points 70/100"
			})).
		Return(&gh.CheckRun{HTMLURL: gh.Ptr("https://github.com/cs101/hw1-alice/runs/1")}, nil)

	svc := NewAutogradeService(mockClient, zerolog.Nop())
	suite := models.CheckSuite{
		Owner:      "cs101",
		Repo:       "hw1-alice",
		Action:     "requested",
		HeadBranch: "main",
		HeadSHA:    "aaa111",
	}
	require.NoError(t, svc.HandleCheckSuite(ctx, autogradeTestConfig(), suite))
}

func TestHandleCheckSuite_SkipsOtherBranches(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)

	svc := NewAutogradeService(mockClient, zerolog.Nop())
	suite := models.CheckSuite{
		Owner:      "cs101",
		Repo:       "hw1-alice",
		Action:     "requested",
		HeadBranch: "status",
		HeadSHA:    "bbb222",
	}
	require.NoError(t, svc.HandleCheckSuite(ctx, autogradeTestConfig(), suite))
}

func TestHandleCheckSuite_DisabledByDefault(t *testing.T) {
	ctx := context.Background()
	mockClient := githubMocks.NewMockClient(t)
	cfg := config.Default()

	svc := NewAutogradeService(mockClient, zerolog.Nop())
	require.NoError(t, svc.HandleCheckSuite(ctx, &cfg, models.CheckSuite{HeadBranch: "main"}))
}
