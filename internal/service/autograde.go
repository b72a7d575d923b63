package service

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/models"
)

type AutogradeService interface {
	HandleCheckSuite(ctx context.Context, cfg *config.Config, suite models.CheckSuite) error
}

type autogradeService struct {
	gh  github.Client
	log zerolog.Logger
}

func NewAutogradeService(ghc github.Client, log zerolog.Logger) AutogradeService {
	return &autogradeService{gh: ghc, log: log}
}

// HandleCheckSuite files a check run for new check suites on the
// submission branch.
//
// TODO Run the skeleton repo's unit tests against the submission; for
// now this files a fake completed run with a fixed score.
func (s *autogradeService) HandleCheckSuite(ctx context.Context, cfg *config.Config, suite models.CheckSuite) error {
	acfg := cfg.Autograde
	if !acfg.Enabled() {
		return nil
	}
	log := s.log.With().
		Str("component", "autograde").
		Str("repo", suite.Owner+"/"+suite.Repo).
		Logger()

	if suite.HeadBranch != cfg.Submission.Branch {
		log.Info().Str("branch", suite.HeadBranch).Msg("skipping check run on branch")
		return nil
	}

	run, err := s.gh.CreateCheckRun(ctx, suite.Owner, suite.Repo, gh.CreateCheckRunOptions{
		Name:       "Autograding (fake)",
		HeadSHA:    suite.HeadSHA,
		Status:     gh.Ptr("completed"),
		Conclusion: gh.Ptr("success"),
		Output: &gh.CheckRunOutput{
			Title:   gh.Ptr("Autograding (fake)"),
			Summary: gh.Ptr("Points 70/100"),
			Text:    gh.Ptr("Points 70/100"),
		},
	})
	if err != nil {
		return fmt.Errorf("creating check run: %w", err)
	}
	log.Info().Str("url", run.GetHTMLURL()).Msg("submitted check run")
	return nil
}
