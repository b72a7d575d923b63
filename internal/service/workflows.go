package service

import (
	"context"
	"fmt"
	"regexp"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/models"
)

const workflowCommitMessage = "Setting up classroom autograde workflow"

type WorkflowSetupService interface {
	HandlePush(ctx context.Context, cfg *config.Config, push models.Push) error
}

type workflowSetupService struct {
	gh        github.Client
	committer *gh.CommitAuthor
	log       zerolog.Logger
}

// NewWorkflowSetupService returns the service that installs the
// autograde workflow file on Classroom's repo-setup push. The committer
// identity is the bot's own, so its commits pass the watchdog's
// committer allowlist.
func NewWorkflowSetupService(ghc github.Client, committer *gh.CommitAuthor, log zerolog.Logger) WorkflowSetupService {
	return &workflowSetupService{
		gh:        ghc,
		committer: committer,
		log:       log,
	}
}

// HandlePush copies the workflow template from its staging path into
// .github/workflows, but only on pushes that look like Classroom's own
// setup commits. Repos without the template, or with the workflow
// already in place, are left alone.
func (s *workflowSetupService) HandlePush(ctx context.Context, cfg *config.Config, push models.Push) error {
	wcfg := cfg.Workflows
	if !wcfg.Enabled() {
		return nil
	}
	log := s.log.With().
		Str("component", "workflows").
		Str("repo", push.Owner+"/"+push.Repo).
		Logger()

	match, err := matchesSetupPush(wcfg, push)
	if err != nil {
		return fmt.Errorf("workflow setup filters: %w", err)
	}
	if !match {
		return nil
	}

	// Already installed? Classroom setup involves several pushes; only
	// the first one past the filters should commit anything.
	if _, _, err := s.gh.GetFileContent(ctx, push.Owner, push.Repo, wcfg.DestinationPath, ""); err == nil {
		log.Info().Str("path", wcfg.DestinationPath).Msg("workflow file already present; skipping")
		return nil
	} else if !github.IsNotFound(err) {
		return fmt.Errorf("checking for existing workflow file: %w", err)
	}

	content, _, err := s.gh.GetFileContent(ctx, push.Owner, push.Repo, wcfg.SourcePath, "")
	if github.IsNotFound(err) {
		log.Info().Str("path", wcfg.SourcePath).Msg("no workflow template in repo; skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching workflow template: %w", err)
	}

	err = s.gh.CreateOrUpdateFile(ctx, push.Owner, push.Repo, wcfg.DestinationPath, "",
		workflowCommitMessage, content, nil, s.committer)
	if err != nil {
		return fmt.Errorf("installing workflow file: %w", err)
	}
	log.Info().Str("path", wcfg.DestinationPath).Msg("installed autograde workflow")
	return nil
}

// matchesSetupPush applies the pusher and commit-message filters. An
// empty filter matches everything. The message filter passes if any
// commit in the push matches. Config validation already rejects bad
// filters, but a malformed one arriving here is an error, not a panic.
func matchesSetupPush(wcfg *config.WorkflowsConfig, push models.Push) (bool, error) {
	if wcfg.PusherFilter != "" {
		re, err := regexp.Compile(wcfg.PusherFilter)
		if err != nil {
			return false, fmt.Errorf("pusher filter: %w", err)
		}
		if !re.MatchString(push.Pusher) {
			return false, nil
		}
	}
	if wcfg.MessageFilter != "" {
		re, err := regexp.Compile(wcfg.MessageFilter)
		if err != nil {
			return false, fmt.Errorf("message filter: %w", err)
		}
		matched := false
		for _, commit := range push.Commits {
			if re.MatchString(commit.Message) {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
