// Package orchestrator routes validated webhook events to classbot's
// components. Each event is handled in isolation: the repo allowlist and
// per-component gates are applied here, and a component failure aborts
// only the remainder of that event's pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/service"
	"github.com/clusterhack/classbot/models"
)

// Services bundles the event-handling components.
type Services struct {
	Watchdog  service.WatchdogService
	Workflows service.WorkflowSetupService
	Autograde service.AutogradeService
	Badges    service.BadgeService
	Gradelog  service.GradeLogService
}

type Dispatcher struct {
	loader       *config.Loader
	services     Services
	ownerPattern *regexp.Regexp
	namePattern  *regexp.Regexp
	log          zerolog.Logger
}

// NewDispatcher compiles the repo allowlist patterns and wires the
// components. Repos whose owner or name does not match are skipped
// silently for every event type.
func NewDispatcher(loader *config.Loader, services Services, ownerPattern, namePattern string, log zerolog.Logger) (*Dispatcher, error) {
	ownerRe, err := regexp.Compile(ownerPattern)
	if err != nil {
		return nil, fmt.Errorf("repo owner pattern: %w", err)
	}
	nameRe, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, fmt.Errorf("repo name pattern: %w", err)
	}
	return &Dispatcher{
		loader:       loader,
		services:     services,
		ownerPattern: ownerRe,
		namePattern:  nameRe,
		log:          log,
	}, nil
}

// Dispatch routes a parsed webhook event through the matching component
// pipeline. Unrecognized event types are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, event any) error {
	switch e := event.(type) {
	case *gh.PushEvent:
		return d.handlePush(ctx, e)
	case *gh.CheckSuiteEvent:
		return d.handleCheckSuite(ctx, e)
	case *gh.CheckRunEvent:
		return d.handleCheckRun(ctx, e)
	case *gh.WorkflowJobEvent:
		return d.handleWorkflowJob(ctx, e)
	default:
		d.log.Debug().Type("event", event).Msg("ignoring unhandled event type")
		return nil
	}
}

func (d *Dispatcher) repoAllowed(owner, repo string) bool {
	if d.ownerPattern.MatchString(owner) && d.namePattern.MatchString(repo) {
		return true
	}
	d.log.Debug().Str("repo", owner+"/"+repo).Msg("repo outside allowlist; ignoring event")
	return false
}

func (d *Dispatcher) handlePush(ctx context.Context, e *gh.PushEvent) error {
	owner, repo := e.GetRepo().GetOwner().GetLogin(), e.GetRepo().GetName()
	if !d.repoAllowed(owner, repo) {
		return nil
	}
	cfg, err := d.loader.Load(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("loading config for %s/%s: %w", owner, repo, err)
	}

	push := models.Push{
		Owner:   owner,
		OwnerID: e.GetRepo().GetOwner().GetID(),
		Repo:    repo,
		Ref:     e.GetRef(),
		After:   e.GetAfter(),
		Pusher:  e.GetPusher().GetName(),
		Commits: commitsFromEvent(e.Commits),
	}

	// The workflow bootstrap runs first so Classroom's setup push gets
	// its workflow before the watchdog examines anything.
	if err := d.services.Workflows.HandlePush(ctx, cfg, push); err != nil {
		return err
	}
	return d.services.Watchdog.HandlePush(ctx, cfg, push)
}

func (d *Dispatcher) handleCheckSuite(ctx context.Context, e *gh.CheckSuiteEvent) error {
	owner, repo := e.GetRepo().GetOwner().GetLogin(), e.GetRepo().GetName()
	if !d.repoAllowed(owner, repo) || e.GetAction() != "requested" {
		return nil
	}
	cfg, err := d.loader.Load(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("loading config for %s/%s: %w", owner, repo, err)
	}

	return d.services.Autograde.HandleCheckSuite(ctx, cfg, models.CheckSuite{
		Owner:      owner,
		Repo:       repo,
		Action:     e.GetAction(),
		HeadBranch: e.GetCheckSuite().GetHeadBranch(),
		HeadSHA:    e.GetCheckSuite().GetHeadSHA(),
	})
}

func (d *Dispatcher) handleCheckRun(ctx context.Context, e *gh.CheckRunEvent) error {
	owner, repo := e.GetRepo().GetOwner().GetLogin(), e.GetRepo().GetName()
	if !d.repoAllowed(owner, repo) || e.GetAction() != "completed" {
		return nil
	}
	cfg, err := d.loader.Load(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("loading config for %s/%s: %w", owner, repo, err)
	}

	run := e.GetCheckRun()
	return d.services.Badges.HandleCheckRun(ctx, cfg, models.CheckRun{
		Owner:      owner,
		Repo:       repo,
		Action:     e.GetAction(),
		Name:       run.GetName(),
		Conclusion: run.GetConclusion(),
		Summary:    run.GetOutput().GetSummary(),
		Text:       run.GetOutput().GetText(),
	})
}

func (d *Dispatcher) handleWorkflowJob(ctx context.Context, e *gh.WorkflowJobEvent) error {
	owner, repo := e.GetRepo().GetOwner().GetLogin(), e.GetRepo().GetName()
	if !d.repoAllowed(owner, repo) || e.GetAction() != "completed" {
		return nil
	}
	cfg, err := d.loader.Load(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("loading config for %s/%s: %w", owner, repo, err)
	}

	job := e.GetWorkflowJob()
	var completedAt *time.Time
	if ts := job.CompletedAt; ts != nil {
		completedAt = &ts.Time
	}
	return d.services.Gradelog.HandleWorkflowJob(ctx, cfg, models.WorkflowJob{
		Owner:       owner,
		OwnerID:     e.GetRepo().GetOwner().GetID(),
		Repo:        repo,
		Action:      e.GetAction(),
		JobName:     job.GetName(),
		HeadSHA:     job.GetHeadSHA(),
		Conclusion:  job.GetConclusion(),
		CheckRunURL: job.GetCheckRunURL(),
		CompletedAt: completedAt,
	})
}

func commitsFromEvent(commits []*gh.HeadCommit) []models.Commit {
	out := make([]models.Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, models.Commit{
			SHA:       c.GetID(),
			Message:   c.GetMessage(),
			URL:       c.GetURL(),
			Author:    identityFromAuthor(c.GetAuthor()),
			Committer: identityFromAuthor(c.GetCommitter()),
			Added:     c.Added,
			Modified:  c.Modified,
			Removed:   c.Removed,
		})
	}
	return out
}

func identityFromAuthor(a *gh.CommitAuthor) models.Identity {
	return models.Identity{
		Name:     a.GetName(),
		Email:    a.GetEmail(),
		Username: a.GetLogin(),
	}
}
