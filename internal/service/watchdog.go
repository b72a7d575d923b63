// Package service implements classbot's components: watchdog, gradelog,
// workflow bootstrap, badges, and the autograde stub. Services are
// invoked by the orchestrator with a validated config and a typed event
// view; the component gate and repo filter have already been applied.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/db"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/internal/identity"
	"github.com/clusterhack/classbot/internal/manifest"
	"github.com/clusterhack/classbot/models"
)

// FindInvalidCommitFiles returns every file path in the push that falls
// outside the manifest allow set, deduplicated across commits in
// first-seen order. A commit whose committer is on the allowlist is
// skipped entirely, whatever it touches (notably the official Classroom
// bot's setup commits).
func FindInvalidCommitFiles(commits []models.Commit, filter *manifest.Filter, commitersAllow []string) []string {
	var invalid []string
	seen := make(map[string]bool)
	for _, commit := range commits {
		if commit.Committer.Username != "" && slices.Contains(commitersAllow, commit.Committer.Username) {
			continue
		}
		for _, paths := range [][]string{commit.Modified, commit.Removed, commit.Added} {
			for _, path := range paths {
				if !filter.Outside(path) || seen[path] {
					continue
				}
				seen[path] = true
				invalid = append(invalid, path)
			}
		}
	}
	return invalid
}

// FindInvalidCommitAuthors returns the usernames of commit authors not on
// the authors allowlist, and (when commitersAllow is non-nil) committers
// not on the committers allowlist. A missing username is reported as the
// UnknownUser sentinel rather than dropped. The result is deduplicated.
func FindInvalidCommitAuthors(commits []models.Commit, authorsAllow, commitersAllow []string) []string {
	authors := dedup(authorsAllow)
	var commiters []string
	if commitersAllow != nil {
		commiters = dedup(commitersAllow)
	}

	var invalid []string
	seen := make(map[string]bool)
	flag := func(username string) {
		if username == "" {
			username = models.UnknownUser
		}
		if !seen[username] {
			seen[username] = true
			invalid = append(invalid, username)
		}
	}

	for _, commit := range commits {
		if commit.Author.Username == "" || !slices.Contains(authors, commit.Author.Username) {
			flag(commit.Author.Username)
		}
		if commitersAllow != nil &&
			(commit.Committer.Username == "" || !slices.Contains(commiters, commit.Committer.Username)) {
			flag(commit.Committer.Username)
		}
	}
	return invalid
}

func dedup(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// markdownIDList renders identifiers as a comma-separated list of
// code-styled fragments.
func markdownIDList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "`" + id + "`"
	}
	return strings.Join(quoted, ", ")
}

type WatchdogService interface {
	HandlePush(ctx context.Context, cfg *config.Config, push models.Push) error
}

type watchdogService struct {
	gh          github.Client
	alerts      *db.AlertRepository
	assignments *db.AssignmentRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewWatchdogService(gh github.Client, alerts *db.AlertRepository, assignments *db.AssignmentRepository, log zerolog.Logger) WatchdogService {
	return &watchdogService{
		gh:          gh,
		alerts:      alerts,
		assignments: assignments,
		log:         log,
		now:         time.Now,
	}
}

// HandlePush runs the configured validations against the push, files or
// updates the violation issue, and records the alert. Issue-filing
// failures propagate (the push handler aborts, nothing is persisted);
// ledger failures after a successful filing are logged and swallowed.
func (s *watchdogService) HandlePush(ctx context.Context, cfg *config.Config, push models.Push) error {
	wcfg := cfg.Watchdog
	if !wcfg.Enabled() {
		return nil
	}
	log := s.log.With().
		Str("component", "watchdog").
		Str("repo", push.Owner+"/"+push.Repo).
		Logger()

	branch := strings.TrimPrefix(push.Ref, "refs/heads/")

	var bodyMd strings.Builder
	var violations []models.Violation

	if wcfg.ValidatesFiles() {
		patterns := cfg.Submission.Manifest.Resolve(branch)
		log.Info().Strs("patterns", patterns).Str("ref", push.Ref).Msg("resolved file manifest")

		filter, err := manifest.Compile(patterns)
		if err != nil {
			// Manifests are compile-checked at config load; this means the
			// config loader was bypassed.
			return fmt.Errorf("compiling manifest: %w", err)
		}

		invalidFiles := FindInvalidCommitFiles(push.Commits, filter, cfg.Submission.CommitersAllow)
		if len(invalidFiles) > 0 {
			fmt.Fprintf(&bodyMd, "* The following file(s) were modified: %s\n", markdownIDList(invalidFiles))
			violations = append(violations, models.Violation{
				Kind:        models.ViolationInvalidFiles,
				Description: "Commit modified unexpected files",
				Files:       invalidFiles,
			})
		}
	}

	if wcfg.ValidatesAuthor() {
		collaborators, err := s.gh.ListPushCollaborators(ctx, push.Owner, push.Repo)
		if err != nil {
			return fmt.Errorf("listing collaborators: %w", err)
		}
		log.Info().Strs("collaborators", collaborators).Msg("repo push collaborators")

		authors := append([]string{push.Owner}, collaborators...)
		authors = append(authors, cfg.Submission.AuthorsAllow...)
		commitersAllow := cfg.Submission.CommitersAllow
		if commitersAllow == nil {
			commitersAllow = cfg.Submission.AuthorsAllow
		}
		commiters := append([]string{push.Owner}, collaborators...)
		commiters = append(commiters, commitersAllow...)

		invalidUsers := FindInvalidCommitAuthors(push.Commits, authors, commiters)
		if len(invalidUsers) > 0 {
			fmt.Fprintf(&bodyMd, "* The following user(s) commited: %s\n", markdownIDList(invalidUsers))
			violations = append(violations, models.Violation{
				Kind:        models.ViolationInvalidUsers,
				Description: "Commit authored by unexpected users",
				Users:       invalidUsers,
			})
		}
	}

	if len(violations) > 0 {
		log.Info().Int("violations", len(violations)).Msg("validation(s) failed on push")

		var commitDetails strings.Builder
		commitDetails.WriteString("Potentially offending commit(s):\n\n")
		for _, commit := range push.Commits {
			summary, _, _ := strings.Cut(commit.Message, "\n")
			fmt.Fprintf(&commitDetails, "* [%s](%s) (by %s)\n", summary, commit.URL, commit.Author.Name)
		}

		issue, err := s.fileOrUpdateIssue(ctx, wcfg.Issue, push.Owner, push.Repo,
			bodyMd.String()+"\n"+commitDetails.String())
		if err != nil {
			return fmt.Errorf("filing watchdog issue: %w", err)
		}
		log.Info().Int("issue", issue.GetNumber()).Msg("filed watchdog issue")

		s.recordAlert(ctx, log, push, issue.GetNumber(), violations)
	}

	if wcfg.TimestampsCommits() && len(push.Commits) > 0 {
		head := push.Commits[len(push.Commits)-1]
		body := fmt.Sprintf("Pushed at %s", s.now().Format(time.RFC1123))
		if err := s.gh.CreateCommitComment(ctx, push.Owner, push.Repo, head.SHA, body); err != nil {
			return fmt.Errorf("creating timestamp comment: %w", err)
		}
		log.Info().Msg("submitted commit timestamp comment")
	}

	return nil
}

// recordAlert persists the alert ledger entry for an already-filed issue.
// The issue is the authoritative, student-facing artifact; the ledger is
// best-effort telemetry, so every failure here is logged and swallowed.
func (s *watchdogService) recordAlert(ctx context.Context, log zerolog.Logger, push models.Push, issueNumber int, violations []models.Violation) {
	commit, err := s.gh.GetCommit(ctx, push.Owner, push.Repo, push.After)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve push head commit; alert not logged")
		return
	}

	var userID *int64
	var authorLogin string
	if author := commit.GetAuthor(); author != nil {
		authorLogin = author.GetLogin()
		userID = author.ID
	}

	var assignmentID *int64
	if parts, ok := identity.ParseAssignmentRepo(push.Repo, authorLogin); ok {
		assignment, err := s.assignments.FindByOrgName(ctx, push.Owner, parts.Assignment)
		switch {
		case err == nil:
			assignmentID = &assignment.ID
		case errors.Is(err, db.ErrNotFound):
			// Alert is still recorded, with empty linkage.
			log.Warn().Str("assignment", parts.Assignment).Msg("no matching assignment; logging unlinked alert")
		default:
			log.Error().Err(err).Msg("assignment lookup failed; alert not logged")
			return
		}
	}

	details, err := json.Marshal(violations)
	if err != nil {
		log.Error().Err(err).Msg("failed to serialize violation details; alert not logged")
		return
	}

	alert := &db.Alert{
		Timestamp:    s.now(),
		UserID:       userID,
		AssignmentID: assignmentID,
		Repo:         push.Owner + "/" + push.Repo,
		Issue:        issueNumber,
		SHA:          push.After,
		Details:      details,
	}
	if err := s.alerts.Insert(ctx, alert); err != nil {
		if db.IsDuplicateKey(err) {
			log.Warn().Str("sha", push.After).Msg("alert already recorded for this push")
		} else {
			log.Error().Err(err).Msg("failed to log alert into database")
		}
		return
	}
	log.Info().Str("sha", push.After).Msg("logged alert into database")
}
