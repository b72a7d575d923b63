package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/db"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/internal/identity"
	"github.com/clusterhack/classbot/models"
)

// Autograde result artifacts are tiny JSON reports; anything bigger than
// this is not one of ours.
const maxArtifactBytes = 10 << 20

// Workflow-job payloads carry only check_run_url; the run id is its last
// path segment.
var checkRunURLPattern = regexp.MustCompile(`check-runs/(\d+)$`)

func parseCheckRunID(checkRunURL string) *int64 {
	m := checkRunURLPattern.FindStringSubmatch(checkRunURL)
	if m == nil {
		return nil
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// autogradeResult is the subset of the grading payload the ledger keys
// on; the full payload is stored opaquely alongside it.
type autogradeResult struct {
	Score         *float64 `json:"score"`
	MaxScore      *float64 `json:"max_score"`
	ExecutionTime *float64 `json:"execution_time"`
}

type GradeLogService interface {
	HandleWorkflowJob(ctx context.Context, cfg *config.Config, job models.WorkflowJob) error
}

type gradeLogService struct {
	gh          github.Client
	assignments *db.AssignmentRepository
	submissions *db.SubmissionRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewGradeLogService(ghc github.Client, assignments *db.AssignmentRepository, submissions *db.SubmissionRepository, log zerolog.Logger) GradeLogService {
	return &gradeLogService{
		gh:          ghc,
		assignments: assignments,
		submissions: submissions,
		log:         log,
		now:         time.Now,
	}
}

// HandleWorkflowJob imports the autograde result of a completed CI job
// into the submission ledger. Unlike the watchdog, identity-resolution
// misses abort the import: a submission row is meaningless without its
// assignment link. Re-processing a job whose head SHA is already
// recorded is a no-op.
func (s *gradeLogService) HandleWorkflowJob(ctx context.Context, cfg *config.Config, job models.WorkflowJob) error {
	gcfg := cfg.Gradelog
	if !gcfg.Enabled() {
		return nil
	}
	log := s.log.With().
		Str("component", "gradelog").
		Str("repo", job.Owner+"/"+job.Repo).
		Logger()

	if job.JobName != gcfg.JobName {
		log.Info().Str("job", job.JobName).Str("want", gcfg.JobName).Msg("workflow job name does not match; skipping")
		return nil
	}

	commit, err := s.gh.GetCommit(ctx, job.Owner, job.Repo, job.HeadSHA)
	if err != nil {
		return fmt.Errorf("resolving job head commit: %w", err)
	}
	author := commit.GetAuthor()
	if author == nil {
		log.Error().Str("sha", job.HeadSHA).Msg("cannot determine author of job's head commit; giving up")
		return nil
	}

	parts, ok := identity.ParseAssignmentRepo(job.Repo, author.GetLogin())
	if !ok {
		log.Error().Str("author", author.GetLogin()).Msg("cannot parse assignment repo name; giving up")
		return nil
	}

	assignment, err := s.assignments.FindByOrgID(ctx, job.OwnerID, parts.Assignment)
	if errors.Is(err, db.ErrNotFound) {
		log.Error().
			Int64("org_id", job.OwnerID).
			Str("assignment", parts.Assignment).
			Msg("no matching assignment in database; giving up")
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up assignment: %w", err)
	}
	if orgName, err := s.assignments.OrgName(ctx, assignment.OrgID); err == nil && orgName != job.Owner {
		log.Warn().Str("org", orgName).Str("owner", job.Owner).Msg("repo owner does not match assignment org name")
	}

	artifact, err := s.selectArtifact(ctx, log, gcfg.ArtifactName, job)
	if err != nil {
		return err
	}
	if artifact == nil {
		return nil
	}
	log.Info().Str("artifact", artifact.GetName()).Int64("id", artifact.GetID()).Msg("found result artifact")

	archive, err := s.gh.DownloadArtifact(ctx, job.Owner, job.Repo, artifact.GetID(), maxArtifactBytes)
	if err != nil {
		// Oversized or unreachable artifacts abandon the import; they do
		// not crash the handler.
		log.Error().Err(err).Msg("artifact download failed; giving up")
		return nil
	}

	raw, result, err := extractAutogradeJSON(log, archive)
	if err != nil {
		log.Error().Err(err).Msg("malformed result artifact; giving up")
		return nil
	}

	timestamp := s.now()
	if job.CompletedAt != nil {
		timestamp = *job.CompletedAt
	}
	// Conclusions outside the recognized set leave the status empty.
	status, _ := db.ParseSubmissionStatus(job.Conclusion)

	sub := &db.Submission{
		Timestamp:    timestamp,
		UserID:       author.GetID(),
		AssignmentID: assignment.ID,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
	}
	code := &db.CodeSubmission{
		Repo:          job.Repo,
		HeadSHA:       job.HeadSHA,
		ScoredBy:      db.ScoredByAction,
		CheckRunID:    parseCheckRunID(job.CheckRunURL),
		Status:        status,
		ExecutionTime: result.ExecutionTime,
		Autograde:     raw,
	}
	if err := s.submissions.InsertGraded(ctx, sub, code); err != nil {
		if db.IsDuplicateKey(err) {
			log.Info().Str("sha", job.HeadSHA).Msg("submission already recorded; skipping")
			return nil
		}
		return fmt.Errorf("inserting submission: %w", err)
	}
	log.Info().Int64("submission", sub.ID).Msg("successfully inserted grade record")
	return nil
}

// selectArtifact picks the result artifact for the job. With several
// candidates, one from a run matching the job's head SHA wins; failing
// that, the most recently created. Returns (nil, nil) when there is
// nothing to import.
func (s *gradeLogService) selectArtifact(ctx context.Context, log zerolog.Logger, name string, job models.WorkflowJob) (*gh.Artifact, error) {
	artifacts, err := s.gh.ListArtifactsByName(ctx, job.Owner, job.Repo, name)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		log.Error().Str("artifact", name).Msg("no artifacts found")
		return nil, nil
	}
	if len(artifacts) == 1 {
		return artifacts[0], nil
	}

	log.Warn().Int("count", len(artifacts)).Msg("multiple matching artifacts; will try to match head SHA")
	var latest *gh.Artifact
	for _, a := range artifacts {
		if a.GetWorkflowRun().GetHeadSHA() == job.HeadSHA {
			return a, nil
		}
		if latest == nil || a.GetCreatedAt().After(latest.GetCreatedAt().Time) {
			latest = a
		}
	}
	log.Warn().Msg("could not match head SHA, will use latest artifact")
	return latest, nil
}

// extractAutogradeJSON unzips the artifact archive and parses its single
// JSON member. More than one JSON member gets a warning and the first is
// used; zero is an error.
func extractAutogradeJSON(log zerolog.Logger, archive []byte) (json.RawMessage, *autogradeResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, nil, fmt.Errorf("opening artifact zip: %w", err)
	}

	var jsonFiles []*zip.File
	for _, f := range reader.File {
		if strings.HasSuffix(f.Name, ".json") {
			jsonFiles = append(jsonFiles, f)
		}
	}
	if len(jsonFiles) == 0 {
		return nil, nil, errors.New("no JSON files in artifact")
	}
	if len(jsonFiles) > 1 {
		log.Warn().Str("using", jsonFiles[0].Name).Msg("artifact contains more than one JSON file")
	}

	rc, err := jsonFiles[0].Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", jsonFiles[0].Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxArtifactBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", jsonFiles[0].Name, err)
	}

	var result autogradeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", jsonFiles[0].Name, err)
	}
	return raw, &result, nil
}
