package service

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/models"
)

const autogradingCheckName = "Autograding"

// Expected output format: "Points 100/100".
var pointsPattern = regexp.MustCompile(`^Points\s+(\d+)\s*/\s*(\d+)`)

// parseAutogradingScore extracts the score from a completed Autograding
// check run. Nil means the score could not be determined (rendered as
// "??"); a timed-out run scores zero.
func parseAutogradingScore(run models.CheckRun) (score, maxScore *int) {
	var summary string
	switch run.Conclusion {
	case "success", "failure":
		summary = run.Summary
		if summary == "" {
			summary = run.Text
		}
	case "timed_out":
		zero := 0
		return &zero, nil
	default:
		return nil, nil
	}

	m := pointsPattern.FindStringSubmatch(summary)
	if m == nil {
		return nil, nil
	}
	// Submatches are digit-only by construction.
	s, _ := strconv.Atoi(m[1])
	x, _ := strconv.Atoi(m[2])
	return &s, &x
}

func fmtPoints(points *int) string {
	if points == nil {
		return "??"
	}
	return strconv.Itoa(*points)
}

// CreatePointsBadge renders a flat score badge as SVG. Grey when the
// score is unknown, red for zero, orange for partial credit, green for
// full marks.
func CreatePointsBadge(points, maxPoints *int) string {
	value := fmtPoints(points) + " / " + fmtPoints(maxPoints)

	bgColor := "#aaa"
	if points != nil {
		switch {
		case *points == 0:
			bgColor = "#fe3737"
		case maxPoints != nil && *points >= *maxPoints:
			bgColor = "#35f235"
		default:
			bgColor = "#fe7d37"
		}
	}

	ariaLabel := fmt.Sprintf("%s out of %s points", fmtPoints(points), fmtPoints(maxPoints))
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="140" height="24" role="img" aria-label="%s">
  <linearGradient id="s" x2="0" y2="100%%">
    <stop offset="0" stop-color="#ddd" stop-opacity=".2" />
    <stop offset="1" stop-opacity=".2" />
  </linearGradient>
  <clipPath id="r">
    <rect width="140" height="24" rx="4" fill="#fff" />
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="70" height="24" fill="#666" />
    <rect x="70" width="70" height="24" fill="%s" />
    <rect width="140" height="24" fill="url(#s)" />
  </g>
  <g fill="#fff" text-anchor="middle" font-family="-apple-system,BlinkMacSystemFont,'Segoe UI','Noto Sans',Helvetica,Arial,sans-serif,'Apple Color Emoji','Segoe UI Emoji'"
    text-rendering="geometricPrecision" font-size="140">
    <g font-size="140">
      <text aria-hidden="true" x="350" y="160" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="580">🎯 score</text>
      <text x="350" y="160" transform="scale(.1)" fill="#fff" textLength="580">🎯 score</text>
    </g>
    <text aria-hidden="true" x="1050" y="170" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="580">%s</text>
    <text x="1050" y="170" transform="scale(.1)" fill="#fff" textLength="580">%s</text>
  </g>
</svg>`, ariaLabel, bgColor, value, value)
}

type BadgeService interface {
	HandleCheckRun(ctx context.Context, cfg *config.Config, run models.CheckRun) error
}

type badgeService struct {
	gh        github.Client
	committer *gh.CommitAuthor
	log       zerolog.Logger
}

func NewBadgeService(ghc github.Client, committer *gh.CommitAuthor, log zerolog.Logger) BadgeService {
	return &badgeService{
		gh:        ghc,
		committer: committer,
		log:       log,
	}
}

// HandleCheckRun refreshes the score badge on the status branch after an
// Autograding check run completes. The badge file must already exist
// there (Classroom's template seeds it); updating requires its current
// blob SHA.
func (s *badgeService) HandleCheckRun(ctx context.Context, cfg *config.Config, run models.CheckRun) error {
	bcfg := cfg.Badges
	if !bcfg.Enabled() {
		return nil
	}
	log := s.log.With().
		Str("component", "badges").
		Str("repo", run.Owner+"/"+run.Repo).
		Logger()

	if run.Action != "completed" || run.Conclusion == "skipped" || run.Name != autogradingCheckName {
		return nil
	}

	score, maxScore := parseAutogradingScore(run)
	log.Info().Str("score", fmtPoints(score)).Str("max_score", fmtPoints(maxScore)).Msg("autograde score")

	badge := CreatePointsBadge(score, maxScore)
	badgeFile := path.Join(bcfg.Path, "score.svg")

	_, sha, err := s.gh.GetFileContent(ctx, run.Owner, run.Repo, badgeFile, bcfg.Branch)
	if err != nil {
		log.Error().Err(err).Str("path", badgeFile).Msg("could not find SHA of badge file")
		return nil
	}

	message := fmt.Sprintf("Updated badge (%s/%s points)", fmtPoints(score), fmtPoints(maxScore))
	err = s.gh.CreateOrUpdateFile(ctx, run.Owner, run.Repo, badgeFile, bcfg.Branch,
		message, badge, &sha, s.committer)
	if err != nil {
		return fmt.Errorf("updating badge file: %w", err)
	}
	log.Info().Str("path", badgeFile).Msg("updated score badge file contents")
	return nil
}
