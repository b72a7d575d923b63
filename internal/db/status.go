package db

// ScoredBy records which mechanism graded a code submission.
type ScoredBy string

const (
	ScoredByAction ScoredBy = "action" // in-repo Classroom autograde action
	ScoredByBot    ScoredBy = "bot"    // out-of-repo classbot autograde component
)

// SubmissionStatus mirrors GitHub check-run completion conclusions,
// excluding action_required, cancelled, skipped and stale.
type SubmissionStatus string

const (
	StatusFailure  SubmissionStatus = "failure"
	StatusNeutral  SubmissionStatus = "neutral"
	StatusSuccess  SubmissionStatus = "success"
	StatusTimedOut SubmissionStatus = "timed_out"
)

var submissionStatuses = map[SubmissionStatus]bool{
	StatusFailure:  true,
	StatusNeutral:  true,
	StatusSuccess:  true,
	StatusTimedOut: true,
}

// ParseSubmissionStatus is the single closed-set membership check for
// submission statuses arriving as strings from API payloads. Values
// outside the set yield ok=false and an empty status.
func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	status := SubmissionStatus(s)
	if !submissionStatuses[status] {
		return "", false
	}
	return status, true
}
