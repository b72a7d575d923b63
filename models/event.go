package models

import "time"

// Push is the validated view of a push webhook payload. Webhook JSON is
// converted to this at the dispatcher boundary; nothing downstream touches
// raw payload maps.
type Push struct {
	Owner   string
	OwnerID int64
	Repo    string
	Ref     string // full ref, e.g. "refs/heads/main"
	After   string // head SHA of the push
	Pusher  string
	Commits []Commit
}

// CheckSuite is the view of a check_suite event consumed by the autograde
// component.
type CheckSuite struct {
	Owner      string
	Repo       string
	Action     string
	HeadBranch string
	HeadSHA    string
}

// CheckRun is the view of a check_run event consumed by the badge updater.
type CheckRun struct {
	Owner      string
	Repo       string
	Action     string
	Name       string
	Conclusion string
	Summary    string
	Text       string
}

// WorkflowJob is the view of a workflow_job event consumed by the grade
// importer.
type WorkflowJob struct {
	Owner       string
	OwnerID     int64
	Repo        string
	Action      string
	JobName     string
	HeadSHA     string
	Conclusion  string
	CheckRunURL string
	CompletedAt *time.Time
}
