package db

import (
	"encoding/json"
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// User is a classroom member. ID is the GitHub user id.
type User struct {
	ID       int64    `gorm:"primaryKey"`
	Username string   `gorm:"size:32;uniqueIndex;not null"`
	SISID    *string  `gorm:"column:sis_id;size:32;uniqueIndex"`
	Role     UserRole `gorm:"size:16"`
	Name     string   `gorm:"size:128"`
}

// ClassroomOrg is a GitHub organization hosting assignment repos. ID is
// the GitHub org id.
type ClassroomOrg struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:64;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

func (ClassroomOrg) TableName() string { return "classroom_orgs" }

type Assignment struct {
	ID    int64      `gorm:"primaryKey"`
	OrgID int64      `gorm:"uniqueIndex:idx_assignments_org_name;not null"`
	Name  string     `gorm:"size:64;uniqueIndex:idx_assignments_org_name;not null"`
	Due   *time.Time `gorm:""`
}

// Alert is one persisted watchdog finding: a push that violated
// submission policy, tied to the issue filed for it. Append-only; only
// the Cleared flag is ever meant to change, by an admin surface outside
// this system.
type Alert struct {
	ID        int64     `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"not null"`
	Cleared   bool      `gorm:"not null;default:false"`

	// Linkage is best-effort: left empty when the repo name does not
	// resolve to a known assignment/user.
	UserID       *int64 `gorm:"column:userid"`
	AssignmentID *int64

	Repo  string `gorm:"size:140"` // owner/repo
	Issue int
	SHA   string `gorm:"size:40;uniqueIndex;not null"`

	// Serialized violation list.
	Details json.RawMessage `gorm:"type:json"`
}

// Submission is the base record for any assignment submission.
type Submission struct {
	ID           int64     `gorm:"primaryKey"`
	Timestamp    time.Time `gorm:"not null"`
	UserID       int64     `gorm:"column:userid;not null"`
	AssignmentID int64     `gorm:"not null"`
	Score        *float64
	MaxScore     *float64
}

// CodeSubmission extends Submission 1:1 for submissions pushed into an
// assignment repo and scored by CI. ID is both PK and FK to Submission.
type CodeSubmission struct {
	ID            int64            `gorm:"primaryKey"`
	Repo          string           `gorm:"size:100;not null"` // plain name, without owner
	HeadSHA       string           `gorm:"size:40;uniqueIndex;not null"`
	ScoredBy      ScoredBy         `gorm:"size:16"`
	CheckRunID    *int64           `gorm:""`
	Status        SubmissionStatus `gorm:"size:16"`
	ExecutionTime *float64         // seconds, wall-clock for the test run
	// Raw grading payload; never queried, just kept.
	Autograde json.RawMessage `gorm:"type:json"`
}
