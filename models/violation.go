package models

type ViolationKind string

const (
	ViolationInvalidFiles ViolationKind = "invalid-files"
	ViolationInvalidUsers ViolationKind = "invalid-users"
)

// UnknownUser is reported in place of a missing commit author/committer
// username, so anonymous identities are still flagged.
const UnknownUser = "UNDEFINED"

// Violation is one policy finding for a push. Exactly one of Files or
// Users is set, depending on Kind.
type Violation struct {
	Kind        ViolationKind `json:"type"`
	Description string        `json:"description"`
	Files       []string      `json:"files,omitempty"`
	Users       []string      `json:"users,omitempty"`
}
