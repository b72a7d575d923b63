// Package identity derives classroom identities from repository names.
//
// GitHub Classroom names assignment repositories "{assignment}-{username}".
// When the username is known (from commit author lookup) the split is
// exact; otherwise the first dash is assumed to end the assignment name.
package identity

import "strings"

// RepoParts is the assignment/username pair encoded in a repository name.
type RepoParts struct {
	Assignment string
	Username   string
}

// ParseAssignmentRepo splits repo into assignment and username. With a
// non-empty username the repo must end in "-{username}"; the assignment
// is whatever precedes it, dashes and all. With an empty username the
// assignment is assumed dash-free and the split happens at the first
// dash. Returns false when the name does not follow the convention.
func ParseAssignmentRepo(repo, username string) (RepoParts, bool) {
	if username != "" {
		assignment, ok := strings.CutSuffix(repo, "-"+username)
		if !ok || assignment == "" {
			return RepoParts{}, false
		}
		return RepoParts{Assignment: assignment, Username: username}, true
	}
	assignment, user, ok := strings.Cut(repo, "-")
	if !ok {
		return RepoParts{}, false
	}
	return RepoParts{Assignment: assignment, Username: user}, true
}
