package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAssignmentRepo_KnownUsername(t *testing.T) {
	tests := []struct {
		name     string
		repo     string
		username string
		want     RepoParts
		ok       bool
	}{
		{
			name:     "simple",
			repo:     "hw1-alice",
			username: "alice",
			want:     RepoParts{Assignment: "hw1", Username: "alice"},
			ok:       true,
		},
		{
			name:     "assignment with dashes",
			repo:     "lab-2-trees-alice",
			username: "alice",
			want:     RepoParts{Assignment: "lab-2-trees", Username: "alice"},
			ok:       true,
		},
		{
			name:     "username with dashes",
			repo:     "hw1-alice-b",
			username: "alice-b",
			want:     RepoParts{Assignment: "hw1", Username: "alice-b"},
			ok:       true,
		},
		{
			name:     "username not a suffix",
			repo:     "hw1-bob",
			username: "alice",
			ok:       false,
		},
		{
			name:     "repo is just the username",
			repo:     "-alice",
			username: "alice",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAssignmentRepo(tt.repo, tt.username)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseAssignmentRepo_UnknownUsername(t *testing.T) {
	got, ok := ParseAssignmentRepo("hw1-alice-b", "")
	assert.True(t, ok)
	// Without a known username, the first dash ends the assignment name.
	assert.Equal(t, RepoParts{Assignment: "hw1", Username: "alice-b"}, got)

	_, ok = ParseAssignmentRepo("nodashes", "")
	assert.False(t, ok)
}
