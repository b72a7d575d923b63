package models

// Identity is the author or committer identity attached to a pushed commit.
// Username may be blank: commits made outside GitHub (or rewritten ones)
// carry only name/email.
type Identity struct {
	Name     string
	Email    string
	Username string
}

// Commit is a single commit from a push payload, oldest-to-newest order
// preserved by the slice it arrives in.
type Commit struct {
	SHA       string
	Message   string
	URL       string
	Author    Identity
	Committer Identity
	Added     []string
	Modified  []string
	Removed   []string
}
