package models

// Commit is one entry of the local history.
type Commit struct {
	SHA     string
	Author  string
	Date    string
	Message string
}

// StatusReport groups the paths reported by git status.
type StatusReport struct {
	Branch    string
	Staged    []string
	Modified  []string
	Untracked []string
}

// Clean reports whether the working tree has no changes at all.
func (s StatusReport) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}
