package models

// Origin tells where a change-set was extracted from.
type Origin string

const (
	OriginWorkingTree Origin = "working-tree"
	OriginStaged      Origin = "staged"
	OriginPullRequest Origin = "pull-request"
	OriginBranch      Origin = "branch"
)

// ChangedFile is the per-file metadata reported for a pull request.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// ChangeSet is the textual diff handed to the prompt builder. It is never
// modified after extraction.
type ChangeSet struct {
	Text   string
	Origin Origin
	Files  []ChangedFile
}

// IsEmpty reports whether there is nothing to send to the model.
func (c ChangeSet) IsEmpty() bool {
	return c.Text == ""
}
