package regex

import "regexp"

var (
	// Model answers
	FencedBlock  = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\n?(.*?)```")
	JSONString   = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	NumberedList = regexp.MustCompile(`^\d+[.)]\s*`)

	// Remotes and repository references
	SSHRemote   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?/?$`)
	HTTPSRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`)
	RepoSlug    = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?$`)
)
