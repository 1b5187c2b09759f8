package github

import "time"

// Owner identifies the account that owns a repository.
type Owner struct {
	Login string `json:"login"`
}

// Repository is the subset of the GitHub repository object the collector
// consumes, either from the search endpoint or from a direct lookup.
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Owner         Owner     `json:"owner"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Size          int       `json:"size"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Topics        []string  `json:"topics"`
}

// Release is a published repository release. Releases are fetched fresh per
// collection pass and never persisted; only the matrix row derived from one
// is kept.
type Release struct {
	TagName     string     `json:"tag_name"`
	Prerelease  bool       `json:"prerelease"`
	Draft       bool       `json:"draft"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EffectiveDate returns the release's published date, falling back to its
// created date when the release was never published.
func (r Release) EffectiveDate() time.Time {
	if r.PublishedAt != nil {
		return *r.PublishedAt
	}
	return r.CreatedAt
}

// Stable reports whether the release is neither a prerelease nor a draft.
func (r Release) Stable() bool {
	return !r.Prerelease && !r.Draft
}

// Tree is a recursive listing of a repository at a commit, branch, or tag.
type Tree struct {
	SHA       string      `json:"sha"`
	Entries   []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// TreeEntry is a single file or directory in a tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// IsFile reports whether the entry is a file (a git blob) rather than a
// directory.
func (e TreeEntry) IsFile() bool { return e.Type == "blob" }

// searchResponse is the envelope of the repository search endpoint.
type searchResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}
