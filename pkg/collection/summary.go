package collection

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tbouvier/repolang/pkg/github"
	"github.com/tbouvier/repolang/pkg/table"
)

// KeyColumn is the summary column holding the repository full name, the
// unique key shared by the summary table and the matrix collection.
const KeyColumn = "name"

// SummaryColumns is the repository summary schema, in on-disk column order.
var SummaryColumns = []string{
	KeyColumn,
	"created_at",
	"updated_at",
	"file_count",
	"release_count",
	"size",
	"star_count",
	"fork_count",
	"contributor_count",
	"commit_count",
	"issue_count",
	"topics",
}

// topicSeparator joins topic lists into a single CSV cell.
const topicSeparator = ";"

// summaryDateFormat is the on-disk layout of the calendar-date columns.
const summaryDateFormat = "2006-01-02"

// Summary is one collected repository: identity, two calendar dates, five
// counts gathered through the gateway, size and popularity scalars, and the
// topic list.
type Summary struct {
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FileCount    int
	ReleaseCount int
	Size         int
	Stars        int
	Forks        int
	Contributors int
	Commits      int
	Issues       int
	Topics       []string
}

// Record encodes the summary as a row matching [SummaryColumns].
func (s *Summary) Record() []string {
	return []string{
		s.Name,
		s.CreatedAt.Format(summaryDateFormat),
		s.UpdatedAt.Format(summaryDateFormat),
		strconv.Itoa(s.FileCount),
		strconv.Itoa(s.ReleaseCount),
		strconv.Itoa(s.Size),
		strconv.Itoa(s.Stars),
		strconv.Itoa(s.Forks),
		strconv.Itoa(s.Contributors),
		strconv.Itoa(s.Commits),
		strconv.Itoa(s.Issues),
		strings.Join(s.Topics, topicSeparator),
	}
}

// newSummaryTable creates an empty summary table with the fixed schema.
func newSummaryTable() *table.Table {
	t, err := table.New(SummaryColumns)
	if err != nil {
		panic(err) // SummaryColumns is a constant schema with unique names
	}
	return t
}

// buildSummary derives a Summary for repo: the search result supplies the
// direct fields, five further gateway calls supply the counts.
func buildSummary(ctx context.Context, gw *github.Client, repo github.Repository) (*Summary, error) {
	owner, name := repo.Owner.Login, repo.Name

	fileCount, err := gw.FileCount(ctx, owner, name, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}
	releaseCount, err := gw.ReleaseCount(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	contributorCount, err := gw.ContributorCount(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	commitCount, err := gw.CommitCount(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	issueCount, err := gw.IssueCount(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Name:         repo.FullName,
		CreatedAt:    repo.CreatedAt,
		UpdatedAt:    repo.UpdatedAt,
		FileCount:    fileCount,
		ReleaseCount: releaseCount,
		Size:         repo.Size,
		Stars:        repo.Stars,
		Forks:        repo.Forks,
		Contributors: contributorCount,
		Commits:      commitCount,
		Issues:       issueCount,
		Topics:       repo.Topics,
	}, nil
}
