package github

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"

	"github.com/tbouvier/repolang/pkg/sample"
)

// PageAll is the sentinel page number that makes SearchRepositories fetch
// every result page instead of a single one.
const PageAll = -1

const (
	searchPageSize = 100

	// maxSearchPages bounds a full search fan-out to 10 pages, i.e. at
	// most 1000 results per query.
	maxSearchPages = 10

	// maxReleasePages guards the release accumulation loop against a
	// paginator that never returns an empty page.
	maxReleasePages = 1000
)

// GetRepository fetches a single repository. When cache is true, the parsed
// response is kept as the client's most recent cache entry.
func (c *Client) GetRepository(ctx context.Context, owner, name string, cache bool) (*Repository, error) {
	body, err := c.get(ctx, repoPath(owner, name), nil, cache)
	if err != nil {
		return nil, err
	}
	var repo Repository
	if err := decodeInto(body, &repo, "repository"); err != nil {
		return nil, err
	}
	return &repo, nil
}

// GetTree fetches the recursive tree of a repository at the given ref (a
// branch name, tag, or commit SHA). The ref is percent-encoded, so tags
// containing '#', '?' or '/' resolve correctly. Tree responses are never
// cached.
func (c *Client) GetTree(ctx context.Context, owner, name, ref string) (*Tree, error) {
	path := repoPath(owner, name) + "/git/trees/" + url.PathEscape(ref)
	body, err := c.get(ctx, path, url.Values{"recursive": {"1"}}, false)
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := decodeInto(body, &tree, "tree"); err != nil {
		return nil, err
	}
	return &tree, nil
}

// SearchRepositories searches repositories matching query, ordered
// descending by sort (or by relevance when sort is empty).
//
// With an explicit page, exactly one request is issued and its item list
// returned, optionally cached. With page == [PageAll], a probe request at
// page 1 discovers the total page count from the pagination metadata (capped
// at 10 pages), the remaining pages are fetched sequentially, and all items
// are concatenated in page order; nothing is cached in this mode.
func (c *Client) SearchRepositories(ctx context.Context, query, sortBy string, perPage, page int, cache bool) ([]Repository, error) {
	if page == PageAll {
		return c.searchAllPages(ctx, query, sortBy)
	}

	params := searchParams(query, sortBy, perPage, page)
	body, err := c.get(ctx, "/search/repositories", params, cache)
	if err != nil {
		return nil, err
	}
	var sr searchResponse
	if err := decodeInto(body, &sr, "search results"); err != nil {
		return nil, err
	}
	return sr.Items, nil
}

func (c *Client) searchAllPages(ctx context.Context, query, sortBy string) ([]Repository, error) {
	params := searchParams(query, sortBy, searchPageSize, 1)
	raw, err := c.getRaw(ctx, "/search/repositories", params)
	if err != nil {
		return nil, err
	}

	lastPage := min(raw.LastPage(), maxSearchPages)

	var sr searchResponse
	if err := decodeInto(raw.Body, &sr, "search results"); err != nil {
		return nil, err
	}
	items := sr.Items

	// Page 1 is already in hand; fetch the rest sequentially.
	for page := 2; page <= lastPage; page++ {
		more, err := c.SearchRepositories(ctx, query, sortBy, searchPageSize, page, false)
		if err != nil {
			return nil, err
		}
		items = append(items, more...)
	}
	return items, nil
}

func searchParams(query, sortBy string, perPage, page int) url.Values {
	params := url.Values{
		"q":        {query},
		"order":    {"desc"},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	if sortBy != "" {
		params.Set("sort", sortBy)
	}
	return params
}

// ReleaseOptions controls GetReleases filtering and sampling.
type ReleaseOptions struct {
	// StableOnly drops releases flagged prerelease or draft.
	StableOnly bool

	// TimeSpaced samples the list down to Count releases spread evenly
	// over the observed time span. Has no effect when the list is already
	// no longer than Count.
	TimeSpaced bool

	// Count is the target sample size when TimeSpaced is set.
	Count int
}

// GetReleases pages through all releases of a repository, accumulating until
// an empty page is returned, then applies the stable filter, sorts ascending
// by effective date, and optionally samples the list down to a time-evenly-
// spaced subset.
func (c *Client) GetReleases(ctx context.Context, owner, name string, opts ReleaseOptions) ([]Release, error) {
	path := repoPath(owner, name) + "/releases"

	var releases []Release
	for page := 1; page <= maxReleasePages; page++ {
		params := url.Values{
			"per_page": {strconv.Itoa(searchPageSize)},
			"page":     {strconv.Itoa(page)},
		}
		body, err := c.get(ctx, path, params, false)
		if err != nil {
			return nil, err
		}
		var pageReleases []Release
		if err := decodeInto(body, &pageReleases, "releases"); err != nil {
			return nil, err
		}
		if len(pageReleases) == 0 {
			break
		}
		releases = append(releases, pageReleases...)
	}

	if opts.StableOnly {
		stable := releases[:0]
		for _, r := range releases {
			if r.Stable() {
				stable = append(stable, r)
			}
		}
		releases = stable
	}

	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].EffectiveDate().Before(releases[j].EffectiveDate())
	})

	if opts.TimeSpaced && len(releases) > opts.Count && opts.Count >= 2 {
		releases = sample.Spaced(releases, opts.Count)
	}
	return releases, nil
}

// ReleaseCount returns the total number of releases of a repository.
func (c *Client) ReleaseCount(ctx context.Context, owner, name string) (int, error) {
	return c.count(ctx, repoPath(owner, name)+"/releases", nil)
}

// ContributorCount returns the total number of contributors, anonymous ones
// included.
func (c *Client) ContributorCount(ctx context.Context, owner, name string) (int, error) {
	return c.count(ctx, repoPath(owner, name)+"/contributors", url.Values{"anon": {"true"}})
}

// CommitCount returns the total number of commits on the default branch.
func (c *Client) CommitCount(ctx context.Context, owner, name string) (int, error) {
	return c.count(ctx, repoPath(owner, name)+"/commits", nil)
}

// IssueCount returns the total number of issues, open and closed.
func (c *Client) IssueCount(ctx context.Context, owner, name string) (int, error) {
	return c.count(ctx, repoPath(owner, name)+"/issues", url.Values{"state": {"all"}})
}

// count requests page 1 of a list endpoint with per_page=1 in raw mode. At
// one item per page, the rel="last" page number equals the total item count;
// when the response has no pagination metadata the list fits on that single
// page and its literal length (0 or 1) is the count.
func (c *Client) count(ctx context.Context, path string, params url.Values) (int, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("per_page", "1")

	raw, err := c.getRaw(ctx, path, params)
	if err != nil {
		return 0, err
	}
	if n := raw.LastPage(); n != -1 {
		return n, nil
	}

	var items []json.RawMessage
	if err := decodeInto(raw.Body, &items, "count probe"); err != nil {
		return 0, err
	}
	return len(items), nil
}

// FileCount returns the number of files in the recursive tree at the
// repository's default branch.
func (c *Client) FileCount(ctx context.Context, owner, name, defaultBranch string) (int, error) {
	tree, err := c.GetTree(ctx, owner, name, defaultBranch)
	if err != nil {
		return 0, err
	}
	files := 0
	for _, entry := range tree.Entries {
		if entry.IsFile() {
			files++
		}
	}
	return files, nil
}

