// Package collection accumulates repository summaries and per-release
// language matrices in lockstep and persists them as a CSV folder snapshot.
package collection

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/tbouvier/repolang/pkg/errs"
	"github.com/tbouvier/repolang/pkg/github"
	"github.com/tbouvier/repolang/pkg/langmatrix"
	"github.com/tbouvier/repolang/pkg/table"
)

// Store holds the collected dataset: one summary row and one language
// matrix per repository, keyed by "owner/name". The two sides stay in
// lockstep; a key is present in both or in neither.
type Store struct {
	// Logger receives collection progress. Defaults to log.Default().
	Logger *log.Logger

	summary  *table.Table
	matrices map[string]*table.Table
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Logger:   log.Default(),
		summary:  newSummaryTable(),
		matrices: make(map[string]*table.Table),
	}
}

// Contains reports whether the repository key is already collected.
func (s *Store) Contains(key string) bool {
	_, ok := s.matrices[key]
	return ok
}

// Len returns the number of collected repositories.
func (s *Store) Len() int {
	return len(s.matrices)
}

// Keys returns the collected repository keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.matrices))
	for k := range s.matrices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Matrix returns the language matrix for key, if collected.
func (s *Store) Matrix(key string) (*table.Table, bool) {
	t, ok := s.matrices[key]
	return t, ok
}

// SummaryTable exposes the summary table for read-only inspection.
func (s *Store) SummaryTable() *table.Table {
	return s.summary
}

// Remove drops the repository from both sides of the store. Removing an
// absent key is a no-op.
func (s *Store) Remove(key string) error {
	if _, err := s.summary.DeleteWhere(KeyColumn, key); err != nil {
		return err
	}
	delete(s.matrices, key)
	return nil
}

// AddLanguageHistory samples the repository's stable releases and builds one
// matrix row per sampled release. Releases whose trees are empty or gone are
// skipped, and a release the sampler selected more than once (possible when
// all releases fall within a single day) contributes a single row. The
// matrix is registered only when at least one row was built, and the return
// value reports whether that happened.
func (s *Store) AddLanguageHistory(ctx context.Context, gw *github.Client, b *langmatrix.Builder, repo github.Repository, sampleSize int) (bool, error) {
	releases, err := gw.GetReleases(ctx, repo.Owner.Login, repo.Name, github.ReleaseOptions{
		StableOnly: true,
		TimeSpaced: true,
		Count:      sampleSize,
	})
	if err != nil {
		return false, err
	}
	if len(releases) == 0 {
		return false, nil
	}

	t := langmatrix.NewTable()
	rows := 0
	seen := make(map[string]bool, len(releases))
	for _, rel := range releases {
		if seen[rel.TagName] {
			continue
		}
		seen[rel.TagName] = true
		row, err := b.BuildRow(ctx, repo.Owner.Login, repo.Name, rel)
		if err != nil {
			code := errs.GetCode(err)
			if code == errs.ErrCodeEmptyTree || code == errs.ErrCodeNotFound {
				s.Logger.Debug("skipping release", "repo", repo.FullName, "tag", rel.TagName, "reason", code)
				continue
			}
			return false, err
		}
		if err := row.AppendTo(t); err != nil {
			return false, err
		}
		rows++
	}
	if rows == 0 {
		return false, nil
	}
	s.matrices[repo.FullName] = t
	return true, nil
}

// AppendSummary collects the summary counts for repo and appends the row.
// The caller is expected to have built the language matrix first; on error
// nothing is appended.
func (s *Store) AppendSummary(ctx context.Context, gw *github.Client, repo github.Repository) error {
	sum, err := buildSummary(ctx, gw, repo)
	if err != nil {
		return err
	}
	return s.summary.Append(sum.Record())
}

// CollectOptions controls a single query sweep.
type CollectOptions struct {
	// Query is the search expression, e.g. "topic:machine-learning".
	Query string
	// Sort orders the search results ("stars", "forks", "updated"); empty
	// means GitHub's default relevance order.
	Sort string
	// Update recollects repositories already in the store instead of
	// skipping them.
	Update bool
	// MaxRepositories caps how many search results are considered.
	MaxRepositories int
	// ReleaseSampleSize bounds the number of releases per matrix.
	ReleaseSampleSize int
	// ContinueOnError logs and skips a repository whose collection fails
	// instead of aborting the sweep.
	ContinueOnError bool
}

// DefaultMaxRepositories bounds a query sweep when no cap is given.
const DefaultMaxRepositories = 1000

// DefaultReleaseSampleSize is the per-repository release budget when no
// sample size is given.
const DefaultReleaseSampleSize = 12

// CollectForQuery searches for repositories matching opts.Query and collects
// each one: language matrix first, then the summary row, keeping both sides
// in lockstep. Repositories already in the store are skipped unless
// opts.Update is set, in which case they are removed and recollected. It
// returns the number of repositories actually collected.
func (s *Store) CollectForQuery(ctx context.Context, gw *github.Client, opts CollectOptions) (int, error) {
	if opts.Query == "" {
		return 0, errs.New(errs.ErrCodeInvalidInput, "search query must not be empty")
	}
	if opts.MaxRepositories <= 0 {
		opts.MaxRepositories = DefaultMaxRepositories
	}
	if opts.ReleaseSampleSize <= 0 {
		opts.ReleaseSampleSize = DefaultReleaseSampleSize
	}

	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	builder := langmatrix.NewBuilder(gw)

	repos, err := gw.SearchRepositories(ctx, opts.Query, opts.Sort, 100, github.PageAll, false)
	if err != nil {
		return 0, err
	}
	if len(repos) > opts.MaxRepositories {
		repos = repos[:opts.MaxRepositories]
	}
	logger.Info("collecting query", "query", opts.Query, "sort", opts.Sort, "candidates", len(repos))

	processed := 0
	for _, repo := range repos {
		key := repo.FullName
		if err := errs.ValidateFullName(key); err != nil {
			logger.Warn("skipping repository with unusable name", "repo", key, "err", err)
			continue
		}
		if s.Contains(key) {
			if !opts.Update {
				logger.Debug("already collected", "repo", key)
				continue
			}
			if err := s.Remove(key); err != nil {
				return processed, err
			}
		}

		ok, err := s.AddLanguageHistory(ctx, gw, builder, repo, opts.ReleaseSampleSize)
		if err != nil {
			if opts.ContinueOnError {
				logger.Warn("language history failed", "repo", key, "err", err)
				continue
			}
			return processed, err
		}
		if !ok {
			logger.Debug("no usable releases", "repo", key)
			continue
		}

		if err := s.AppendSummary(ctx, gw, repo); err != nil {
			// Keep lockstep: the matrix registered above must not outlive
			// a failed summary.
			delete(s.matrices, key)
			if opts.ContinueOnError {
				logger.Warn("summary failed", "repo", key, "err", err)
				continue
			}
			return processed, err
		}

		processed++
		logger.Info("collected", "repo", key, "progress", processed)
	}
	return processed, nil
}
