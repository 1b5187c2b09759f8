// Package langmatrix computes normalized per-language byte shares of a
// repository at its release snapshots.
//
// For every sampled release, the builder lists the recursive tree at the
// release tag, buckets file sizes by recognized extension, and normalizes
// each bucket by the total recognized bytes, producing one matrix row per
// release. Files with unrecognized extensions are ignored entirely; their
// bytes do not count toward the normalization denominator.
package langmatrix

import (
	"context"
	"math"
	"path"
	"strconv"
	"time"

	"github.com/tbouvier/repolang/pkg/errs"
	"github.com/tbouvier/repolang/pkg/github"
	"github.com/tbouvier/repolang/pkg/table"
)

// DateColumn is the first column of every language matrix.
const DateColumn = "date"

// dateFormat is the on-disk date layout for matrix rows.
const dateFormat = "2006-01-02"

// NewTable creates an empty language matrix table: a date column followed
// by one column per recognized extension, in [Extensions] order.
func NewTable() *table.Table {
	t, err := table.New(append([]string{DateColumn}, Extensions...))
	if err != nil {
		// Extensions is a compile-time constant list with unique entries.
		panic(err)
	}
	return t
}

// Row is one language matrix row: the byte share per extension at a single
// release, keyed by the release's effective date.
type Row struct {
	Date   time.Time
	Shares map[string]float64
}

// AppendTo appends the row to a matrix table, filling every extension the
// row does not populate with zero.
func (r *Row) AppendTo(t *table.Table) error {
	values := map[string]string{DateColumn: r.Date.Format(dateFormat)}
	for ext, share := range r.Shares {
		values[ext] = strconv.FormatFloat(share, 'g', -1, 64)
	}
	return t.AppendPartial(values, "0")
}

// Builder computes matrix rows through a GitHub gateway.
type Builder struct {
	client *github.Client
}

// NewBuilder creates a Builder backed by client.
func NewBuilder(client *github.Client) *Builder {
	return &Builder{client: client}
}

// BuildRow computes the language shares of a repository at one release.
//
// It fetches the recursive tree at the release tag, accumulates file sizes
// per recognized extension, and normalizes by the total recognized bytes,
// rounding each share to 4 decimal places. The shares of a row sum to 1.0
// within rounding tolerance.
//
// When the tree holds no recognized-language bytes at all, BuildRow returns
// an EMPTY_TREE error instead of dividing by zero; callers treat that as
// "skip this release", not as a failure.
func (b *Builder) BuildRow(ctx context.Context, owner, name string, release github.Release) (*Row, error) {
	tree, err := b.client.GetTree(ctx, owner, name, release.TagName)
	if err != nil {
		return nil, err
	}

	sizes := make(map[string]int64)
	var total int64
	for _, entry := range tree.Entries {
		if !entry.IsFile() {
			continue
		}
		ext := path.Ext(entry.Path)
		if !Supported(ext) {
			continue
		}
		sizes[ext] += entry.Size
		total += entry.Size
	}

	if total == 0 {
		return nil, errs.New(errs.ErrCodeEmptyTree,
			"release %s of %s/%s has no recognized-language bytes", release.TagName, owner, name)
	}

	shares := make(map[string]float64, len(sizes))
	for ext, size := range sizes {
		shares[ext] = round4(float64(size) / float64(total))
	}
	return &Row{Date: release.EffectiveDate(), Shares: shares}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
