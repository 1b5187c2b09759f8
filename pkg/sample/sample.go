// Package sample selects time-evenly-spaced subsets of chronologically
// sorted items.
//
// The collector keeps only a fixed number of releases per repository and
// wants them approximately evenly distributed across the repository's
// lifetime, so that the language matrix covers the whole observed span
// instead of clustering around recent releases.
package sample

import (
	"math"
	"time"
)

// Dated is implemented by items carrying an effective timestamp.
type Dated interface {
	EffectiveDate() time.Time
}

// Spaced selects target items from a chronologically ascending list so that
// their dates are approximately evenly spread over the observed span.
//
// The first and last items are always included. Each remaining slot i in
// [1, target-2] gets a target date of firstDate + floor(i*interval) days,
// where interval = span_days / (target-1), and selects the item whose
// effective date is nearest to it (first minimal match wins). Target dates
// are always anchored to the first item's date, never to the previously
// selected item; the candidate pool for every slot is the whole list minus
// the first item. The output preserves selection order and is not re-sorted,
// so it is not guaranteed to be monotonic when several slots resolve to the
// same neighborhood. When the whole span is shorter than a day, every
// interior slot resolves to the same nearest item and the output contains
// that item multiple times; deduplication is the caller's concern.
//
// Spaced is deterministic: identical input and target always produce the
// identical sequence. The caller must guarantee len(sorted) > target >= 2;
// shorter inputs are returned unchanged.
func Spaced[T Dated](sorted []T, target int) []T {
	if target < 2 || len(sorted) <= target {
		return sorted
	}

	first := sorted[0].EffectiveDate()
	last := sorted[len(sorted)-1].EffectiveDate()
	span := daysBetween(first, last)
	interval := float64(span) / float64(target-1)

	selected := make([]T, 0, target)
	selected = append(selected, sorted[0])

	for i := 1; i <= target-2; i++ {
		targetDate := first.AddDate(0, 0, int(float64(i)*interval))

		best := 1
		bestDist := absDays(sorted[1].EffectiveDate(), targetDate)
		for j := 2; j < len(sorted); j++ {
			if d := absDays(sorted[j].EffectiveDate(), targetDate); d < bestDist {
				best, bestDist = j, d
			}
		}
		selected = append(selected, sorted[best])
	}

	selected = append(selected, sorted[len(sorted)-1])
	return selected
}

// daysBetween returns the number of whole days from a to b, flooring the
// fractional remainder. Flooring, not truncation: an item 10 hours before a
// target date is a full day away, while one 10 hours after it is zero days
// away, so sub-day offsets on opposite sides of a target are not treated as
// equidistant.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

func absDays(a, b time.Time) int {
	d := daysBetween(b, a)
	if d < 0 {
		return -d
	}
	return d
}
