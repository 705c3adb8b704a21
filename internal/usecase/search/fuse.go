package search

import (
	"sort"

	"github.com/lagunalab/cartodex/internal/domain/search/result"
)

// fuse merges normalized per-source sets into one ranked list: concatenate,
// drop items at or below the relative threshold, stable-sort descending by
// score, truncate to limit.
//
// The relative threshold works on standardized scores, so a cutoff of 0
// keeps only above-average-for-their-source items; a source that found
// nothing relevant drops out entirely instead of padding the tail. The
// stable sort preserves concatenation order on exact ties, which keeps
// pagination deterministic.
func fuse(sets []result.SourceSet, relativeThreshold float64, limit int) []result.Item {
	var total int
	for _, s := range sets {
		total += len(s.Items)
	}

	merged := make([]result.Item, 0, total)
	for _, s := range sets {
		for _, it := range s.Items {
			if it.Score > relativeThreshold {
				merged = append(merged, it)
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
