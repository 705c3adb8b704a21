package search

import (
	"math"

	"github.com/lagunalab/cartodex/internal/domain/search/result"
)

// normalizeScores standardizes one source's scores in place:
// score' = (score - mean) / stddev (population stddev). After this, scores
// from differently calibrated encoders are comparable.
//
// Sets with fewer than two items, or with zero variance, are left untouched.
// That is a known precision loss for tiny result sets, not an error: there is
// no distribution to standardize against.
func normalizeScores(items []result.Item) {
	if len(items) < 2 {
		return
	}

	var sum float64
	for _, it := range items {
		sum += it.Score
	}
	mean := sum / float64(len(items))

	var variance float64
	for _, it := range items {
		d := it.Score - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(items)))
	if std == 0 {
		return
	}

	for i := range items {
		items[i].Score = (items[i].Score - mean) / std
	}
}
