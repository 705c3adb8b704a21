package search

import (
	"math"
	"testing"

	"github.com/lagunalab/cartodex/internal/domain/search/result"
)

func itemsWithScores(scores ...float64) []result.Item {
	items := make([]result.Item, len(scores))
	for i, s := range scores {
		items[i] = result.Item{ID: string(rune('a' + i)), Score: s}
	}
	return items
}

func TestNormalizeScores(t *testing.T) {
	items := itemsWithScores(0.9, 0.7, 0.5, 0.3, 0.1)

	normalizeScores(items)

	var sum float64
	for _, it := range items {
		sum += it.Score
	}
	mean := sum / float64(len(items))
	if math.Abs(mean) > 1e-9 {
		t.Errorf("mean after normalization = %v, want ~0", mean)
	}

	var variance float64
	for _, it := range items {
		variance += it.Score * it.Score
	}
	std := math.Sqrt(variance / float64(len(items)))
	if math.Abs(std-1) > 1e-9 {
		t.Errorf("stddev after normalization = %v, want ~1", std)
	}

	// Relative order must survive standardization.
	for i := 1; i < len(items); i++ {
		if items[i-1].Score <= items[i].Score {
			t.Errorf("order broken at %d: %v <= %v", i, items[i-1].Score, items[i].Score)
		}
	}
}

func TestNormalizeScoresSmallSets(t *testing.T) {
	empty := itemsWithScores()
	normalizeScores(empty)

	single := itemsWithScores(0.73)
	normalizeScores(single)
	if single[0].Score != 0.73 {
		t.Errorf("single-item score = %v, want unchanged 0.73", single[0].Score)
	}
}

func TestNormalizeScoresZeroVariance(t *testing.T) {
	items := itemsWithScores(0.5, 0.5, 0.5)
	normalizeScores(items)
	for i, it := range items {
		if it.Score != 0.5 {
			t.Errorf("item %d score = %v, want unchanged 0.5", i, it.Score)
		}
	}
}
