package ask

import (
	"sort"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// mergeByScore concatenates per-collection hit lists, orders them by
// descending similarity, and truncates to k. The sort is stable, so hits with
// equal scores keep the order of their source lists.
func mergeByScore(k int, lists ...[]domain.Hit) []domain.Hit {
	var total int
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]domain.Hit, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}
