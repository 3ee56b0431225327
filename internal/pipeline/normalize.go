package pipeline

import (
	"sort"

	"github.com/dkaraca/briefly/internal/models"
)

// Normalize merges fetcher outputs into one ordered collection. Failure
// placeholders with no usable content are dropped; degraded-but-usable
// fallback items are kept. The result is sorted newest first by publish
// time, falling back to fetch time, with the original fetch order as a
// stable tie-break.
func Normalize(groups ...[]models.Article) []models.Article {
	var merged []models.Article
	for _, group := range groups {
		for _, art := range group {
			if art.Usable() {
				merged = append(merged, art)
			}
		}
	}

	// URLs are unique after normalization; last fetch wins.
	seen := make(map[string]bool, len(merged))
	deduped := make([]models.Article, 0, len(merged))
	for i := len(merged) - 1; i >= 0; i-- {
		if seen[merged[i].URL] {
			continue
		}
		seen[merged[i].URL] = true
		deduped = append(deduped, merged[i])
	}
	for i, j := 0, len(deduped)-1; i < j; i, j = i+1, j-1 {
		deduped[i], deduped[j] = deduped[j], deduped[i]
	}
	merged = deduped

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EffectiveTime().After(merged[j].EffectiveTime())
	})
	return merged
}
