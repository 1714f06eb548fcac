package inmatesearch

import (
	"sort"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// SelectSummaries keeps at most limit summaries, preferring the names most
// similar to query. The kept summaries stay in their original order. A limit
// of 0 or less keeps everything.
func SelectSummaries(summaries []booking.InmateSummary, query string, limit int) []booking.InmateSummary {
	if limit <= 0 || len(summaries) <= limit {
		return summaries
	}

	type scored struct {
		index      int
		similarity float64
	}

	normalizedQuery := textutil.NormalizeName(query)
	ranked := make([]scored, len(summaries))
	for i, s := range summaries {
		ranked[i] = scored{
			index:      i,
			similarity: matchr.JaroWinkler(normalizedQuery, textutil.NormalizeName(s.Name), false),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	keep := make([]bool, len(summaries))
	for _, r := range ranked[:limit] {
		keep[r.index] = true
	}
	out := make([]booking.InmateSummary, 0, limit)
	for i, s := range summaries {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}
