package memstore

import "sort"

// collapseLatest folds candidate rows down to the single current version
// per logical ID. The table is an append-only log, so several physical
// rows can share an ID; only the newest one may be returned.
//
// Rules, applied in encounter order:
//   - a versioned row replaces the kept row for its ID when there is no
//     kept row yet, when the kept row is legacy (no insert timestamp),
//     or when the kept row's insert timestamp is strictly earlier;
//   - a legacy row is kept only when no row for its ID has been seen;
//     it never replaces anything, so two legacy rows sharing an ID
//     resolve to the first one encountered.
func collapseLatest(candidates []SearchResult) []SearchResult {
	if len(candidates) == 0 {
		return nil
	}

	index := make(map[string]int, len(candidates))
	kept := make([]SearchResult, 0, len(candidates))

	for _, cand := range candidates {
		at, seen := index[cand.ID]
		if !seen {
			index[cand.ID] = len(kept)
			kept = append(kept, cand)
			continue
		}
		if !cand.Versioned() {
			continue
		}
		existing := kept[at]
		if !existing.Versioned() || existing.InsertTimestamp.Before(cand.InsertTimestamp) {
			kept[at] = cand
		}
	}

	return kept
}

// rankByScore orders results by descending score and truncates to
// limit. A zero score ranks last; the sort is stable so equal scores
// keep their fetch order.
func rankByScore(results []SearchResult, limit int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
