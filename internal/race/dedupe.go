package race

import (
	"sort"
	"strings"
	"time"
)

// DedupeAndFilter folds the concatenation of stored, crawled, and curated
// records into the canonical list. Races dated strictly before today are
// dropped; races without a parseable date are retained (the date may simply
// not be published yet). The first match in the working set wins, so
// previously stored records keep their first-seen field values.
func DedupeAndFilter(races []Race, today time.Time) []Race {
	todayDate := today.UTC().Truncate(24 * time.Hour)

	var kept []Race
	for _, r := range races {
		if d, ok := ParseDate(r.StartDate); ok && d.Before(todayDate) {
			continue
		}
		merged := false
		for i := range kept {
			if SameEvent(kept[i], r) {
				kept[i].Merge(r)
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, r)
		}
	}

	Sort(kept)
	return kept
}

// Sort orders races by start date ascending, then name ascending
// case-insensitively. Races without a parseable date sort last.
func Sort(races []Race) {
	sort.SliceStable(races, func(i, j int) bool {
		di, okI := ParseDate(races[i].StartDate)
		dj, okJ := ParseDate(races[j].StartDate)
		switch {
		case okI && !okJ:
			return true
		case !okI && okJ:
			return false
		case okI && okJ && !di.Equal(dj):
			return di.Before(dj)
		}
		return strings.ToLower(races[i].Name) < strings.ToLower(races[j].Name)
	})
}
