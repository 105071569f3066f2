package analyze

import (
	"sort"
	"time"

	"PoolScanner/internal/domain"
)

type groupKey struct {
	facility string
	date     time.Time
}

func groupByFacilityDate(sessions []domain.CanonicalSession) map[groupKey][]domain.CanonicalSession {
	groups := map[groupKey][]domain.CanonicalSession{}
	for _, session := range sessions {
		key := groupKey{facility: session.FacilityKey(), date: session.Date}
		groups[key] = append(groups[key], session)
	}
	return groups
}

func sortedKeys(groups map[groupKey][]domain.CanonicalSession) []groupKey {
	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].facility != keys[j].facility {
			return keys[i].facility < keys[j].facility
		}
		return keys[i].date.Before(keys[j].date)
	})
	return keys
}

// DetectConflicts finds temporally overlapping sessions at the same
// facility and date. Sessions are stably sorted by start time and
// adjacent pairs compared; the scan runs only after a facility's full
// batch is collected, never incrementally.
func DetectConflicts(sessions []domain.CanonicalSession) []domain.Conflict {
	groups := groupByFacilityDate(sessions)

	var conflicts []domain.Conflict
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Before(group[j].Start)
		})

		for i := 0; i+1 < len(group); i++ {
			first, second := group[i], group[i+1]
			if first.End.After(second.Start) {
				conflicts = append(conflicts, domain.Conflict{
					FacilityKey:    key.facility,
					Date:           key.date,
					First:          first,
					Second:         second,
					FirstTitle:     first.Title,
					SecondTitle:    second.Title,
					OverlapMinutes: first.End.Minutes() - second.Start.Minutes(),
				})
			}
		}
	}
	return conflicts
}

// Optimize resolves conflicts per facility/date group by a fixed priority
// order: lane swim beats other types, longer duration breaks ties. The
// highest-priority non-overlapping sessions are kept greedily; overlapping
// lower-priority ones are dropped. Returns the kept sessions and the
// number dropped. Callers wanting raw conflicts for manual review use
// DetectConflicts instead.
func Optimize(sessions []domain.CanonicalSession) ([]domain.CanonicalSession, int) {
	groups := groupByFacilityDate(sessions)

	conflicted := map[groupKey]bool{}
	for _, conflict := range DetectConflicts(sessions) {
		conflicted[groupKey{facility: conflict.FacilityKey, date: conflict.Date}] = true
	}
	if len(conflicted) == 0 {
		return sessions, 0
	}

	dropped := 0
	var kept []domain.CanonicalSession
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if !conflicted[key] {
			kept = append(kept, group...)
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			if pi, pj := priority(group[i]), priority(group[j]); pi != pj {
				return pi > pj
			}
			return group[i].DurationMinutes() > group[j].DurationMinutes()
		})

		var winners []domain.CanonicalSession
		for _, candidate := range group {
			if overlapsAny(candidate, winners) {
				dropped++
				continue
			}
			winners = append(winners, candidate)
		}

		sort.SliceStable(winners, func(i, j int) bool {
			return winners[i].Start.Before(winners[j].Start)
		})
		kept = append(kept, winners...)
	}
	return kept, dropped
}

func priority(session domain.CanonicalSession) int {
	if session.SwimType == domain.LaneSwim {
		return 2
	}
	return 1
}

func overlapsAny(candidate domain.CanonicalSession, kept []domain.CanonicalSession) bool {
	for _, other := range kept {
		if candidate.Start.Before(other.End) && candidate.End.After(other.Start) {
			return true
		}
	}
	return false
}
