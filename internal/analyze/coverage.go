package analyze

import (
	"fmt"
	"sort"

	"PoolScanner/internal/domain"
)

// Operating hours the coverage scan expects sessions within.
const (
	coverageFirstHour = 6
	coverageLastHour  = 22
)

// lowCoverageRatio flags weekdays whose session count is materially
// below the mean across covered days.
const lowCoverageRatio = 0.5

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AnalyzeCoverage reports how sessions spread across weekdays and hours,
// the busiest hours, and gaps: uncovered operating hours and weekdays
// well below the mean. Independent of validation and conflict detection.
func AnalyzeCoverage(sessions []domain.CanonicalSession) domain.CoverageReport {
	if len(sessions) == 0 {
		return domain.CoverageReport{ByWeekday: map[string]int{}, ByHour: map[int]int{}}
	}

	report := domain.CoverageReport{
		TotalSessions: len(sessions),
		ByWeekday:     map[string]int{},
		ByHour:        map[int]int{},
	}

	facilities := map[string]bool{}
	for _, session := range sessions {
		facilities[session.FacilityKey()] = true
		report.ByWeekday[weekdayName(session)]++
		report.ByHour[session.Start.Hour]++

		if report.FirstDate.IsZero() || session.Date.Before(report.FirstDate) {
			report.FirstDate = session.Date
		}
		if session.Date.After(report.LastDate) {
			report.LastDate = session.Date
		}
	}
	report.FacilityCount = len(facilities)

	report.PeakHours = peakHours(report.ByHour, 5)
	report.Gaps = findGaps(report.ByWeekday, report.ByHour)
	return report
}

func weekdayName(session domain.CanonicalSession) string {
	// time.Weekday is Sunday-first; names here are Monday-first.
	return weekdayNames[(int(session.Date.Weekday())+6)%7]
}

func peakHours(byHour map[int]int, top int) []domain.HourCount {
	counts := make([]domain.HourCount, 0, len(byHour))
	for hour, count := range byHour {
		counts = append(counts, domain.HourCount{Hour: hour, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Hour < counts[j].Hour
	})
	if len(counts) > top {
		counts = counts[:top]
	}
	return counts
}

func findGaps(byWeekday map[string]int, byHour map[int]int) []domain.CoverageGap {
	var gaps []domain.CoverageGap

	for hour := coverageFirstHour; hour <= coverageLastHour; hour++ {
		if byHour[hour] == 0 {
			gaps = append(gaps, domain.CoverageGap{
				Type:        "time_gap",
				Hour:        hour,
				Description: fmt.Sprintf("No sessions at %02d:00", hour),
			})
		}
	}

	total := 0
	for _, count := range byWeekday {
		total += count
	}
	if len(byWeekday) == 0 {
		return gaps
	}
	mean := float64(total) / float64(len(byWeekday))

	for _, day := range weekdayNames {
		count, covered := byWeekday[day]
		if !covered {
			continue
		}
		if float64(count) < mean*lowCoverageRatio {
			gaps = append(gaps, domain.CoverageGap{
				Type:        "low_coverage",
				Weekday:     day,
				Count:       count,
				Description: fmt.Sprintf("Low coverage on %s (%d sessions vs %.1f avg)", day, count, mean),
			})
		}
	}
	return gaps
}
