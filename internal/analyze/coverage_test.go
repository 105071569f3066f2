package analyze

import (
	"testing"
	"time"

	"PoolScanner/internal/domain"
)

func TestAnalyzeCoverage(t *testing.T) {
	t.Parallel()

	monday := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	sessions := []domain.CanonicalSession{
		{FacilityID: "pool-a", Date: monday, Start: domain.TimeOfDay{Hour: 7}, End: domain.TimeOfDay{Hour: 8}},
		{FacilityID: "pool-a", Date: monday, Start: domain.TimeOfDay{Hour: 7, Minute: 30}, End: domain.TimeOfDay{Hour: 9}},
		{FacilityID: "pool-a", Date: monday, Start: domain.TimeOfDay{Hour: 9}, End: domain.TimeOfDay{Hour: 10}},
		{FacilityID: "pool-a", Date: monday, Start: domain.TimeOfDay{Hour: 10}, End: domain.TimeOfDay{Hour: 11}},
		{FacilityID: "pool-b", Date: tuesday, Start: domain.TimeOfDay{Hour: 18}, End: domain.TimeOfDay{Hour: 19}},
	}

	report := AnalyzeCoverage(sessions)

	if report.TotalSessions != 5 || report.FacilityCount != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.ByWeekday["Monday"] != 4 || report.ByWeekday["Tuesday"] != 1 {
		t.Fatalf("unexpected weekday counts: %v", report.ByWeekday)
	}
	if report.ByHour[7] != 2 || report.ByHour[18] != 1 {
		t.Fatalf("unexpected hour counts: %v", report.ByHour)
	}
	if !report.FirstDate.Equal(monday) || !report.LastDate.Equal(tuesday) {
		t.Fatalf("unexpected date range: %v - %v", report.FirstDate, report.LastDate)
	}

	if len(report.PeakHours) == 0 || report.PeakHours[0].Hour != 7 || report.PeakHours[0].Count != 2 {
		t.Fatalf("unexpected peak hours: %v", report.PeakHours)
	}

	// Hours 6, 8, 11..17 and 19..22 have no coverage.
	gapHours := map[int]bool{}
	lowDays := 0
	for _, gap := range report.Gaps {
		switch gap.Type {
		case "time_gap":
			gapHours[gap.Hour] = true
		case "low_coverage":
			lowDays++
		}
	}
	if !gapHours[6] || !gapHours[12] || gapHours[7] || gapHours[18] {
		t.Fatalf("unexpected gap hours: %v", gapHours)
	}
	// Tuesday (1 session) is below half the 2.5 mean.
	if lowDays != 1 {
		t.Fatalf("expected 1 low-coverage day, got %d", lowDays)
	}
}

func TestAnalyzeCoverageEmpty(t *testing.T) {
	t.Parallel()

	report := AnalyzeCoverage(nil)
	if report.TotalSessions != 0 || len(report.ByHour) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
