package analyze

import (
	"fmt"
	"time"

	"PoolScanner/internal/domain"
)

// Issue type keys for the quality histogram.
const (
	IssueMissingData = "missing_data"
	IssueTimeRange   = "time_validation"
	IssueDateWindow  = "date_validation"
	IssueSwimType    = "swim_type_validation"
)

// Acceptable date window relative to today.
const (
	MaxDaysInPast   = 30
	MaxDaysInFuture = 180
)

// Issue is one validation finding on one session.
type Issue struct {
	Type        string
	Description string
}

// ValidateSession runs every check and accumulates all applicable issues
// instead of stopping at the first. A session is valid iff it has none.
func ValidateSession(session domain.CanonicalSession, today time.Time) []Issue {
	var issues []Issue

	if session.FacilityID == "" && session.FacilityRef == "" {
		issues = append(issues, Issue{IssueMissingData, "missing facility reference"})
	}
	if session.Date.IsZero() {
		issues = append(issues, Issue{IssueMissingData, "missing date"})
	}
	if session.Start.IsZero() {
		issues = append(issues, Issue{IssueMissingData, "missing start time"})
	}
	if session.End.IsZero() {
		issues = append(issues, Issue{IssueMissingData, "missing end time"})
	}
	if session.SwimType == "" {
		issues = append(issues, Issue{IssueMissingData, "missing swim type"})
	}

	if !session.Start.IsZero() && !session.End.IsZero() && !session.End.After(session.Start) {
		issues = append(issues, Issue{IssueTimeRange,
			fmt.Sprintf("invalid time range: %s - %s", session.Start, session.End)})
	}

	if !session.Date.IsZero() {
		days := int(session.Date.Sub(midnight(today)).Hours() / 24)
		if days < -MaxDaysInPast {
			issues = append(issues, Issue{IssueDateWindow,
				fmt.Sprintf("date is in the past: %s", session.Date.Format("2006-01-02"))})
		} else if days > MaxDaysInFuture {
			issues = append(issues, Issue{IssueDateWindow,
				fmt.Sprintf("date is too far in future: %s", session.Date.Format("2006-01-02"))})
		}
	}

	if session.SwimType != "" && !isPersistableType(session.SwimType) {
		issues = append(issues, Issue{IssueSwimType,
			fmt.Sprintf("unknown swim type: %s", session.SwimType)})
	}

	return issues
}

func isPersistableType(swimType domain.SwimType) bool {
	for _, known := range domain.PersistableSwimTypes {
		if swimType == known {
			return true
		}
	}
	return false
}

// BuildQualityReport validates every session and aggregates counts, an
// issue-type histogram, a scalar quality score, and recommendations.
func BuildQualityReport(sessions []domain.CanonicalSession, today time.Time) domain.QualityReport {
	report := domain.QualityReport{
		TotalSessions: len(sessions),
		IssuesByType:  map[string]int{},
	}

	for _, session := range sessions {
		issues := ValidateSession(session, today)
		if len(issues) == 0 {
			report.ValidSessions++
			continue
		}
		report.InvalidSessions++
		for _, issue := range issues {
			report.IssuesByType[issue.Type]++
		}
	}

	if report.TotalSessions > 0 {
		report.QualityScore = float64(report.ValidSessions) / float64(report.TotalSessions)
	}

	if report.QualityScore < 0.9 && report.TotalSessions > 0 {
		report.Recommendations = append(report.Recommendations,
			"Data quality is below 90%. Review parsing logic.")
	}
	if report.IssuesByType[IssueMissingData] > report.TotalSessions/10 {
		report.Recommendations = append(report.Recommendations,
			"High rate of missing data. Check source data completeness.")
	}
	if report.IssuesByType[IssueTimeRange] > 0 {
		report.Recommendations = append(report.Recommendations,
			"Time validation errors detected. Review time parsing logic.")
	}

	return report
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
