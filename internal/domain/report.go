package domain

import "time"

// Classification is the classifier's verdict for one raw record.
type Classification struct {
	IsSwim     bool
	SwimType   SwimType
	Confidence float64
	Tags       []string
	AgeGroup   string // empty means all ages
}

// Conflict records two temporally overlapping sessions at one
// facility/date and the size of the overlap.
type Conflict struct {
	FacilityKey    string           `json:"facility"`
	Date           time.Time        `json:"date"`
	First          CanonicalSession `json:"-"`
	Second         CanonicalSession `json:"-"`
	FirstTitle     string           `json:"session1"`
	SecondTitle    string           `json:"session2"`
	OverlapMinutes int              `json:"overlap_minutes"`
}

// QualityReport aggregates per-session validation results.
type QualityReport struct {
	TotalSessions   int            `json:"total_sessions"`
	ValidSessions   int            `json:"valid_sessions"`
	InvalidSessions int            `json:"invalid_sessions"`
	IssuesByType    map[string]int `json:"issues_by_type"`
	QualityScore    float64        `json:"quality_score"`
	Recommendations []string       `json:"recommendations"`
}

// CoverageGap flags an hour with no sessions or a weekday materially
// below the mean.
type CoverageGap struct {
	Type        string `json:"type"`
	Hour        int    `json:"hour,omitempty"`
	Weekday     string `json:"day,omitempty"`
	Count       int    `json:"count,omitempty"`
	Description string `json:"description"`
}

// CoverageReport describes how sessions spread over days and hours.
type CoverageReport struct {
	TotalSessions int            `json:"total_sessions"`
	FacilityCount int            `json:"facilities_count"`
	FirstDate     time.Time      `json:"first_date"`
	LastDate      time.Time      `json:"last_date"`
	ByWeekday     map[string]int `json:"coverage_by_day"`
	ByHour        map[int]int    `json:"coverage_by_hour"`
	PeakHours     []HourCount    `json:"peak_times"`
	Gaps          []CoverageGap  `json:"gaps"`
}

// HourCount pairs an hour of day with its session count.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// RunStats counts what happened during one pipeline run.
type RunStats struct {
	TotalPrograms       int            `json:"total_programs"`
	SwimPrograms        int            `json:"swim_programs"`
	SessionsGenerated   int            `json:"sessions_generated"`
	FacilitiesMatched   int            `json:"facilities_matched"`
	FacilitiesUnmatched int            `json:"facilities_unmatched"`
	ParseErrors         int            `json:"parsing_errors"`
	SourceFailures      map[string]int `json:"source_failures"`
	SessionsInserted    int            `json:"sessions_inserted"`
	SessionsSkipped     int            `json:"sessions_skipped"`
	SessionsRejected    int            `json:"sessions_rejected"`
	PersistErrors       int            `json:"persist_errors"`
	ConflictsResolved   int            `json:"conflicts_resolved"`
}

// RunReport is the exportable data product of one run.
type RunReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Stats      RunStats       `json:"stats"`
	Quality    QualityReport  `json:"quality_report"`
	Coverage   CoverageReport `json:"schedule_analysis"`
	Conflicts  []Conflict     `json:"conflicts"`
}
