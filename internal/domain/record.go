package domain

import "time"

// RawCourseRecord is the upstream-format-agnostic shape every source
// adapter produces. It lives only for one adapter-to-expander pass.
type RawCourseRecord struct {
	Title        string
	Category     string
	ScheduleText string

	// Explicit-date variant: some sources publish concrete dates with a
	// single time range instead of a weekday pattern.
	Date     time.Time
	TimeText string

	// Weekday-pattern variant bounds.
	StartDateText string
	EndDateText   string

	LocationID   string
	LocationName string
	Address      string
	PostalCode   string

	AgeMin string
	AgeMax string

	// Notes carries pre-built note text from sources that publish it
	// directly; when set it wins over the derived age/category notes.
	Notes string

	Source string
}

// HasExplicitDate reports which recurrence variant the record carries.
func (r RawCourseRecord) HasExplicitDate() bool {
	return !r.Date.IsZero()
}

// Field returns the first non-empty value among synonym column names.
// Upstream systems disagree on header spellings ("LocationID" vs
// "Location ID" vs "_id"); every adapter resolves fields through this
// one helper instead of per-adapter fallback chains.
func Field(record map[string]string, names ...string) string {
	for _, name := range names {
		if value := record[name]; value != "" {
			return value
		}
	}
	return ""
}
