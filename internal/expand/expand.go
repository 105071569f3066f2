package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"PoolScanner/internal/domain"
)

// weekdayTokens maps schedule-text tokens to time.Weekday. Both full
// names and the abbreviations upstream sources actually use.
var weekdayTokens = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// orderedWeekdays is Monday-first, the order session dates are grouped in.
var orderedWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var (
	timeRangePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM)?)\s*(?:-|–|\bto\b)\s*(\d{1,2}:\d{2}\s*(?:AM|PM)?)`)
	designatorExpr   = regexp.MustCompile(`(?i)(AM|PM)`)
	wordExpr         = regexp.MustCompile(`[a-zA-Z]+`)
)

var dateFormats = []string{"2006-01-02", "01/02/2006", "02-01-2006", "2006/01/02"}

// TimeRange is a parsed start/end pair within one day.
type TimeRange struct {
	Start domain.TimeOfDay
	End   domain.TimeOfDay
}

// ParseWeekdays extracts weekdays named anywhere in schedule text.
// Duplicates collapse, unknown tokens are ignored, and the result is
// Monday-first regardless of input order.
func ParseWeekdays(text string) []time.Weekday {
	if text == "" {
		return nil
	}

	found := map[time.Weekday]bool{}
	for _, word := range wordExpr.FindAllString(strings.ToLower(text), -1) {
		if day, ok := weekdayTokens[word]; ok {
			found[day] = true
		}
	}

	var days []time.Weekday
	for _, day := range orderedWeekdays {
		if found[day] {
			days = append(days, day)
		}
	}
	return days
}

// ParseTime parses "10:00 AM", "10:00AM", or 24-hour "22:00".
func ParseTime(text string) (domain.TimeOfDay, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(text))

	designator := ""
	if m := designatorExpr.FindString(cleaned); m != "" {
		designator = m
		cleaned = strings.TrimSpace(designatorExpr.ReplaceAllString(cleaned, ""))
	}

	parts := strings.SplitN(cleaned, ":", 2)
	if len(parts) != 2 {
		return domain.TimeOfDay{}, fmt.Errorf("unparsable time %q", text)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.TimeOfDay{}, fmt.Errorf("unparsable time %q", text)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return domain.TimeOfDay{}, fmt.Errorf("unparsable time %q", text)
	}

	switch designator {
	case "AM":
		if hour < 1 || hour > 12 {
			return domain.TimeOfDay{}, fmt.Errorf("hour out of range in %q", text)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return domain.TimeOfDay{}, fmt.Errorf("hour out of range in %q", text)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return domain.TimeOfDay{}, fmt.Errorf("hour out of range in %q", text)
		}
	}

	return domain.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeRanges finds every "start - end" pair in schedule text. When
// one side of a pair omits AM/PM it inherits the designator from its
// sibling; this is real upstream behavior, not a defect to repair.
// Pairs with end <= start are rejected.
func ParseTimeRanges(text string) []TimeRange {
	if text == "" {
		return nil
	}

	var ranges []TimeRange
	for _, match := range timeRangePattern.FindAllStringSubmatch(text, -1) {
		startText, endText := match[1], match[2]

		startDesignator := designatorExpr.FindString(startText)
		endDesignator := designatorExpr.FindString(endText)
		if endDesignator == "" && startDesignator != "" {
			endText += " " + startDesignator
		}
		if startDesignator == "" && endDesignator != "" {
			startText += " " + endDesignator
		}

		start, err := ParseTime(startText)
		if err != nil {
			continue
		}
		end, err := ParseTime(endText)
		if err != nil {
			continue
		}
		if !end.After(start) {
			continue
		}
		ranges = append(ranges, TimeRange{Start: start, End: end})
	}
	return ranges
}

// ParseDate tries the date layouts upstream sources publish.
func ParseDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// SessionDates enumerates every date in [effectiveStart, effectiveStart +
// horizonWeeks weeks) whose weekday is in days, where effectiveStart is
// the later of today and declaredStart. A declared end date caps the
// window when it falls earlier; the horizon bound itself is exclusive.
func SessionDates(days []time.Weekday, declaredStart, declaredEnd, today time.Time, horizonWeeks int) []time.Time {
	if len(days) == 0 || horizonWeeks <= 0 {
		return nil
	}

	start := midnight(today)
	if declared := midnight(declaredStart); !declaredStart.IsZero() && declared.After(start) {
		start = declared
	}

	bound := start.AddDate(0, 0, 7*horizonWeeks)
	if !declaredEnd.IsZero() {
		if capped := midnight(declaredEnd).AddDate(0, 0, 1); capped.Before(bound) {
			bound = capped
		}
	}

	wanted := map[time.Weekday]bool{}
	for _, day := range days {
		wanted[day] = true
	}

	var dates []time.Time
	for current := start; current.Before(bound); current = current.AddDate(0, 0, 1) {
		if wanted[current.Weekday()] {
			dates = append(dates, current)
		}
	}
	return dates
}

// ProjectDates handles the explicit-date recurrence variant: the given
// date plus whole-week forward projections, bounding drift when the
// upstream source itself only covers one week.
func ProjectDates(date time.Time, weeks int) []time.Time {
	if date.IsZero() || weeks <= 0 {
		return nil
	}
	base := midnight(date)
	dates := make([]time.Time, 0, weeks)
	for i := 0; i < weeks; i++ {
		dates = append(dates, base.AddDate(0, 0, 7*i))
	}
	return dates
}

// Expand turns one classified record into dated canonical sessions, one
// per weekday-date and time-range combination. It is pure: today is an
// explicit parameter and identical inputs yield the identical ordered
// set.
func Expand(record domain.RawCourseRecord, classification domain.Classification, today time.Time, horizonWeeks int) []domain.CanonicalSession {
	var dates []time.Time
	var ranges []TimeRange

	if record.HasExplicitDate() {
		dates = ProjectDates(record.Date, horizonWeeks)
		ranges = ParseTimeRanges(record.TimeText)
	} else {
		days := ParseWeekdays(record.ScheduleText)
		declaredStart, _ := ParseDate(record.StartDateText)
		declaredEnd, _ := ParseDate(record.EndDateText)
		dates = SessionDates(days, declaredStart, declaredEnd, today, horizonWeeks)
		ranges = ParseTimeRanges(record.ScheduleText)
	}

	if len(dates) == 0 || len(ranges) == 0 {
		return nil
	}

	notes := buildNotes(record)

	sessions := make([]domain.CanonicalSession, 0, len(dates)*len(ranges))
	for _, date := range dates {
		for _, slot := range ranges {
			sessions = append(sessions, domain.CanonicalSession{
				FacilityRef: record.LocationName,
				Title:       record.Title,
				SwimType:    classification.SwimType,
				Date:        date,
				Start:       slot.Start,
				End:         slot.End,
				Notes:       notes,
				Source:      record.Source,
			})
		}
	}
	return sessions
}

func buildNotes(record domain.RawCourseRecord) string {
	if record.Notes != "" {
		return record.Notes
	}
	var parts []string
	switch {
	case record.AgeMin != "" && record.AgeMax != "":
		parts = append(parts, fmt.Sprintf("Age: %s-%s", record.AgeMin, record.AgeMax))
	case record.AgeMin != "":
		parts = append(parts, fmt.Sprintf("Age: %s+", record.AgeMin))
	}
	if record.Category != "" {
		parts = append(parts, "Category: "+record.Category)
	}
	return strings.Join(parts, "; ")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
