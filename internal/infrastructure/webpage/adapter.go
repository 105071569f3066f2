package webpage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/expand"
	"PoolScanner/internal/httpx"
	"PoolScanner/internal/source"
)

// Page names one facility page carrying an HTML schedule grid.
type Page struct {
	FacilityName string
	URL          string
}

// Adapter scrapes facility pages whose schedule is a week-labeled grid:
// a header row mapping column index to weekday, then one row per program
// with zero or more stacked "HH:MM - HH:MM" fragments per weekday cell.
type Adapter struct {
	pages  []Page
	client *httpx.Client
	logger *slog.Logger
}

var _ source.Source = (*Adapter)(nil)

var (
	weekOfPattern = regexp.MustCompile(`(?i)for the week of\s+(\d{4}-\d{2}-\d{2})`)
	scheduleWords = []string{"swim", "lane", "time", "monday", "tuesday", "wednesday"}
)

// New wires the HTML adapter for a configured set of facility pages.
func New(pages []Page, client *httpx.Client, logger *slog.Logger) *Adapter {
	if client == nil {
		client = httpx.New(0)
	}
	return &Adapter{pages: pages, client: client, logger: logger}
}

// Name identifies the adapter inside the registry.
func (a *Adapter) Name() string {
	return "web_page"
}

// Fetch scrapes every configured page; a broken page is skipped and the
// rest still produce records.
func (a *Adapter) Fetch(ctx context.Context, req source.Request) ([]domain.RawCourseRecord, error) {
	var records []domain.RawCourseRecord
	failures := 0

	for _, page := range a.pages {
		fetched, err := a.scrapePage(ctx, page)
		if err != nil {
			a.warn("page scrape failed", "page", page.URL, "error", err)
			failures++
			continue
		}
		records = append(records, fetched...)
	}

	if failures == len(a.pages) && len(a.pages) > 0 {
		return nil, fmt.Errorf("all %d pages failed", failures)
	}
	return records, nil
}

func (a *Adapter) scrapePage(ctx context.Context, page Page) ([]domain.RawCourseRecord, error) {
	body, err := a.client.Get(ctx, page.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	// "For the week of YYYY-MM-DD" anchors the grid to concrete dates.
	var weekStart time.Time
	if m := weekOfPattern.FindStringSubmatch(doc.Text()); m != nil {
		if parsed, err := time.Parse("2006-01-02", m[1]); err == nil {
			weekStart = parsed
		}
	}

	var records []domain.RawCourseRecord
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if !isScheduleTable(table) {
			return
		}
		records = append(records, a.parseGrid(table, page, weekStart)...)
	})

	a.debug("page scraped", "page", page.URL, "records", len(records))
	return records, nil
}

// isScheduleTable keeps the scan away from navigation and layout tables.
func isScheduleTable(table *goquery.Selection) bool {
	text := strings.ToLower(table.Text())
	hits := 0
	for _, word := range scheduleWords {
		if strings.Contains(text, word) {
			hits++
		}
	}
	return hits >= 3
}

func (a *Adapter) parseGrid(table *goquery.Selection, page Page, weekStart time.Time) []domain.RawCourseRecord {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	// Header row: column index to weekday.
	dayByColumn := map[int]time.Weekday{}
	rows.First().Find("th, td").Each(func(column int, cell *goquery.Selection) {
		if days := expand.ParseWeekdays(cell.Text()); len(days) == 1 {
			dayByColumn[column] = days[0]
		}
	})
	if len(dayByColumn) == 0 {
		return nil
	}

	var records []domain.RawCourseRecord
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}

		program := strings.TrimSpace(cells.First().Text())
		if program == "" {
			return
		}

		cells.Each(func(column int, cell *goquery.Selection) {
			day, ok := dayByColumn[column]
			if !ok {
				return
			}

			// A cell may stack several time slots; unparsable fragments
			// are skipped, never fatal.
			for _, slot := range expand.ParseTimeRanges(cell.Text()) {
				record := domain.RawCourseRecord{
					Title:        program,
					LocationName: page.FacilityName,
					Source:       a.Name(),
				}
				slotText := fmt.Sprintf("%s - %s", slot.Start, slot.End)
				if weekStart.IsZero() {
					record.ScheduleText = fmt.Sprintf("%s %s", day, slotText)
				} else {
					record.Date = weekStart.AddDate(0, 0, mondayOffset(day))
					record.TimeText = slotText
				}
				records = append(records, record)
			}
		})
	})
	return records
}

func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Adapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
