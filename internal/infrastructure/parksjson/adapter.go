package parksjson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/httpx"
	"PoolScanner/internal/source"
)

// Location names one configured facility served by the per-location feed.
type Location struct {
	LocationID int
	Name       string
}

// Adapter reads the per-location JSON feed: an info document listing the
// published weeks, then one document per week with nested program, day,
// and time-slot levels. Payloads arrive as UTF-16LE or BOM-prefixed
// UTF-8 depending on the endpoint's mood.
type Adapter struct {
	baseURL   string
	locations []Location
	client    *httpx.Client
	logger    *slog.Logger
}

var _ source.Source = (*Adapter)(nil)

type infoDocument struct {
	Weeks []struct {
		Title string `json:"title"`
	} `json:"weeks"`
}

type weekDocument struct {
	Programs []struct {
		Program string `json:"program"`
		Days    []struct {
			Title string `json:"title"`
			Age   string `json:"age"`
			Times []struct {
				Day   string `json:"day"`
				Title string `json:"title"`
			} `json:"times"`
		} `json:"days"`
	} `json:"programs"`
}

var dayOffsets = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// New wires the JSON-feed adapter for a configured set of locations.
func New(baseURL string, locations []Location, client *httpx.Client, logger *slog.Logger) *Adapter {
	if client == nil {
		client = httpx.New(0)
	}
	return &Adapter{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		locations: locations,
		client:    client,
		logger:    logger,
	}
}

// Name identifies the adapter inside the registry.
func (a *Adapter) Name() string {
	return "parks_json"
}

// Fetch walks every configured location. A broken location is logged and
// skipped; the remaining locations still produce records.
func (a *Adapter) Fetch(ctx context.Context, req source.Request) ([]domain.RawCourseRecord, error) {
	var records []domain.RawCourseRecord
	failures := 0

	for _, location := range a.locations {
		fetched, err := a.fetchLocation(ctx, location, req.HorizonWeeks)
		if err != nil {
			a.warn("location feed failed", "location", location.Name, "error", err)
			failures++
			continue
		}
		records = append(records, fetched...)
	}

	if failures == len(a.locations) && len(a.locations) > 0 {
		return nil, fmt.Errorf("all %d location feeds failed", failures)
	}
	return records, nil
}

func (a *Adapter) fetchLocation(ctx context.Context, location Location, horizonWeeks int) ([]domain.RawCourseRecord, error) {
	var info infoDocument
	if err := a.getJSON(ctx, a.infoURL(location.LocationID), &info); err != nil {
		return nil, fmt.Errorf("fetch swim info: %w", err)
	}
	if len(info.Weeks) == 0 {
		return nil, fmt.Errorf("no published weeks for location %d", location.LocationID)
	}

	weeks := len(info.Weeks)
	if horizonWeeks > 0 && horizonWeeks < weeks {
		weeks = horizonWeeks
	}

	var records []domain.RawCourseRecord
	for weekNum := 1; weekNum <= weeks; weekNum++ {
		weekStart, err := time.Parse("2006-01-02", info.Weeks[weekNum-1].Title)
		if err != nil {
			a.warn("unparsable week start", "location", location.Name, "title", info.Weeks[weekNum-1].Title)
			continue
		}

		var week weekDocument
		if err := a.getJSON(ctx, a.weekURL(location.LocationID, weekNum), &week); err != nil {
			a.warn("week fetch failed", "location", location.Name, "week", weekNum, "error", err)
			continue
		}

		records = append(records, a.parseWeek(week, weekStart, location)...)
	}
	return records, nil
}

// parseWeek flattens the nested program/day/time structure. Each time
// slot names its own weekday; the slot's date is the week start plus
// that day's offset.
func (a *Adapter) parseWeek(week weekDocument, weekStart time.Time, location Location) []domain.RawCourseRecord {
	var records []domain.RawCourseRecord

	for _, program := range week.Programs {
		for _, day := range program.Days {
			title := day.Title
			if title == "" {
				title = program.Program
			}

			var noteParts []string
			if age := strings.TrimSpace(day.Age); age != "" {
				noteParts = append(noteParts, age)
			}
			if program.Program != "" && program.Program != title {
				noteParts = append(noteParts, program.Program)
			}

			for _, slot := range day.Times {
				offset, ok := dayOffsets[strings.ToLower(strings.TrimSpace(slot.Day))]
				if !ok {
					continue
				}

				records = append(records, domain.RawCourseRecord{
					Title:        title,
					Category:     program.Program,
					Date:         weekStart.AddDate(0, 0, offset),
					TimeText:     slot.Title,
					LocationName: location.Name,
					Notes:        strings.Join(noteParts, "; "),
					Source:       a.Name(),
				})
			}
		}
	}
	return records
}

func (a *Adapter) getJSON(ctx context.Context, url string, target any) error {
	text, err := a.client.GetText(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), target); err != nil {
		return fmt.Errorf("parse json from %s: %w", url, err)
	}
	return nil
}

func (a *Adapter) infoURL(locationID int) string {
	return fmt.Sprintf("%s/%d/swim/info.json", a.baseURL, locationID)
}

func (a *Adapter) weekURL(locationID, week int) string {
	return fmt.Sprintf("%s/%d/swim/week%d.json", a.baseURL, locationID, week)
}

func (a *Adapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
