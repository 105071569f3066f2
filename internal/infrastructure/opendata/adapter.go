package opendata

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/httpx"
	"PoolScanner/internal/source"
)

// Adapter reads the city's bulk tabular dumps: one "programs" table and
// one "locations" table keyed by location id.
type Adapter struct {
	programsURL  string
	locationsURL string
	client       *httpx.Client
	logger       *slog.Logger
}

var _ source.Source = (*Adapter)(nil)

// New wires the tabular-dump adapter.
func New(programsURL, locationsURL string, client *httpx.Client, logger *slog.Logger) *Adapter {
	if client == nil {
		client = httpx.New(0)
	}
	return &Adapter{
		programsURL:  programsURL,
		locationsURL: locationsURL,
		client:       client,
		logger:       logger,
	}
}

// Name identifies the adapter inside the registry.
func (a *Adapter) Name() string {
	return "open_data"
}

// Fetch downloads both dumps and joins programs to their locations.
// The location join enriches each record with name/address/postal code
// so the facility resolver has every signal the upstream publishes.
func (a *Adapter) Fetch(ctx context.Context, req source.Request) ([]domain.RawCourseRecord, error) {
	programs, err := a.fetchTable(ctx, a.programsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch programs: %w", err)
	}

	locations := map[string]map[string]string{}
	if a.locationsURL != "" {
		rows, err := a.fetchTable(ctx, a.locationsURL)
		if err != nil {
			// Programs alone still carry a location name; degrade rather
			// than lose the whole source.
			a.debug("locations dump unavailable", "error", err)
		} else {
			for _, row := range rows {
				if id := domain.Field(row, "LocationID", "Location ID", "Location_ID", "_id"); id != "" {
					locations[id] = row
				}
			}
		}
	}

	records := make([]domain.RawCourseRecord, 0, len(programs))
	for _, row := range programs {
		record := domain.RawCourseRecord{
			Title:         domain.Field(row, "Course Title", "CourseName", "Course_Title"),
			Category:      domain.Field(row, "Category"),
			ScheduleText:  domain.Field(row, "Schedule", "Days", "Day"),
			StartDateText: domain.Field(row, "Start Date", "StartDate", "Date Range"),
			EndDateText:   domain.Field(row, "End Date", "EndDate"),
			LocationID:    domain.Field(row, "Location ID", "LocationID", "Location_ID"),
			LocationName:  domain.Field(row, "Location Name", "LocationName", "Location_Name"),
			AgeMin:        domain.Field(row, "Age Min", "AgeMin", "Age_Min"),
			AgeMax:        domain.Field(row, "Age Max", "AgeMax", "Age_Max"),
			Source:        a.Name(),
		}

		if location, ok := locations[record.LocationID]; ok {
			if name := domain.Field(location, "Location Name", "LocationName", "Location_Name"); name != "" {
				record.LocationName = name
			}
			record.Address = domain.Field(location, "Address", "Street Address", "StreetAddress")
			record.PostalCode = domain.Field(location, "PostalCode", "Postal Code", "Postal_Code")
		}

		records = append(records, record)
	}

	a.debug("tabular dump fetched", "programs", len(programs), "locations", len(locations))
	return records, nil
}

func (a *Adapter) fetchTable(ctx context.Context, url string) ([]map[string]string, error) {
	text, err := a.client.GetText(ctx, url)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv from %s: %w", url, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[strings.TrimSpace(column)] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
