package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/match"
	"PoolScanner/internal/source"
)

type stubSource struct {
	name    string
	records []domain.RawCourseRecord
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ source.Request) ([]domain.RawCourseRecord, error) {
	return s.records, s.err
}

type memoryStore struct {
	sessions map[string]domain.CanonicalSession
	failHash string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]domain.CanonicalSession{}}
}

func (m *memoryStore) Exists(_ context.Context, hash string) (bool, error) {
	_, ok := m.sessions[hash]
	return ok, nil
}

func (m *memoryStore) Insert(_ context.Context, session domain.CanonicalSession) error {
	if session.ContentHash == m.failHash {
		return errors.New("insert rejected")
	}
	m.sessions[session.ContentHash] = session
	return nil
}

type staticDirectory []domain.Facility

func (d staticDirectory) List(_ context.Context) ([]domain.Facility, error) {
	return d, nil
}

var testDirectory = staticDirectory{
	{FacilityID: "high-park-pool", Name: "High Park Pool", Address: "1342 Bloor St W", PostalCode: "M6R 2Z6"},
	{FacilityID: "trinity-crc", Name: "Trinity Community Recreation Centre", Address: "155 Crawford St"},
}

// testMonday anchors the fixtures on a known Monday.
var testMonday = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

func laneSwimRecord() domain.RawCourseRecord {
	return domain.RawCourseRecord{
		Title:        "Lane Swim",
		Category:     "Swimming",
		ScheduleText: "Mon, Wed 07:00 - 08:30",
		LocationName: "High Park Pool",
		Source:       "open_data",
	}
}

func newTestPipeline(store *memoryStore, sources ...source.Source) *Pipeline {
	registry := source.NewRegistry()
	for _, src := range sources {
		registry.Register(src)
	}
	return NewPipeline(PipelineDeps{
		Sources:      registry,
		Directory:    testDirectory,
		Resolver:     match.New(match.DefaultThreshold),
		Store:        store,
		HorizonWeeks: 2,
	})
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	feed := &stubSource{name: "open_data", records: []domain.RawCourseRecord{
		laneSwimRecord(),
		{Title: "Basketball Drop-In", Category: "Sports", ScheduleText: "Tue 18:00 - 19:00", LocationName: "High Park Pool", Source: "open_data"},
		{Title: "Aquafit", Category: "Swimming", ScheduleText: "no schedule published", LocationName: "High Park Pool", Source: "open_data"},
		{Title: "Leisure Swim", Category: "Swimming", ScheduleText: "Fri 13:00 - 14:00", LocationName: "Mystery Pool Nowhere", Source: "open_data"},
	}}
	broken := &stubSource{name: "web_page", err: errors.New("upstream down")}

	store := newMemoryStore()
	report, err := newTestPipeline(store, feed, broken).Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := report.Stats
	if stats.TotalPrograms != 4 || stats.SwimPrograms != 3 {
		t.Fatalf("unexpected program counts: %+v", stats)
	}
	if stats.ParseErrors != 1 {
		t.Fatalf("expected 1 parse error, got %d", stats.ParseErrors)
	}
	if stats.SourceFailures["web_page"] != 1 {
		t.Fatalf("broken source not counted: %v", stats.SourceFailures)
	}
	if stats.FacilitiesMatched != 1 || stats.FacilitiesUnmatched != 1 {
		t.Fatalf("unexpected match counts: %+v", stats)
	}

	// Lane swim expands to Mon+Wed over two weeks; the unresolved leisure
	// swim adds two more sessions that are reported but never persisted.
	if stats.SessionsGenerated != 6 {
		t.Fatalf("expected 6 sessions, got %d", stats.SessionsGenerated)
	}
	if stats.SessionsInserted != 4 || len(store.sessions) != 4 {
		t.Fatalf("expected 4 inserts, got %d (store %d)", stats.SessionsInserted, len(store.sessions))
	}
	if report.Coverage.TotalSessions != 6 {
		t.Fatalf("unresolved sessions missing from coverage: %d", report.Coverage.TotalSessions)
	}

	for _, session := range store.sessions {
		if session.FacilityID != "high-park-pool" {
			t.Fatalf("unexpected facility: %q", session.FacilityID)
		}
		if session.ContentHash == "" || session.MatchScore < match.DefaultThreshold {
			t.Fatalf("session not fully resolved: %+v", session)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	feed := &stubSource{name: "open_data", records: []domain.RawCourseRecord{laneSwimRecord()}}
	store := newMemoryStore()
	pipeline := newTestPipeline(store, feed)

	first, err := pipeline.Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Stats.SessionsInserted != 4 {
		t.Fatalf("first run inserted %d", first.Stats.SessionsInserted)
	}

	second, err := pipeline.Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Stats.SessionsInserted != 0 {
		t.Fatalf("second run must insert nothing, inserted %d", second.Stats.SessionsInserted)
	}
	if second.Stats.SessionsSkipped != 4 {
		t.Fatalf("second run skipped %d", second.Stats.SessionsSkipped)
	}
	if len(store.sessions) != 4 {
		t.Fatalf("store grew to %d sessions", len(store.sessions))
	}
}

func TestRunExcludesInvalidSessionsFromStorage(t *testing.T) {
	t.Parallel()

	// A stale upstream page can anchor an explicit-date record far in the
	// past. Those sessions must surface in the quality report yet never
	// reach storage.
	feed := &stubSource{name: "web_page", records: []domain.RawCourseRecord{
		{
			Title:        "Lane Swim",
			Category:     "Swimming",
			Date:         testMonday.AddDate(0, 0, -100),
			TimeText:     "07:00 - 08:30",
			LocationName: "High Park Pool",
			Source:       "web_page",
		},
	}}

	store := newMemoryStore()
	report, err := newTestPipeline(store, feed).Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The explicit date projects over the two-week horizon: two sessions,
	// both outside the accepted date window.
	if report.Stats.SessionsGenerated != 2 {
		t.Fatalf("expected 2 sessions, got %d", report.Stats.SessionsGenerated)
	}
	if report.Stats.SessionsRejected != 2 {
		t.Fatalf("expected 2 rejected sessions, got %d", report.Stats.SessionsRejected)
	}
	if report.Stats.SessionsInserted != 0 || len(store.sessions) != 0 {
		t.Fatalf("invalid sessions reached storage: inserted=%d store=%d",
			report.Stats.SessionsInserted, len(store.sessions))
	}
	if report.Quality.InvalidSessions != 2 || report.Quality.IssuesByType["date_validation"] != 2 {
		t.Fatalf("invalid sessions lost from quality report: %+v", report.Quality)
	}
}

func TestRunInsertFailureAbandonsFacilityBatch(t *testing.T) {
	t.Parallel()

	feed := &stubSource{name: "open_data", records: []domain.RawCourseRecord{
		laneSwimRecord(),
		{Title: "Lane Swim", Category: "Swimming", ScheduleText: "Mon 09:00 - 10:00", LocationName: "Trinity Community Recreation Centre", Source: "open_data"},
	}}

	store := newMemoryStore()
	pipeline := newTestPipeline(store, feed)

	// Fail the first high-park insert; trinity must still commit.
	probe, err := pipeline.Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("probe run: %v", err)
	}
	if probe.Stats.SessionsInserted != 6 {
		t.Fatalf("probe inserted %d", probe.Stats.SessionsInserted)
	}

	var highParkHash string
	for hash, session := range store.sessions {
		if session.FacilityID == "high-park-pool" && highParkHash == "" {
			highParkHash = hash
		}
	}

	failing := newMemoryStore()
	failing.failHash = highParkHash
	report, err := newTestPipeline(failing, feed).Run(context.Background(), testMonday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Stats.PersistErrors != 1 {
		t.Fatalf("expected 1 persist error, got %d", report.Stats.PersistErrors)
	}
	trinity := 0
	for _, session := range failing.sessions {
		if session.FacilityID == "trinity-crc" {
			trinity++
		}
	}
	if trinity != 2 {
		t.Fatalf("healthy facility batch lost: %d trinity sessions", trinity)
	}
}
