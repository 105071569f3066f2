package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"PoolScanner/internal/analyze"
	"PoolScanner/internal/classify"
	"PoolScanner/internal/concurrency"
	"PoolScanner/internal/domain"
	"PoolScanner/internal/expand"
	"PoolScanner/internal/ports"
	"PoolScanner/internal/source"
)

// PipelineDeps wires all collaborators into the reconciliation pipeline.
// Nil collaborators disable their stage: a nil Store skips persistence,
// a nil Exporter skips the report file.
type PipelineDeps struct {
	Sources   *source.Registry
	Directory ports.FacilityDirectory
	Resolver  ports.FacilityResolver
	Store     ports.SessionStore
	Exporter  ports.ReportExporter
	Logger    *slog.Logger

	HorizonWeeks int
	Optimize     bool
	FetchWorkers int
}

// Pipeline implements the schedule reconciliation workflow: fetch,
// classify, expand, resolve, hash, analyze, persist.
type Pipeline struct {
	sources   *source.Registry
	directory ports.FacilityDirectory
	resolver  ports.FacilityResolver
	store     ports.SessionStore
	exporter  ports.ReportExporter
	logger    *slog.Logger

	horizonWeeks int
	optimize     bool
	fetchWorkers int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sources:      deps.Sources,
		directory:    deps.Directory,
		resolver:     deps.Resolver,
		store:        deps.Store,
		exporter:     deps.Exporter,
		logger:       deps.Logger,
		horizonWeeks: deps.HorizonWeeks,
		optimize:     deps.Optimize,
		fetchWorkers: deps.FetchWorkers,
	}
}

// Run executes one reconciliation pass anchored at today. Source and
// persistence failures are absorbed into the run stats; only a failure
// to load the facility directory aborts the run.
func (p *Pipeline) Run(ctx context.Context, today time.Time) (domain.RunReport, error) {
	report := domain.RunReport{StartedAt: time.Now()}
	stats := domain.RunStats{SourceFailures: map[string]int{}}

	var directory []domain.Facility
	if p.directory != nil {
		var err error
		directory, err = p.directory.List(ctx)
		if err != nil {
			return report, fmt.Errorf("load facility directory: %w", err)
		}
	}

	records := p.fetchAll(ctx, today, &stats)
	stats.TotalPrograms = len(records)

	var sessions []domain.CanonicalSession
	for _, record := range records {
		classification := classify.Classify(record.Title, record.Category)
		if !classification.IsSwim {
			continue
		}
		stats.SwimPrograms++

		expanded := expand.Expand(record, classification, today, p.horizonWeeks)
		if len(expanded) == 0 {
			stats.ParseErrors++
			p.debug("record produced no sessions",
				"title", record.Title, "source", record.Source)
			continue
		}

		match, matched := p.resolve(record, directory)
		if matched {
			stats.FacilitiesMatched++
		} else {
			stats.FacilitiesUnmatched++
			p.debug("facility unresolved",
				"location", record.LocationName, "source", record.Source)
		}

		// Hashes depend on the resolved facility, so assignment must
		// precede hashing.
		for i := range expanded {
			if matched {
				expanded[i].FacilityID = match.FacilityID
				expanded[i].MatchScore = match.Confidence
			}
			expanded[i].ContentHash = expanded[i].ComputeHash()
		}
		sessions = append(sessions, expanded...)
	}
	stats.SessionsGenerated = len(sessions)

	conflicts := analyze.DetectConflicts(sessions)
	if p.optimize && len(conflicts) > 0 {
		kept, dropped := analyze.Optimize(sessions)
		stats.ConflictsResolved = dropped
		sessions = kept
	}

	// Unresolved sessions stay in the quality and coverage reports even
	// though they are never persisted.
	report.Quality = analyze.BuildQualityReport(sessions, today)
	report.Coverage = analyze.AnalyzeCoverage(sessions)
	report.Conflicts = conflicts

	if p.store != nil {
		p.persist(ctx, sessions, today, &stats)
	}

	report.Stats = stats
	report.FinishedAt = time.Now()

	if p.exporter != nil {
		path, err := p.exporter.Export(report)
		if err != nil {
			p.warn("report export failed", "error", err)
		} else {
			p.info("report exported", "path", path)
		}
	}

	p.info("run finished",
		"programs", stats.TotalPrograms,
		"swim_programs", stats.SwimPrograms,
		"sessions", stats.SessionsGenerated,
		"inserted", stats.SessionsInserted,
		"skipped", stats.SessionsSkipped,
		"conflicts", len(conflicts))
	return report, nil
}

func (p *Pipeline) fetchAll(ctx context.Context, today time.Time, stats *domain.RunStats) []domain.RawCourseRecord {
	if p.sources == nil {
		return nil
	}
	sources := p.sources.All()
	req := source.Request{Today: today, HorizonWeeks: p.horizonWeeks}

	results, errs := concurrency.Map(ctx, sources, p.fetchWorkers,
		func(ctx context.Context, src source.Source) ([]domain.RawCourseRecord, error) {
			return src.Fetch(ctx, req)
		})

	var records []domain.RawCourseRecord
	for i, src := range sources {
		if errs[i] != nil {
			stats.SourceFailures[src.Name()]++
			p.warn("source fetch failed", "source", src.Name(), "error", errs[i])
			continue
		}
		p.debug("source fetched", "source", src.Name(), "records", len(results[i]))
		records = append(records, results[i]...)
	}
	return records
}

func (p *Pipeline) resolve(record domain.RawCourseRecord, directory []domain.Facility) (domain.MatchResult, bool) {
	if p.resolver == nil || record.LocationName == "" {
		return domain.MatchResult{}, false
	}
	attrs := domain.Facility{
		Name:       record.LocationName,
		Address:    record.Address,
		PostalCode: record.PostalCode,
	}
	return p.resolver.Match(record.LocationName, attrs, directory)
}

// persist commits matched sessions facility by facility. Sessions the
// validator flags stay in the reports but never reach storage. A storage
// error abandons the failing facility's remaining batch; other facilities
// still commit.
func (p *Pipeline) persist(ctx context.Context, sessions []domain.CanonicalSession, today time.Time, stats *domain.RunStats) {
	groups := map[string][]domain.CanonicalSession{}
	for _, session := range sessions {
		if session.FacilityID == "" {
			continue
		}
		groups[session.FacilityID] = append(groups[session.FacilityID], session)
	}

	order := make([]string, 0, len(groups))
	for facility := range groups {
		order = append(order, facility)
	}
	sort.Strings(order)

	seen := map[string]bool{}
	for _, facility := range order {
		for _, session := range groups[facility] {
			if issues := analyze.ValidateSession(session, today); len(issues) > 0 {
				stats.SessionsRejected++
				p.debug("invalid session excluded from storage",
					"facility", facility, "date", session.Date.Format("2006-01-02"),
					"issue", issues[0].Type)
				continue
			}
			if seen[session.ContentHash] {
				stats.SessionsSkipped++
				continue
			}
			seen[session.ContentHash] = true

			exists, err := p.store.Exists(ctx, session.ContentHash)
			if err != nil {
				stats.PersistErrors++
				p.warn("existence check failed, abandoning facility batch",
					"facility", facility, "error", err)
				break
			}
			if exists {
				stats.SessionsSkipped++
				continue
			}

			if err := p.store.Insert(ctx, session); err != nil {
				stats.PersistErrors++
				p.warn("insert failed, abandoning facility batch",
					"facility", facility, "error", err)
				break
			}
			stats.SessionsInserted++
		}
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
