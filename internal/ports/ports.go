package ports

import (
	"context"
	"time"

	"PoolScanner/internal/domain"
)

// FacilityDirectory exposes the curated registry of known facilities,
// snapshotted once per pipeline run.
type FacilityDirectory interface {
	List(ctx context.Context) ([]domain.Facility, error)
}

// SessionStore is the persistence collaborator. Both operations are
// idempotent from the pipeline's perspective: the pipeline never calls
// Insert twice for one hash within a run and checks Exists across runs.
type SessionStore interface {
	Exists(ctx context.Context, contentHash string) (bool, error)
	Insert(ctx context.Context, session domain.CanonicalSession) error
}

// FacilityResolver matches a raw location reference to a directory entry.
type FacilityResolver interface {
	Match(name string, attrs domain.Facility, directory []domain.Facility) (domain.MatchResult, bool)
}

// ReportExporter writes a run report somewhere for audit.
type ReportExporter interface {
	Export(report domain.RunReport) (string, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
