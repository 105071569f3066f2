package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"PoolScanner/internal/domain"
	"PoolScanner/internal/ports"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS facilities (
			facility_id TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			address     TEXT,
			postal_code TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS swim_sessions (
			content_hash TEXT PRIMARY KEY,
			facility_id  TEXT NOT NULL REFERENCES facilities (facility_id),
			title        TEXT NOT NULL,
			swim_type    TEXT NOT NULL,
			session_date DATE NOT NULL,
			start_time   TEXT NOT NULL,
			end_time     TEXT NOT NULL,
			notes        TEXT,
			source       TEXT,
			match_score  DOUBLE PRECISION,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_facility_date
			ON swim_sessions (facility_id, session_date)`,
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SessionRepository persists canonical sessions keyed by content hash.
type SessionRepository struct {
	db *sql.DB
}

var _ ports.SessionStore = (*SessionRepository)(nil)

// NewSessionRepository wires a sql.DB implementation.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Exists reports whether a session with this content hash is stored.
func (r *SessionRepository) Exists(ctx context.Context, contentHash string) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := builder.
		Select("1").
		From("swim_sessions").
		Where(sq.Eq{"content_hash": contentHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query session: %w", err)
	}
	return true, nil
}

// Insert stores one session. A concurrent run inserting the same hash is
// not an error: the unique violation collapses into a no-op.
func (r *SessionRepository) Insert(ctx context.Context, session domain.CanonicalSession) error {
	if r.db == nil {
		return nil
	}

	query, args, err := builder.
		Insert("swim_sessions").
		Columns("content_hash", "facility_id", "title", "swim_type",
			"session_date", "start_time", "end_time", "notes", "source", "match_score").
		Values(session.ContentHash,
			session.FacilityID,
			session.Title,
			string(session.SwimType),
			session.Date,
			session.Start.String(),
			session.End.String(),
			session.Notes,
			session.Source,
			session.MatchScore).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FacilityRepository reads the curated facility directory.
type FacilityRepository struct {
	db *sql.DB
}

var _ ports.FacilityDirectory = (*FacilityRepository)(nil)

// NewFacilityRepository wires a sql.DB implementation.
func NewFacilityRepository(db *sql.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// List returns every directory entry ordered by facility id.
func (r *FacilityRepository) List(ctx context.Context) ([]domain.Facility, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := builder.
		Select("facility_id", "name", "COALESCE(address, '')", "COALESCE(postal_code, '')").
		From("facilities").
		OrderBy("facility_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer rows.Close()

	var facilities []domain.Facility
	for rows.Next() {
		var facility domain.Facility
		if err := rows.Scan(&facility.FacilityID, &facility.Name, &facility.Address, &facility.PostalCode); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return facilities, nil
}

// Seed upserts directory entries, keeping names and addresses current.
func (r *FacilityRepository) Seed(ctx context.Context, facilities []domain.Facility) error {
	if r.db == nil || len(facilities) == 0 {
		return nil
	}

	for _, facility := range facilities {
		query, args, err := builder.
			Insert("facilities").
			Columns("facility_id", "name", "address", "postal_code").
			Values(facility.FacilityID, facility.Name, facility.Address, facility.PostalCode).
			Suffix(`ON CONFLICT (facility_id) DO UPDATE
				SET name = EXCLUDED.name,
				    address = EXCLUDED.address,
				    postal_code = EXCLUDED.postal_code`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build seed query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed facility %s: %w", facility.FacilityID, err)
		}
	}
	return nil
}
