package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for observing sessions.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// CreateSession starts a new observing session and returns it with its
// assigned ID. Conditions may be nil when no report was available.
func (r *Repository) CreateSession(ctx context.Context, locationName string, lat, lon float64, notes string, conditions *SessionConditions) (*Session, error) {
	var condJSON []byte
	if conditions != nil {
		var err error
		condJSON, err = json.Marshal(conditions)
		if err != nil {
			return nil, fmt.Errorf("marshaling session conditions: %w", err)
		}
	}

	const q = `
		INSERT INTO sessions (location_name, latitude, longitude, notes, conditions, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, started_at, created_at, updated_at
	`

	s := Session{
		LocationName: locationName,
		Latitude:     lat,
		Longitude:    lon,
		Notes:        notes,
		Conditions:   conditions,
	}
	err := r.q.QueryRow(ctx, q, locationName, lat, lon, notes, condJSON).Scan(
		&s.ID,
		&s.StartedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session at %s: %w", locationName, err)
	}

	return &s, nil
}

// EndSession marks a session as finished, optionally appending notes.
func (r *Repository) EndSession(ctx context.Context, id int64, notes string) error {
	const q = `
		UPDATE sessions
		SET ended_at   = NOW(),
		    notes      = CASE WHEN $2 = '' THEN notes ELSE trim(notes || E'\n' || $2) END,
		    updated_at = NOW()
		WHERE id = $1 AND ended_at IS NULL
	`

	tag, err := r.q.Exec(ctx, q, id, notes)
	if err != nil {
		return fmt.Errorf("ending session %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ending session %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddObservation records a rated target observation against a session.
func (r *Repository) AddObservation(ctx context.Context, sessionID int64, targetName string, rating int, notes string) (*Observation, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	const q = `
		INSERT INTO observations (session_id, target_name, rating, notes, observed_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, observed_at
	`

	o := Observation{
		SessionID:  sessionID,
		TargetName: targetName,
		Rating:     rating,
		Notes:      notes,
	}
	err := r.q.QueryRow(ctx, q, sessionID, targetName, rating, notes).Scan(&o.ID, &o.ObservedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting observation for session %d: %w", sessionID, err)
	}

	return &o, nil
}

// GetSession retrieves one session with its observations.
// Returns ErrNotFound when the session does not exist.
func (r *Repository) GetSession(ctx context.Context, id int64) (*Session, error) {
	const q = `
		SELECT id, location_name, latitude, longitude, started_at, ended_at, notes, conditions, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	s, err := scanSession(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying session %d: %w", id, err)
	}

	obs, err := r.listObservations(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Observations = obs

	return s, nil
}

// ListSessions returns sessions newest first, up to limit (default 50).
func (r *Repository) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
		SELECT id, location_name, latitude, longitude, started_at, ended_at, notes, conditions, created_at, updated_at
		FROM sessions
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}

	return sessions, nil
}

func (r *Repository) listObservations(ctx context.Context, sessionID int64) ([]Observation, error) {
	const q = `
		SELECT id, session_id, target_name, rating, notes, observed_at
		FROM observations
		WHERE session_id = $1
		ORDER BY observed_at
	`

	rows, err := r.q.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying observations for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.SessionID, &o.TargetName, &o.Rating, &o.Notes, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scanning observation row: %w", err)
		}
		obs = append(obs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observation rows: %w", err)
	}

	return obs, nil
}

// scanSession scans one session row, decoding the conditions JSONB when present.
func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var condJSON []byte

	err := row.Scan(
		&s.ID,
		&s.LocationName,
		&s.Latitude,
		&s.Longitude,
		&s.StartedAt,
		&s.EndedAt,
		&s.Notes,
		&condJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(condJSON) > 0 {
		var cond SessionConditions
		if err := json.Unmarshal(condJSON, &cond); err != nil {
			return nil, fmt.Errorf("unmarshaling session conditions: %w", err)
		}
		s.Conditions = &cond
	}

	return &s, nil
}
