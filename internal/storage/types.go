package storage

import (
	"time"

	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/weather"
)

// SessionConditions snapshots the seeing conditions at session start.
// Stored as JSONB alongside the session row.
type SessionConditions struct {
	Score   scoring.Score  `json:"score"`
	Weather weather.Sample `json:"weather"`
}

// Session is one observing session at a location.
type Session struct {
	ID           int64              `json:"id"`
	LocationName string             `json:"location_name"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	StartedAt    time.Time          `json:"started_at"`
	EndedAt      *time.Time         `json:"ended_at,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Conditions   *SessionConditions `json:"conditions,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Observations []Observation `json:"observations,omitempty"`
}

// Observation records one target viewed during a session, rated 1 to 5.
type Observation struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	TargetName string    `json:"target_name"`
	Rating     int       `json:"rating"`
	Notes      string    `json:"notes,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}
