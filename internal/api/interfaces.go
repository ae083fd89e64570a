package api

import (
	"context"
	"time"

	"github.com/astroseer/astroseer/internal/advisor"
	"github.com/astroseer/astroseer/internal/alerts"
	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/forecast"
	"github.com/astroseer/astroseer/internal/storage"
	"github.com/astroseer/astroseer/internal/timelapse"
)

// ForecastService defines the seeing operations needed by handlers.
type ForecastService interface {
	CurrentConditions(ctx context.Context, loc astro.Location, targetName string) (*forecast.Report, error)
	Forecast(ctx context.Context, loc astro.Location, hours int, target *astro.CelestialObject) ([]forecast.Entry, error)
	FindBestWindow(ctx context.Context, loc astro.Location, hours int, minScore float64, minDurationHours int) (*forecast.Window, error)
	BestNights(ctx context.Context, loc astro.Location, days int, minScore float64) ([]forecast.Night, error)
	CompareLocations(ctx context.Context, locs []astro.Location) (*forecast.Comparison, error)
}

// TimelapseService defines target imaging-window search.
type TimelapseService interface {
	FindImagingWindows(ctx context.Context, targetName string, loc astro.Location, params timelapse.SearchParams) ([]timelapse.Window, error)
}

// AdvisorService defines the recommendation operations needed by handlers.
type AdvisorService interface {
	ActivityRecommendations(report forecast.Report) []advisor.ActivityRecommendation
	EquipmentSuggestions(report forecast.Report) []advisor.EquipmentSuggestion
	TargetRecommendations(report forecast.Report, loc astro.Location, t time.Time, limit int) []advisor.TargetRecommendation
}

// AlertRegistry defines the alert operations needed by handlers.
type AlertRegistry interface {
	Add(name, expression string) (alerts.Alert, error)
	Remove(id string) bool
	List() []alerts.Alert
	Evaluate(report forecast.Report) []alerts.TriggeredAlert
}

// SessionRepo defines the session storage operations needed by handlers.
type SessionRepo interface {
	CreateSession(ctx context.Context, locationName string, lat, lon float64, notes string, conditions *storage.SessionConditions) (*storage.Session, error)
	EndSession(ctx context.Context, id int64, notes string) error
	AddObservation(ctx context.Context, sessionID int64, targetName string, rating int, notes string) (*storage.Observation, error)
	GetSession(ctx context.Context, id int64) (*storage.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*storage.Session, error)
}
