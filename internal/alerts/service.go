package alerts

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/astroseer/astroseer/internal/forecast"
)

// Alert is a registered condition watched against incoming reports.
type Alert struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	CreatedAt  time.Time `json:"created_at"`

	expr Expr
}

// TriggeredAlert records an alert whose condition held for a report.
type TriggeredAlert struct {
	Alert       Alert     `json:"alert"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Service keeps an in-memory alert registry. Safe for concurrent use.
type Service struct {
	mu     sync.RWMutex
	alerts map[string]Alert
	nextID int
}

// NewService constructs an empty registry.
func NewService() *Service {
	return &Service{alerts: make(map[string]Alert)}
}

// Add parses and registers a new alert. Invalid expressions are rejected here
// so evaluation can never fail.
func (s *Service) Add(name, expression string) (Alert, error) {
	expr, err := ParseExpr(expression)
	if err != nil {
		return Alert{}, fmt.Errorf("parsing alert expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	alert := Alert{
		ID:         fmt.Sprintf("alert-%d", s.nextID),
		Name:       name,
		Expression: expression,
		CreatedAt:  time.Now().UTC(),
		expr:       expr,
	}
	s.alerts[alert.ID] = alert
	return alert, nil
}

// Remove deletes an alert by ID. Reports whether it existed.
func (s *Service) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.alerts[id]
	delete(s.alerts, id)
	return ok
}

// List returns all registered alerts, oldest first.
func (s *Service) List() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

// Evaluate checks every registered alert against the report and returns those
// that trigger.
func (s *Service) Evaluate(report forecast.Report) []TriggeredAlert {
	vars := bindVariables(report)
	now := time.Now().UTC()

	var triggered []TriggeredAlert
	for _, a := range s.List() {
		if a.expr.Eval(vars) {
			triggered = append(triggered, TriggeredAlert{Alert: a, TriggeredAt: now})
		}
	}
	return triggered
}

func bindVariables(report forecast.Report) map[string]float64 {
	return map[string]float64{
		"score":             report.Score.Total,
		"cloud_cover":       report.Weather.CloudCover,
		"wind_speed":        report.Weather.WindSpeed10m,
		"humidity":          report.Weather.Humidity,
		"temperature":       report.Weather.Temperature,
		"moon_illumination": report.Astronomy.MoonIllumination,
		"moon_altitude":     report.Astronomy.MoonAltitude,
	}
}
