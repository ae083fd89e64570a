package scoring

import "time"

// Component names used as keys in Score.Components.
const (
	ComponentTemperatureDifferential = "temperature_differential"
	ComponentWindStability           = "wind_stability"
	ComponentHumidity                = "humidity"
	ComponentCloudCover              = "cloud_cover"
	ComponentJetStream               = "jet_stream"
)

// Penalty names used as keys in Score.Penalties.
const (
	PenaltyMoon          = "moon"
	PenaltyAirmass       = "airmass"
	PenaltyPrecipitation = "precipitation"
)

// Score is a calculated seeing score with its component breakdown.
// Total is the weighted component sum multiplied by every recorded penalty,
// clamped to [0, 100] and rounded to one decimal. Only penalties that actually
// triggered (multiplier < 1) appear in Penalties.
type Score struct {
	Total      float64            `json:"total_score"`
	Components map[string]float64 `json:"component_scores"`
	Penalties  map[string]float64 `json:"penalties,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Rating maps the total score to a human-readable band.
func (s Score) Rating() string {
	switch {
	case s.Total >= 85:
		return "Excellent"
	case s.Total >= 70:
		return "Very Good"
	case s.Total >= 55:
		return "Good"
	case s.Total >= 40:
		return "Fair"
	case s.Total >= 25:
		return "Poor"
	default:
		return "Bad"
	}
}

// Recommendation is a one-line observation recommendation for the score band.
func (s Score) Recommendation() string {
	switch {
	case s.Total >= 85:
		return "Outstanding conditions! Perfect for imaging and visual observation."
	case s.Total >= 70:
		return "Very good conditions. Excellent for most observations."
	case s.Total >= 55:
		return "Good conditions. Suitable for planetary and bright deep-sky objects."
	case s.Total >= 40:
		return "Fair conditions. Best for planets and the Moon."
	case s.Total >= 25:
		return "Poor conditions. Only bright objects recommended."
	default:
		return "Not recommended for serious observation tonight."
	}
}

// MoonPenaltyValue returns the recorded moon penalty, or 1 when none triggered.
func (s Score) MoonPenaltyValue() float64 {
	if p, ok := s.Penalties[PenaltyMoon]; ok {
		return p
	}
	return 1.0
}
