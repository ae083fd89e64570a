package scoring

import (
	"math"

	"github.com/astroseer/astroseer/internal/weather"
)

// Conditions carries the astronomical context for a score calculation.
// The zero value means no target and no moon above the horizon.
type Conditions struct {
	MoonIllumination float64  // 0-100
	MoonAltitude     float64  // degrees; zero value should be below horizon
	Airmass          *float64 // nil when no specific target
	IsDeepSky        bool
}

// NoTarget is the context for a plain sky-quality score.
var NoTarget = Conditions{MoonAltitude: -90}

// Engine computes seeing scores from weather samples with a fixed weighting.
type Engine struct {
	weights Weights
}

// NewEngine constructs an Engine with default weights.
func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights()}
}

// NewEngineWithWeights constructs an Engine with custom weights,
// normalized to sum to 1.
func NewEngineWithWeights(w Weights) *Engine {
	return &Engine{weights: w.Normalized()}
}

// Weights returns the engine's normalized weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Calculate produces a Score for the sample under the given conditions.
// It never fails: missing optional inputs degrade to neutral defaults.
func (e *Engine) Calculate(s weather.Sample, cond Conditions) Score {
	components := map[string]float64{
		ComponentTemperatureDifferential: TemperatureDifferentialScore(s),
		ComponentWindStability:           WindStabilityScore(s),
		ComponentHumidity:                HumidityScore(s),
		ComponentCloudCover:              CloudCoverScore(s),
		ComponentJetStream:               JetStreamScore(s),
	}

	base := components[ComponentTemperatureDifferential]*e.weights.TemperatureDifferential +
		components[ComponentWindStability]*e.weights.WindStability +
		components[ComponentHumidity]*e.weights.Humidity +
		components[ComponentCloudCover]*e.weights.CloudCover +
		components[ComponentJetStream]*e.weights.JetStream

	penalties := make(map[string]float64)

	if p := MoonPenalty(cond.MoonIllumination, cond.MoonAltitude, cond.IsDeepSky); p < 1.0 {
		penalties[PenaltyMoon] = p
	}
	if cond.Airmass != nil {
		if p := AirmassPenalty(*cond.Airmass); p < 1.0 {
			penalties[PenaltyAirmass] = p
		}
	}
	if p := PrecipitationPenalty(s); p < 1.0 {
		penalties[PenaltyPrecipitation] = p
	}

	total := base
	for _, p := range penalties {
		total *= p
	}
	total = clamp(total, 0, 100)

	return Score{
		Total:      math.Round(total*10) / 10,
		Components: components,
		Penalties:  penalties,
		Timestamp:  s.Timestamp,
	}
}

// CalculateSimple scores a sample with no astronomical context.
func (e *Engine) CalculateSimple(s weather.Sample) float64 {
	return e.Calculate(s, NoTarget).Total
}
