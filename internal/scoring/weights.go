package scoring

// Weights are the engine's component weights. A fixed record rather than a
// map so a misspelled component name cannot slip in unnoticed.
type Weights struct {
	TemperatureDifferential float64 `json:"temperature_differential"`
	WindStability           float64 `json:"wind_stability"`
	Humidity                float64 `json:"humidity"`
	CloudCover              float64 `json:"cloud_cover"`
	JetStream               float64 `json:"jet_stream"`
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{
		TemperatureDifferential: 0.25,
		WindStability:           0.30,
		Humidity:                0.15,
		CloudCover:              0.20,
		JetStream:               0.10,
	}
}

func (w Weights) sum() float64 {
	return w.TemperatureDifferential + w.WindStability + w.Humidity + w.CloudCover + w.JetStream
}

// Normalized returns weights scaled so they sum to 1. Weights already within
// 0.01 of 1 are returned unchanged; an all-zero record falls back to defaults.
func (w Weights) Normalized() Weights {
	total := w.sum()
	if total == 0 {
		return DefaultWeights()
	}
	if diff := total - 1; diff < 0.01 && diff > -0.01 {
		return w
	}
	return Weights{
		TemperatureDifferential: w.TemperatureDifferential / total,
		WindStability:           w.WindStability / total,
		Humidity:                w.Humidity / total,
		CloudCover:              w.CloudCover / total,
		JetStream:               w.JetStream / total,
	}
}
