// Package scoring turns weather and astronomy inputs into an explainable
// 0-100 seeing score. Everything here is a pure function: no I/O, no failure
// modes, absent optional signals fall back to neutral defaults.
package scoring

import (
	"math"

	"github.com/astroseer/astroseer/internal/weather"
)

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// interpolate maps value linearly from [inMin, inMax] to [outMin, outMax].
func interpolate(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	ratio := (value - inMin) / (inMax - inMin)
	return outMin + ratio*(outMax-outMin)
}

// TemperatureDifferentialScore scores the temperature-dewpoint spread.
// A differential under 2C means condensation is imminent; over 10C is dry air.
func TemperatureDifferentialScore(s weather.Sample) float64 {
	diff := s.TemperatureDifferential()

	switch {
	case diff >= 15:
		return 100
	case diff >= 10:
		return interpolate(diff, 10, 15, 90, 100)
	case diff >= 5:
		return interpolate(diff, 5, 10, 70, 90)
	case diff >= 2:
		return interpolate(diff, 2, 5, 40, 70)
	default:
		// Dewpoint can exceed temperature in supersaturated readings.
		return clamp(interpolate(diff, 0, 2, 10, 40), 0, 100)
	}
}

// WindStabilityScore scores wind speed, gustiness, and shear.
// The gust ratio uses a floor denominator of 0.1 so calm air doesn't divide by zero.
func WindStabilityScore(s weather.Sample) float64 {
	windSpeed := s.WindSpeed10m
	gustRatio := s.WindGusts / math.Max(windSpeed, 0.1)

	var score float64
	switch {
	case windSpeed <= 2:
		score = 100
	case windSpeed <= 5:
		score = interpolate(windSpeed, 2, 5, 100, 80)
	case windSpeed <= 10:
		score = interpolate(windSpeed, 5, 10, 80, 50)
	default:
		score = math.Max(10, interpolate(windSpeed, 10, 20, 50, 20))
	}

	// Gust ratio above 2 signals turbulence.
	if gustRatio > 2 {
		score -= interpolate(gustRatio, 2, 4, 0, 30)
	}

	if shear := s.WindShear(); shear != nil && *shear > 5 {
		score -= interpolate(*shear, 5, 15, 0, 20)
	}

	return clamp(score, 0, 100)
}

// HumidityScore scores relative humidity on monotonic-decreasing bands.
func HumidityScore(s weather.Sample) float64 {
	humidity := s.Humidity

	switch {
	case humidity <= 30:
		return 100
	case humidity <= 50:
		return interpolate(humidity, 30, 50, 100, 85)
	case humidity <= 70:
		return interpolate(humidity, 50, 70, 85, 60)
	case humidity <= 85:
		return interpolate(humidity, 70, 85, 60, 35)
	case humidity <= 95:
		return interpolate(humidity, 85, 95, 35, 15)
	default:
		return clamp(interpolate(humidity, 95, 100, 15, 0), 0, 100)
	}
}

// CloudCoverScore scores total cloud cover, adjusted by the low/high layer
// split when both are reported: mostly-cirrus skies earn a small bonus,
// mostly-low decks a larger penalty.
func CloudCoverScore(s weather.Sample) float64 {
	total := s.CloudCover

	var score float64
	switch {
	case total <= 5:
		score = 100
	case total <= 20:
		score = interpolate(total, 5, 20, 100, 85)
	case total <= 50:
		score = interpolate(total, 20, 50, 85, 50)
	case total <= 80:
		score = interpolate(total, 50, 80, 50, 20)
	default:
		score = interpolate(total, 80, 100, 20, 0)
	}

	if s.CloudCoverLow != nil && s.CloudCoverHigh != nil {
		low, high := *s.CloudCoverLow, *s.CloudCoverHigh
		if high > low*2 {
			score = math.Min(100, score+math.Min(10, (high-low)*0.2))
		} else if low > high*2 {
			score = math.Max(0, score-math.Min(15, (low-high)*0.3))
		}
	}

	return clamp(score, 0, 100)
}

// jetStreamNeutralScore is assumed when no 250hPa data is available.
const jetStreamNeutralScore = 75

// JetStreamScore scores the 250hPa wind speed. Strong jet stream overhead
// means high-altitude turbulence.
func JetStreamScore(s weather.Sample) float64 {
	if s.JetStreamSpeed == nil {
		return jetStreamNeutralScore
	}
	speed := *s.JetStreamSpeed

	switch {
	case speed <= 15:
		return 100
	case speed <= 30:
		return interpolate(speed, 15, 30, 100, 85)
	case speed <= 45:
		return interpolate(speed, 30, 45, 85, 60)
	case speed <= 60:
		return interpolate(speed, 45, 60, 60, 35)
	default:
		return clamp(interpolate(speed, 60, 100, 35, 10), 0, 100)
	}
}

// PressureStabilityScore scores surface pressure. High stable pressure tends
// to mean stable air. Not part of the weighted engine sum; exposed for
// callers that want the secondary signal.
func PressureStabilityScore(s weather.Sample) float64 {
	p := s.Pressure

	switch {
	case p >= 1020 && p <= 1030:
		return 100
	case p >= 1015 && p < 1020:
		return interpolate(p, 1015, 1020, 85, 100)
	case p > 1030 && p <= 1040:
		return interpolate(p, 1030, 1040, 100, 85)
	case p >= 1005 && p < 1015:
		return interpolate(p, 1005, 1015, 60, 85)
	case p >= 1000 && p < 1005:
		return interpolate(p, 1000, 1005, 40, 60)
	default:
		return 30
	}
}
