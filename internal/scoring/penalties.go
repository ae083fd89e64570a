package scoring

import (
	"math"

	"github.com/astroseer/astroseer/internal/weather"
)

// MoonPenalty returns a multiplicative damper for moonlight on deep-sky
// targets. A moon below the horizon or a non-deep-sky target means no penalty.
// Worst case (full moon at 45 degrees or higher) halves the score.
func MoonPenalty(illumination, moonAltitude float64, isDeepSky bool) float64 {
	if moonAltitude <= 0 {
		return 1.0
	}
	if !isDeepSky {
		return 1.0
	}

	altitudeFactor := math.Min(1, moonAltitude/45)
	illuminationFactor := illumination / 100
	strength := altitudeFactor * illuminationFactor

	return 1.0 - strength*0.5
}

// AirmassPenalty dampens the score for targets near the horizon.
// Airmass at or below 1.2 is penalty-free; the curve is capped at airmass 5.
func AirmassPenalty(airmass float64) float64 {
	switch {
	case airmass <= 1.2:
		return 1.0
	case airmass <= 1.5:
		return interpolate(airmass, 1.2, 1.5, 1.0, 0.95)
	case airmass <= 2.0:
		return interpolate(airmass, 1.5, 2.0, 0.95, 0.85)
	case airmass <= 3.0:
		return interpolate(airmass, 2.0, 3.0, 0.85, 0.65)
	default:
		return interpolate(math.Min(airmass, 5), 3.0, 5.0, 0.65, 0.5)
	}
}

// PrecipitationPenalty dampens the score for active or likely precipitation.
// Anything actually falling makes observation pointless.
func PrecipitationPenalty(s weather.Sample) float64 {
	if s.Precipitation > 0 {
		return 0.1
	}

	var prob float64
	if s.PrecipitationProbability != nil {
		prob = *s.PrecipitationProbability
	}

	switch {
	case prob > 80:
		return 0.3
	case prob > 50:
		return interpolate(prob, 50, 80, 0.6, 0.3)
	case prob > 20:
		return interpolate(prob, 20, 50, 0.9, 0.6)
	default:
		return 1.0
	}
}
