package scoring

import (
	"fmt"

	"github.com/astroseer/astroseer/internal/weather"
)

// Recommendations returns advisory strings for the score and conditions,
// most general first. Deterministic and threshold-driven.
func Recommendations(score Score, s weather.Sample) []string {
	var recs []string

	switch {
	case score.Total >= 85:
		recs = append(recs, "Outstanding conditions for all types of observation and imaging.")
	case score.Total >= 70:
		recs = append(recs, "Very good conditions. Excellent for planetary and deep-sky observation.")
	case score.Total >= 55:
		recs = append(recs, "Good conditions. Suitable for most visual observation.")
	case score.Total >= 40:
		recs = append(recs, "Fair conditions. Best for planetary observation and the Moon.")
	default:
		recs = append(recs, "Poor conditions. Consider rescheduling if possible.")
	}

	if score.Components[ComponentCloudCover] < 50 && s.CloudCover > 50 {
		recs = append(recs, fmt.Sprintf(
			"Cloud cover at %.0f%% may obstruct targets. Monitor for clearing.", s.CloudCover))
	}

	if score.Components[ComponentWindStability] < 60 {
		recs = append(recs, fmt.Sprintf(
			"Wind at %.1f m/s may cause tracking issues. Shield your setup if possible.", s.WindSpeed10m))
	}

	if score.Components[ComponentHumidity] < 60 && s.TemperatureDifferential() < 3 {
		recs = append(recs, "High humidity risk. Watch for dew formation on optics.")
	}

	if score.Components[ComponentTemperatureDifferential] < 50 {
		recs = append(recs, "Temperature differential is low. Thermal equilibration may take longer.")
	}

	if p, ok := score.Penalties[PenaltyMoon]; ok && p < 0.7 {
		recs = append(recs, "Bright Moon affecting deep-sky observation. Consider planetary targets or wait for moonset.")
	}

	return recs
}

// BestTargets maps target categories to a quality label for the conditions.
// Keys: planets, moon, deep_sky, imaging.
func BestTargets(score Score, s weather.Sample) map[string]string {
	total := score.Total
	targets := make(map[string]string, 4)

	switch {
	case total >= 60 || (total >= 40 && s.CloudCover < 30):
		if total >= 80 {
			targets["planets"] = "Excellent"
		} else {
			targets["planets"] = "Good"
		}
	case total >= 30:
		targets["planets"] = "Fair"
	default:
		targets["planets"] = "Poor"
	}

	switch {
	case total >= 50:
		targets["moon"] = "Excellent"
	case total >= 30:
		targets["moon"] = "Good"
	default:
		targets["moon"] = "Fair"
	}

	effectiveDeepSky := total * score.MoonPenaltyValue()
	switch {
	case effectiveDeepSky >= 70:
		targets["deep_sky"] = "Excellent"
	case effectiveDeepSky >= 50:
		targets["deep_sky"] = "Good"
	case effectiveDeepSky >= 35:
		targets["deep_sky"] = "Fair"
	default:
		targets["deep_sky"] = "Poor"
	}

	switch {
	case total >= 80 && s.WindSpeed10m < 3:
		targets["imaging"] = "Excellent"
	case total >= 65 && s.WindSpeed10m < 5:
		targets["imaging"] = "Good"
	case total >= 50:
		targets["imaging"] = "Fair"
	default:
		targets["imaging"] = "Not recommended"
	}

	return targets
}
