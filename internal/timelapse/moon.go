package timelapse

import (
	"math"
	"time"

	"github.com/astroseer/astroseer/internal/astro"
)

// AnalyzeMoonInterference samples the moon hourly across [start, end], tracks
// its minimum angular distance from the target, detects horizon crossings
// inside the window, and classifies the overall severity.
func AnalyzeMoonInterference(calc *astro.Calculator, target astro.CelestialObject, loc astro.Location, start, end time.Time) MoonInterference {
	type moonSample struct {
		time     time.Time
		altitude float64
	}

	var samples []moonSample
	minDist := 180.0
	altSum := 0.0

	for t := start; !t.After(end); t = t.Add(time.Hour) {
		moonAlt, moonAz := calc.MoonPosition(loc, t)
		pos := calc.TargetPosition(target, loc, t)

		if dist := astro.AngularSeparation(pos.Altitude, pos.Azimuth, moonAlt, moonAz); dist < minDist {
			minDist = dist
		}

		samples = append(samples, moonSample{time: t, altitude: moonAlt})
		altSum += moonAlt
	}

	mid := start.Add(end.Sub(start) / 2)
	illumination := calc.MoonIllumination(mid)

	var risesAt, setsAt *time.Time
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.altitude <= 0 && cur.altitude > 0 {
			t := cur.time
			risesAt = &t
		} else if prev.altitude > 0 && cur.altitude <= 0 {
			t := cur.time
			setsAt = &t
		}
	}

	avgAlt := 0.0
	if len(samples) > 0 {
		avgAlt = altSum / float64(len(samples))
	}

	return MoonInterference{
		RisesAt:            risesAt,
		SetsAt:             setsAt,
		Illumination:       illumination,
		MinAngularDistance: minDist,
		AvgAltitude:        avgAlt,
		Severity:           ClassifySeverity(illumination, avgAlt, minDist),
	}
}

// ClassifySeverity maps moon illumination, average altitude, and minimum
// angular distance from the target to an interference severity.
func ClassifySeverity(illumination, avgAltitude, minAngularDistance float64) Severity {
	if avgAltitude <= 0 {
		return SeverityNone
	}

	if illumination < 20 {
		if minAngularDistance > 30 {
			return SeverityNone
		}
		return SeverityMinor
	}

	illumFactor := illumination / 100
	altFactor := math.Min(1, math.Max(0, avgAltitude/45))
	distFactor := math.Max(0, 1-minAngularDistance/90)

	score := illumFactor * altFactor * (1 + distFactor)

	switch {
	case score < 0.2:
		return SeverityNone
	case score < 0.4:
		return SeverityMinor
	case score < 0.7:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}
