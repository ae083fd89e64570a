package forecast

import (
	"time"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/weather"
)

// Entry is one hour of a seeing forecast.
type Entry struct {
	Timestamp        time.Time      `json:"timestamp"`
	Score            scoring.Score  `json:"score"`
	Weather          weather.Sample `json:"weather"`
	MoonIllumination float64        `json:"moon_illumination"`
	MoonAltitude     float64        `json:"moon_altitude"`
	IsNight          bool           `json:"is_night"`
}

// IsObservable reports whether the hour permits observation at all.
func (e Entry) IsObservable() bool {
	return e.IsNight && e.Weather.CloudCover < 80
}

// Window is a maximal contiguous run of qualifying forecast entries.
// Never mutated after creation.
type Window struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AverageScore float64   `json:"average_score"`
	PeakScore    float64   `json:"peak_score"`
	PeakTime     time.Time `json:"peak_time"`
	Entries      []Entry   `json:"forecasts"`
}

// DurationHours returns the window length in hours.
// A single-entry window counts as one hour.
func (w Window) DurationHours() float64 {
	if len(w.Entries) < 2 {
		return 1
	}
	return w.End.Sub(w.Start).Hours()
}

// Report is the full seeing picture for one location and instant.
type Report struct {
	Location  astro.Location       `json:"location"`
	Timestamp time.Time            `json:"timestamp"`
	Weather   weather.Sample       `json:"weather"`
	Astronomy astro.AstronomyFrame `json:"astronomy"`
	Score     scoring.Score        `json:"score"`

	Target         *astro.CelestialObject `json:"target,omitempty"`
	TargetPosition *astro.TargetPosition  `json:"target_position,omitempty"`
}

// Night is one night's aggregate in a best-nights ranking.
type Night struct {
	Date         time.Time `json:"date"`
	AverageScore float64   `json:"average_score"`
	Summary      string    `json:"summary"`
}

// Comparison holds same-instant reports for several locations.
type Comparison struct {
	Timestamp time.Time        `json:"timestamp"`
	Locations []astro.Location `json:"locations"`
	Reports   []Report         `json:"reports"`
}

// RankedEntry pairs a location with its report in a comparison ranking.
type RankedEntry struct {
	Location astro.Location `json:"location"`
	Report   Report         `json:"report"`
}

// Ranked returns the compared locations ordered by total score descending.
func (c Comparison) Ranked() []RankedEntry {
	ranked := make([]RankedEntry, len(c.Locations))
	for i := range c.Locations {
		ranked[i] = RankedEntry{Location: c.Locations[i], Report: c.Reports[i]}
	}
	// Insertion sort keeps ties in input order.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Report.Score.Total > ranked[j-1].Report.Score.Total; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// Best returns the top-ranked location and its report.
func (c Comparison) Best() RankedEntry {
	return c.Ranked()[0]
}
