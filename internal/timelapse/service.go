package timelapse

import (
	"context"
	"sort"
	"time"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/forecast"
)

// SearchParams control an imaging-window search.
type SearchParams struct {
	MinDurationHours float64    // minimum window length
	MinAltitude      float64    // degrees above horizon
	SearchDays       int        // horizon in days
	MinScore         float64    // minimum seeing score
	TargetDate       *time.Time // restrict to one calendar date when set
}

// DefaultSearchParams returns the standard imaging-window search settings.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		MinDurationHours: 4,
		MinAltitude:      30,
		SearchDays:       7,
		MinScore:         40,
	}
}

// Service plans imaging sessions on top of the forecast service.
type Service struct {
	forecasts *forecast.Service
	calc      *astro.Calculator
	catalog   *astro.Catalog
}

// NewService constructs a Service sharing the forecast service's calculator
// and catalog.
func NewService(forecasts *forecast.Service) *Service {
	return &Service{
		forecasts: forecasts,
		calc:      forecasts.Calculator(),
		catalog:   forecasts.Catalog(),
	}
}

// visibilitySample is one forecast hour annotated with the target's position.
type visibilitySample struct {
	entry    forecast.Entry
	altitude float64
	azimuth  float64
}

// FindImagingWindows finds all viable imaging windows for the named target,
// sorted by average seeing score descending. An unknown target is an error;
// an empty forecast yields an empty result.
func (s *Service) FindImagingWindows(ctx context.Context, targetName string, loc astro.Location, params SearchParams) ([]Window, error) {
	target, err := s.catalog.Get(targetName)
	if err != nil {
		return nil, err
	}

	entries, err := s.forecasts.Forecast(ctx, loc, params.SearchDays*24, target)
	if err != nil {
		return nil, err
	}

	samples := make([]visibilitySample, 0, len(entries))
	for _, e := range entries {
		pos := s.calc.TargetPosition(*target, loc, e.Timestamp)
		samples = append(samples, visibilitySample{entry: e, altitude: pos.Altitude, azimuth: pos.Azimuth})
	}

	if params.TargetDate != nil {
		dateKey := params.TargetDate.UTC().Format("2006-01-02")
		filtered := samples[:0]
		for _, v := range samples {
			if v.entry.Timestamp.UTC().Format("2006-01-02") == dateKey {
				filtered = append(filtered, v)
			}
		}
		samples = filtered
	}

	runs := findVisibilityRuns(samples, params)

	windows := make([]Window, 0, len(runs))
	for _, run := range runs {
		windows = append(windows, s.buildWindow(run, *target, loc))
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].AverageScore > windows[j].AverageScore
	})

	return windows, nil
}

// findVisibilityRuns collects maximal contiguous runs where the target is up
// at night with an acceptable score, tolerating gaps up to two hours. Run
// duration is measured in elapsed hours; a single sample counts as one hour.
func findVisibilityRuns(samples []visibilitySample, params SearchParams) [][]visibilitySample {
	var runs [][]visibilitySample
	var run []visibilitySample

	runDuration := func() float64 {
		if len(run) < 2 {
			return 1
		}
		return run[len(run)-1].entry.Timestamp.Sub(run[0].entry.Timestamp).Hours()
	}

	flush := func() {
		if len(run) > 0 && runDuration() >= params.MinDurationHours {
			runs = append(runs, run)
		}
		run = nil
	}

	for _, v := range samples {
		suitable := v.entry.IsNight &&
			v.altitude >= params.MinAltitude &&
			v.entry.Score.Total >= params.MinScore

		if !suitable {
			flush()
			continue
		}

		if len(run) > 0 && v.entry.Timestamp.Sub(run[len(run)-1].entry.Timestamp) > 2*time.Hour {
			flush()
		}
		run = append(run, v)
	}
	flush()

	return runs
}

// buildWindow enriches a visibility run with score statistics, a 15-minute
// altitude profile, and a moon interference record.
func (s *Service) buildWindow(run []visibilitySample, target astro.CelestialObject, loc astro.Location) Window {
	entries := make([]forecast.Entry, len(run))
	scoreSum := 0.0
	minScore, maxScore := run[0].entry.Score.Total, run[0].entry.Score.Total
	peakIdx := 0

	for i, v := range run {
		entries[i] = v.entry
		total := v.entry.Score.Total
		scoreSum += total
		if total < minScore {
			minScore = total
		}
		if total > maxScore {
			maxScore = total
		}
		if v.altitude > run[peakIdx].altitude {
			peakIdx = i
		}
	}

	start := run[0].entry.Timestamp
	end := run[len(run)-1].entry.Timestamp

	interference := AnalyzeMoonInterference(s.calc, target, loc, start, end)

	return Window{
		TargetName:        target.Name,
		TargetDescription: target.Description,
		Date:              start.Truncate(24 * time.Hour),
		Start:             start,
		End:               end,
		StartAltitude:     run[0].altitude,
		EndAltitude:       run[len(run)-1].altitude,
		StartAzimuth:      run[0].azimuth,
		EndAzimuth:        run[len(run)-1].azimuth,
		PeakAltitude:      run[peakIdx].altitude,
		PeakTime:          run[peakIdx].entry.Timestamp,
		AverageScore:      scoreSum / float64(len(run)),
		MinScore:          minScore,
		MaxScore:          maxScore,
		MoonInterference:  &interference,
		AltitudeProfile:   s.altitudeProfile(target, loc, start, end),
		Entries:           entries,
	}
}

// altitudeProfile samples the target altitude every 15 minutes across the window.
func (s *Service) altitudeProfile(target astro.CelestialObject, loc astro.Location, start, end time.Time) []AltitudePoint {
	var profile []AltitudePoint
	for t := start; !t.After(end); t = t.Add(15 * time.Minute) {
		pos := s.calc.TargetPosition(target, loc, t)
		profile = append(profile, AltitudePoint{Time: t, Altitude: pos.Altitude})
	}
	return profile
}
