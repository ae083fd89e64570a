package advisor

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/forecast"
)

// ActivityRecommendation scores one activity type for the current conditions.
type ActivityRecommendation struct {
	Activity Activity `json:"activity"`
	Score    float64  `json:"score"`
	Rating   string   `json:"rating"`
	Issues   []string `json:"issues,omitempty"`
}

// EquipmentSuggestion is a single equipment or technique hint.
type EquipmentSuggestion struct {
	Text     string `json:"text"`
	Priority string `json:"priority"` // high, medium, low
}

// TargetRecommendation is a suggested target for tonight.
type TargetRecommendation struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Altitude    float64 `json:"altitude"`
	Score       float64 `json:"score"`
	Activity    string  `json:"activity_type"`
}

// Service produces recommendations from seeing reports.
type Service struct {
	calc    *astro.Calculator
	catalog *astro.Catalog
}

// NewService constructs a Service.
func NewService(calc *astro.Calculator, catalog *astro.Catalog) *Service {
	return &Service{calc: calc, catalog: catalog}
}

// ActivityRecommendations scores every activity profile against the report,
// best first.
func (s *Service) ActivityRecommendations(report forecast.Report) []ActivityRecommendation {
	recs := make([]ActivityRecommendation, 0, len(profiles))

	for _, p := range profiles {
		score, issues := activityScore(report, p.Activity, p.Profile)
		recs = append(recs, ActivityRecommendation{
			Activity: p.Activity,
			Score:    score,
			Rating:   scoreRating(score),
			Issues:   issues,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return recs
}

// activityScore applies the profile's wind, moon, and cloud multipliers to the
// base seeing score; ideal conditions with no issues earn a 10% boost.
func activityScore(report forecast.Report, activity Activity, profile Profile) (float64, []string) {
	base := report.Score.Total
	var issues []string
	multiplier := 1.0

	wind := report.Weather.WindSpeed10m
	if wind > profile.WindTolerance {
		over := (wind - profile.WindTolerance) / profile.WindTolerance
		multiplier *= math.Max(0.3, 1-over*0.5)
		issues = append(issues, fmt.Sprintf("Wind %.1f m/s exceeds ideal", wind))
	}

	if moonSensitive(activity) {
		moonIllum := report.Astronomy.MoonIllumination / 100
		if report.Astronomy.MoonAltitude > 0 && moonIllum > profile.MoonTolerance {
			penalty := (moonIllum - profile.MoonTolerance) * 0.5
			multiplier *= math.Max(0.5, 1-penalty)
			issues = append(issues, fmt.Sprintf("Moon %d%% may interfere", int(moonIllum*100)))
		}
	}

	clouds := report.Weather.CloudCover
	if clouds > profile.CloudMax {
		over := (clouds - profile.CloudMax) / 100
		multiplier *= math.Max(0.2, 1-over)
		issues = append(issues, fmt.Sprintf("Cloud cover %.0f%% limits visibility", clouds))
	}

	final := base * multiplier
	if base >= profile.IdealScore && len(issues) == 0 {
		final = math.Min(100, final*1.1)
	}

	return final, issues
}

func scoreRating(score float64) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Very Good"
	case score >= 55:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// EquipmentSuggestions derives priority-ordered equipment hints from the report.
func (s *Service) EquipmentSuggestions(report forecast.Report) []EquipmentSuggestion {
	var suggestions []EquipmentSuggestion
	w := report.Weather

	tempDiff := w.TemperatureDifferential()
	if tempDiff < 3 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "High dew risk - use dew heaters on optics", Priority: "high"})
	} else if tempDiff < 5 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Moderate dew risk - have dew shields ready", Priority: "medium"})
	}

	switch wind := w.WindSpeed10m; {
	case wind > 8:
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: fmt.Sprintf("Strong wind (%.0f m/s) - use wind shields", wind), Priority: "high"})
	case wind > 5:
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Moderate wind - vibration damping recommended", Priority: "medium"})
	case wind < 2:
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Calm conditions - ideal for high magnification", Priority: "low"})
	}

	if w.Humidity > 90 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Very high humidity - protect mirrors and lenses", Priority: "high"})
	} else if w.Humidity < 40 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Low humidity - excellent optical conditions", Priority: "low"})
	}

	moonIllum := report.Astronomy.MoonIllumination
	if report.Astronomy.MoonAltitude <= 0 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "Moon below horizon - perfect for deep-sky", Priority: "low"})
	} else if moonIllum > 70 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: fmt.Sprintf("Bright moon (%.0f%%) - use narrowband filters", moonIllum), Priority: "medium"})
	}

	if w.CloudCover > 60 {
		suggestions = append(suggestions, EquipmentSuggestion{
			Text: "High cloud cover - monitor for clearing", Priority: "medium"})
	}

	priorityOrder := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return priorityOrder[suggestions[i].Priority] < priorityOrder[suggestions[j].Priority]
	})

	return suggestions
}

// maxCandidates bounds how many visible objects are scored.
const maxCandidates = 20

// TargetRecommendations ranks currently-visible catalog objects by a score
// derived from the base seeing score adjusted for each object's airmass and,
// for deep-sky objects, moon brightness.
func (s *Service) TargetRecommendations(report forecast.Report, loc astro.Location, t time.Time, limit int) []TargetRecommendation {
	visible := s.catalog.GetVisible(s.calc, loc, t, 20)
	if len(visible) > maxCandidates {
		visible = visible[:maxCandidates]
	}

	moonIllum := report.Astronomy.MoonIllumination
	base := report.Score.Total

	recs := make([]TargetRecommendation, 0, len(visible))
	for _, v := range visible {
		score := base

		airmass := astro.Airmass(v.Altitude)
		if airmass > 2.0 {
			score *= 0.8
		} else if airmass > 1.5 {
			score *= 0.9
		}

		if v.Object.IsDeepSky() && moonIllum > 50 && report.Astronomy.MoonAltitude > 0 {
			score *= math.Max(0.5, 1-moonIllum/200)
		}

		recs = append(recs, TargetRecommendation{
			Name:        v.Object.Name,
			Description: v.Object.Description,
			Altitude:    v.Altitude,
			Score:       score,
			Activity:    activityForObject(v.Object),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// activityForObject labels the object with its best-suited activity type.
func activityForObject(obj astro.CelestialObject) string {
	if obj.IsDeepSky() {
		if obj.Type == astro.TypeGalaxy || obj.Type == astro.TypeNebula {
			return "deep_sky"
		}
		return "visual"
	}
	return "visual"
}
