package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/forecast"
	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/weather"
)

func calmReport(total float64) forecast.Report {
	return forecast.Report{
		Score: scoring.Score{Total: total},
		Weather: weather.Sample{
			Temperature:  18.5,
			DewPoint:     10.0,
			Humidity:     55,
			CloudCover:   10,
			WindSpeed10m: 2.5,
		},
		Astronomy: astro.AstronomyFrame{
			MoonIllumination: 10,
			MoonAltitude:     -20,
		},
	}
}

func TestActivityRecommendations_SortedBestFirst(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())
	recs := svc.ActivityRecommendations(calmReport(75))

	require.Len(t, recs, 4)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
}

func TestActivityRecommendations_CleanNightGetsIdealBoost(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())
	recs := svc.ActivityRecommendations(calmReport(75))

	var visual ActivityRecommendation
	for _, r := range recs {
		if r.Activity == ActivityVisual {
			visual = r
		}
	}

	// Base 75 meets the visual ideal score of 70 with no issues: 75 * 1.1.
	assert.InDelta(t, 82.5, visual.Score, 1e-9)
	assert.Empty(t, visual.Issues)
	assert.Equal(t, "Very Good", visual.Rating)
}

func TestActivityScore_WindPenalty(t *testing.T) {
	report := calmReport(80)
	report.Weather.WindSpeed10m = 6.0

	// 6 m/s is double the planetary tolerance of 3: multiplier 1 - 1*0.5 = 0.5.
	score, issues := activityScore(report, ActivityPlanetaryImaging, profiles[1].Profile)
	assert.InDelta(t, 40.0, score, 1e-9)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Wind")
}

func TestActivityScore_WindPenaltyFloor(t *testing.T) {
	report := calmReport(80)
	report.Weather.WindSpeed10m = 30.0

	score, _ := activityScore(report, ActivityPlanetaryImaging, profiles[1].Profile)
	assert.InDelta(t, 80*0.3, score, 1e-9)
}

func TestActivityScore_MoonPenaltyOnlyForSensitiveActivities(t *testing.T) {
	report := calmReport(80)
	report.Astronomy.MoonAltitude = 40
	report.Astronomy.MoonIllumination = 90

	// Deep-sky imaging: penalty (0.9 - 0.3) * 0.5 = 0.3, multiplier 0.7.
	score, issues := activityScore(report, ActivityDeepSkyImaging, profiles[2].Profile)
	assert.InDelta(t, 56.0, score, 1e-9)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Moon")

	// Visual is not moon-sensitive and keeps its ideal boost.
	score, issues = activityScore(report, ActivityVisual, profiles[0].Profile)
	assert.InDelta(t, 88.0, score, 1e-9)
	assert.Empty(t, issues)
}

func TestActivityScore_MoonBelowHorizonIgnored(t *testing.T) {
	report := calmReport(80)
	report.Astronomy.MoonAltitude = -5
	report.Astronomy.MoonIllumination = 100

	_, issues := activityScore(report, ActivityDeepSkyImaging, profiles[2].Profile)
	assert.Empty(t, issues)
}

func TestActivityScore_CloudPenalty(t *testing.T) {
	report := calmReport(80)
	report.Weather.CloudCover = 55

	// 40 points over the deep-sky ceiling of 15: multiplier 1 - 0.4 = 0.6.
	score, issues := activityScore(report, ActivityDeepSkyImaging, profiles[2].Profile)
	assert.InDelta(t, 48.0, score, 1e-9)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Cloud cover")
}

func TestActivityScore_BoostCapsAtHundred(t *testing.T) {
	score, issues := activityScore(calmReport(99), ActivityVisual, profiles[0].Profile)
	assert.Empty(t, issues)
	assert.InDelta(t, 100.0, score, 1e-9)
}

func TestScoreRating(t *testing.T) {
	assert.Equal(t, "Excellent", scoreRating(90))
	assert.Equal(t, "Very Good", scoreRating(70))
	assert.Equal(t, "Good", scoreRating(55))
	assert.Equal(t, "Fair", scoreRating(40))
	assert.Equal(t, "Poor", scoreRating(39.9))
}

func suggestionTexts(s []EquipmentSuggestion) []string {
	out := make([]string, len(s))
	for i, sg := range s {
		out[i] = sg.Text
	}
	return out
}

func TestEquipmentSuggestions_DewRisk(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())

	report := calmReport(70)
	report.Weather.Temperature = 12
	report.Weather.DewPoint = 10

	got := svc.EquipmentSuggestions(report)
	texts := suggestionTexts(got)
	assert.Contains(t, texts, "High dew risk - use dew heaters on optics")

	report.Weather.DewPoint = 8
	texts = suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Moderate dew risk - have dew shields ready")
}

func TestEquipmentSuggestions_WindBands(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())

	report := calmReport(70)
	report.Weather.WindSpeed10m = 9
	texts := suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Strong wind (9 m/s) - use wind shields")

	report.Weather.WindSpeed10m = 6
	texts = suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Moderate wind - vibration damping recommended")

	report.Weather.WindSpeed10m = 1
	texts = suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Calm conditions - ideal for high magnification")
}

func TestEquipmentSuggestions_MoonAndClouds(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())

	report := calmReport(70)
	texts := suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Moon below horizon - perfect for deep-sky")

	report.Astronomy.MoonAltitude = 30
	report.Astronomy.MoonIllumination = 85
	report.Weather.CloudCover = 70
	texts = suggestionTexts(svc.EquipmentSuggestions(report))
	assert.Contains(t, texts, "Bright moon (85%) - use narrowband filters")
	assert.Contains(t, texts, "High cloud cover - monitor for clearing")
}

func TestEquipmentSuggestions_SortedByPriority(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())

	report := calmReport(70)
	report.Weather.Temperature = 12
	report.Weather.DewPoint = 11 // high
	report.Weather.WindSpeed10m = 6
	report.Weather.CloudCover = 70 // medium entries
	report.Weather.Humidity = 30   // low

	got := svc.EquipmentSuggestions(report)
	require.NotEmpty(t, got)

	order := map[string]int{"high": 0, "medium": 1, "low": 2}
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, order[got[i-1].Priority], order[got[i].Priority])
	}
	assert.Equal(t, "high", got[0].Priority)
}

func TestTargetRecommendations_SortedAndLimited(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())
	loc := astro.Location{Name: "Toronto", Latitude: 43.75, Longitude: -79.35}
	when := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)

	recs := svc.TargetRecommendations(calmReport(80), loc, when, 5)
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 5)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Altitude, 20.0)
		assert.NotEqual(t, "Moon", r.Name)
		assert.Contains(t, []string{"deep_sky", "visual"}, r.Activity)
	}
}

func TestTargetRecommendations_BrightMoonDemotesDeepSky(t *testing.T) {
	svc := NewService(astro.NewCalculator(), astro.NewCatalog())
	loc := astro.Location{Name: "Toronto", Latitude: 43.75, Longitude: -79.35}
	when := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)

	dark := calmReport(80)
	bright := calmReport(80)
	bright.Astronomy.MoonAltitude = 45
	bright.Astronomy.MoonIllumination = 95

	darkRecs := svc.TargetRecommendations(dark, loc, when, 0)
	brightRecs := svc.TargetRecommendations(bright, loc, when, 0)
	require.NotEmpty(t, darkRecs)

	darkByName := map[string]float64{}
	for _, r := range darkRecs {
		darkByName[r.Name] = r.Score
	}

	sawDeepSky := false
	for _, r := range brightRecs {
		obj := astro.NewCatalog().Search(r.Name)
		require.NotNil(t, obj)
		if obj.IsDeepSky() {
			sawDeepSky = true
			// 95% illumination gives factor 1 - 95/200 = 0.525.
			assert.InDelta(t, darkByName[r.Name]*0.525, r.Score, 1e-9)
		} else {
			assert.InDelta(t, darkByName[r.Name], r.Score, 1e-9)
		}
	}
	assert.True(t, sawDeepSky)
}

func TestActivityForObject(t *testing.T) {
	assert.Equal(t, "deep_sky", activityForObject(astro.CelestialObject{Type: astro.TypeGalaxy}))
	assert.Equal(t, "deep_sky", activityForObject(astro.CelestialObject{Type: astro.TypeNebula}))
	assert.Equal(t, "visual", activityForObject(astro.CelestialObject{Type: astro.TypeOpenCluster}))
	assert.Equal(t, "visual", activityForObject(astro.CelestialObject{Type: astro.TypeStar}))
}
