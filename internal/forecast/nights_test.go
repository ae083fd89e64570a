package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroseer/astroseer/internal/astro"
	"github.com/astroseer/astroseer/internal/scoring"
	"github.com/astroseer/astroseer/internal/weather"
)

// nightOf builds night entries on one UTC date with uniform conditions.
func nightOf(day time.Time, score, cloud, wind float64, hours int) []Entry {
	entries := make([]Entry, hours)
	for i := range entries {
		entries[i] = Entry{
			Timestamp: day.Add(time.Duration(i) * time.Hour),
			Score:     scoring.Score{Total: score},
			Weather:   weather.Sample{CloudCover: cloud, WindSpeed10m: wind},
			IsNight:   true,
		}
	}
	return entries
}

func TestRankNights_OrdersByAverageDesc(t *testing.T) {
	d1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	var entries []Entry
	entries = append(entries, nightOf(d1, 60, 30, 4, 6)...)
	entries = append(entries, nightOf(d2, 85, 10, 2, 6)...)
	entries = append(entries, nightOf(d3, 70, 40, 5, 6)...)

	nights := RankNights(entries, 40)

	require.Len(t, nights, 3)
	assert.Equal(t, d2, nights[0].Date)
	assert.Equal(t, 85.0, nights[0].AverageScore)
	assert.Equal(t, d3, nights[1].Date)
	assert.Equal(t, d1, nights[2].Date)
}

func TestRankNights_FiltersBelowMinScore(t *testing.T) {
	d1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	entries := nightOf(d1, 35, 70, 8, 6)

	assert.Empty(t, RankNights(entries, 40))
}

func TestRankNights_IgnoresDaytime(t *testing.T) {
	d1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	entries := nightOf(d1, 80, 10, 2, 4)
	day := Entry{Timestamp: d1.Add(12 * time.Hour), Score: scoring.Score{Total: 0}, IsNight: false}
	entries = append(entries, day)

	nights := RankNights(entries, 40)

	require.Len(t, nights, 1)
	assert.Equal(t, 80.0, nights[0].AverageScore, "daytime zero must not drag the night average")
}

func TestRankNights_TieBreaksOnDate(t *testing.T) {
	d1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	var entries []Entry
	entries = append(entries, nightOf(d2, 75, 10, 2, 6)...)
	entries = append(entries, nightOf(d1, 75, 10, 2, 6)...)

	nights := RankNights(entries, 40)

	require.Len(t, nights, 2)
	assert.Equal(t, d1, nights[0].Date)
}

func TestNightSummary(t *testing.T) {
	assert.Equal(t, "Excellent. clear skies. calm", nightSummary(85, 10, 2))
	assert.Equal(t, "Very good. partly cloudy. light wind", nightSummary(70, 35, 5))
	assert.Equal(t, "Good. variable clouds", nightSummary(50, 60, 9))
}

func TestComparisonRanked(t *testing.T) {
	locA := astro.Location{Name: "A", Latitude: 43, Longitude: 6}
	locB := astro.Location{Name: "B", Latitude: 44, Longitude: 7}
	locC := astro.Location{Name: "C", Latitude: 45, Longitude: 8}

	c := Comparison{
		Locations: []astro.Location{locA, locB, locC},
		Reports: []Report{
			{Location: locA, Score: scoring.Score{Total: 55}},
			{Location: locB, Score: scoring.Score{Total: 82}},
			{Location: locC, Score: scoring.Score{Total: 55}},
		},
	}

	ranked := c.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, "B", ranked[0].Location.Name)
	// Ties keep input order.
	assert.Equal(t, "A", ranked[1].Location.Name)
	assert.Equal(t, "C", ranked[2].Location.Name)

	assert.Equal(t, "B", c.Best().Location.Name)
}
