package forecast

import (
	"sort"
	"strings"
	"time"
)

// RankNights groups night-time forecast entries by calendar date, averages the
// seeing score per night, and returns nights at or above minScore, best first.
func RankNights(entries []Entry, minScore float64) []Night {
	byDate := make(map[string][]Entry)
	for _, e := range entries {
		if !e.IsNight {
			continue
		}
		key := e.Timestamp.UTC().Format("2006-01-02")
		byDate[key] = append(byDate[key], e)
	}

	nights := make([]Night, 0, len(byDate))
	for key, nightEntries := range byDate {
		var scoreSum, cloudSum, windSum float64
		for _, e := range nightEntries {
			scoreSum += e.Score.Total
			cloudSum += e.Weather.CloudCover
			windSum += e.Weather.WindSpeed10m
		}
		n := float64(len(nightEntries))
		avgScore := scoreSum / n
		if avgScore < minScore {
			continue
		}

		date, _ := time.Parse("2006-01-02", key)
		nights = append(nights, Night{
			Date:         date,
			AverageScore: avgScore,
			Summary:      nightSummary(avgScore, cloudSum/n, windSum/n),
		})
	}

	sort.Slice(nights, func(i, j int) bool {
		if nights[i].AverageScore != nights[j].AverageScore {
			return nights[i].AverageScore > nights[j].AverageScore
		}
		return nights[i].Date.Before(nights[j].Date)
	})

	return nights
}

// nightSummary builds a short text summary from the night's averages.
func nightSummary(avgScore, avgCloud, avgWind float64) string {
	var parts []string

	switch {
	case avgScore >= 80:
		parts = append(parts, "Excellent")
	case avgScore >= 65:
		parts = append(parts, "Very good")
	default:
		parts = append(parts, "Good")
	}

	switch {
	case avgCloud < 20:
		parts = append(parts, "clear skies")
	case avgCloud < 50:
		parts = append(parts, "partly cloudy")
	default:
		parts = append(parts, "variable clouds")
	}

	if avgWind < 3 {
		parts = append(parts, "calm")
	} else if avgWind < 7 {
		parts = append(parts, "light wind")
	}

	return strings.Join(parts, ". ")
}
