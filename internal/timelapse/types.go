// Package timelapse plans imaging sessions: per-target observing windows with
// altitude profiles and moon interference analysis.
package timelapse

import (
	"fmt"
	"time"

	"github.com/astroseer/astroseer/internal/forecast"
)

// Severity classifies how badly the moon interferes with a target.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// MoonInterference describes the moon's impact over one imaging window.
type MoonInterference struct {
	RisesAt            *time.Time `json:"rises_at,omitempty"` // only when inside the window
	SetsAt             *time.Time `json:"sets_at,omitempty"`
	Illumination       float64    `json:"illumination"`         // at window midpoint
	MinAngularDistance float64    `json:"min_angular_distance"` // degrees from target
	AvgAltitude        float64    `json:"avg_altitude"`
	Severity           Severity   `json:"severity"`
}

// AltitudePoint is one sample of a target altitude profile.
type AltitudePoint struct {
	Time     time.Time `json:"time"`
	Altitude float64   `json:"altitude"`
}

// Window is a viable imaging window for one target.
type Window struct {
	TargetName        string `json:"target_name"`
	TargetDescription string `json:"target_description,omitempty"`

	Date  time.Time `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	StartAltitude float64   `json:"start_altitude"`
	EndAltitude   float64   `json:"end_altitude"`
	StartAzimuth  float64   `json:"start_azimuth"`
	EndAzimuth    float64   `json:"end_azimuth"`
	PeakAltitude  float64   `json:"peak_altitude"`
	PeakTime      time.Time `json:"peak_time"`

	AverageScore float64 `json:"average_score"`
	MinScore     float64 `json:"min_score"`
	MaxScore     float64 `json:"max_score"`

	MoonInterference *MoonInterference `json:"moon_interference,omitempty"`
	AltitudeProfile  []AltitudePoint   `json:"altitude_profile,omitempty"`
	Entries          []forecast.Entry  `json:"forecasts,omitempty"`
}

// DurationHours returns the window length in hours; a single-entry window
// counts as one hour.
func (w Window) DurationHours() float64 {
	if len(w.Entries) < 2 {
		return 1
	}
	return w.End.Sub(w.Start).Hours()
}

// DurationString formats the duration as "4h 30m".
func (w Window) DurationString() string {
	hours := int(w.DurationHours())
	minutes := int((w.DurationHours() - float64(hours)) * 60)
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}
