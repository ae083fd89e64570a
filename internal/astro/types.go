package astro

import (
	"fmt"
	"strings"
)

// ObjectType classifies a catalog object.
type ObjectType string

const (
	TypeMoon             ObjectType = "moon"
	TypeGalaxy           ObjectType = "galaxy"
	TypeNebula           ObjectType = "nebula"
	TypeOpenCluster      ObjectType = "open_cluster"
	TypeGlobularCluster  ObjectType = "globular_cluster"
	TypePlanetaryNebula  ObjectType = "planetary_nebula"
	TypeSupernovaRemnant ObjectType = "supernova_remnant"
	TypeStar             ObjectType = "star"
	TypeDoubleStar       ObjectType = "double_star"
	TypeOther            ObjectType = "other"
)

// Location is an observer position on Earth.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
}

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", l.Longitude)
	}
	return nil
}

func (l Location) String() string {
	latDir, lonDir := "N", "E"
	if l.Latitude < 0 {
		latDir = "S"
	}
	if l.Longitude < 0 {
		lonDir = "W"
	}
	return fmt.Sprintf("%s (%.2f%s, %.2f%s)", l.Name, abs(l.Latitude), latDir, abs(l.Longitude), lonDir)
}

// CelestialObject is a fixed object from the catalog.
type CelestialObject struct {
	Name          string     `json:"name"`
	Designation   string     `json:"designation"`
	RA            float64    `json:"ra"`  // degrees
	Dec           float64    `json:"dec"` // degrees
	Magnitude     float64    `json:"magnitude,omitempty"`
	Type          ObjectType `json:"object_type"`
	Constellation string     `json:"constellation,omitempty"`
	Description   string     `json:"description,omitempty"`
	Aliases       []string   `json:"aliases,omitempty"`
}

// IsDeepSky reports whether the object is faint and extended, and therefore
// sensitive to moonlight and sky brightness.
func (o CelestialObject) IsDeepSky() bool {
	switch o.Type {
	case TypeGalaxy, TypeNebula, TypeOpenCluster, TypeGlobularCluster,
		TypePlanetaryNebula, TypeSupernovaRemnant:
		return true
	}
	return false
}

// MatchesSearch reports whether the query matches the name, designation, or an alias.
func (o CelestialObject) MatchesSearch(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.ToLower(o.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(o.Designation), q) {
		return true
	}
	for _, a := range o.Aliases {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

// AstronomyFrame holds sun and moon state for one location and instant.
type AstronomyFrame struct {
	MoonIllumination float64 `json:"moon_illumination"` // 0-100
	MoonAltitude     float64 `json:"moon_altitude"`     // degrees
	MoonAzimuth      float64 `json:"moon_azimuth"`      // degrees
	MoonPhase        string  `json:"moon_phase"`
	SunAltitude      float64 `json:"sun_altitude"` // degrees, negative below horizon
}

// IsAstronomicalNight reports whether the sun is more than 18 degrees below the horizon.
func (f AstronomyFrame) IsAstronomicalNight() bool {
	return f.SunAltitude < -18
}

// IsMoonUp reports whether the moon is above the horizon.
func (f AstronomyFrame) IsMoonUp() bool {
	return f.MoonAltitude > 0
}

// TargetPosition is the sky position of one target at one instant.
type TargetPosition struct {
	Altitude  float64 `json:"altitude"`
	Azimuth   float64 `json:"azimuth"`
	Airmass   float64 `json:"airmass"` // +Inf below the horizon
	IsVisible bool    `json:"is_visible"`
}

// VisibleObject pairs a catalog object with its current altitude and azimuth.
type VisibleObject struct {
	Object   CelestialObject `json:"object"`
	Altitude float64         `json:"altitude"`
	Azimuth  float64         `json:"azimuth"`
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
