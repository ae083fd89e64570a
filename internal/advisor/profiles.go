// Package advisor derives activity suitability, equipment suggestions, and
// target recommendations from a seeing report.
package advisor

// Activity identifies an observation activity profile.
type Activity string

const (
	ActivityVisual           Activity = "visual"
	ActivityPlanetaryImaging Activity = "planetary_imaging"
	ActivityDeepSkyImaging   Activity = "deep_sky_imaging"
	ActivityWidefield        Activity = "widefield"
)

// Profile holds the condition requirements for one activity.
type Profile struct {
	MinScore      float64
	IdealScore    float64
	WindTolerance float64 // m/s
	MoonTolerance float64 // illumination fraction 0-1
	CloudMax      float64 // percent
}

// profiles is the fixed activity set, evaluated in this order.
var profiles = []struct {
	Activity Activity
	Profile  Profile
}{
	{ActivityVisual, Profile{MinScore: 40, IdealScore: 70, WindTolerance: 10.0, MoonTolerance: 0.8, CloudMax: 50}},
	{ActivityPlanetaryImaging, Profile{MinScore: 70, IdealScore: 90, WindTolerance: 3.0, MoonTolerance: 1.0, CloudMax: 20}},
	{ActivityDeepSkyImaging, Profile{MinScore: 60, IdealScore: 85, WindTolerance: 5.0, MoonTolerance: 0.3, CloudMax: 15}},
	{ActivityWidefield, Profile{MinScore: 50, IdealScore: 75, WindTolerance: 8.0, MoonTolerance: 0.4, CloudMax: 25}},
}

// moonSensitive reports whether the activity suffers under moonlight.
func moonSensitive(a Activity) bool {
	return a == ActivityDeepSkyImaging || a == ActivityWidefield
}
