package astro

import (
	"math"
	"time"
)

// Calculator derives sun, moon, and target positions from low-precision
// ephemeris series. Accuracy is a fraction of a degree, which is enough for
// observability decisions; it is not an orbital-mechanics engine.
type Calculator struct{}

// NewCalculator constructs a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

const degToRad = math.Pi / 180

// julianDay converts a time to the Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UTC().UnixMilli())/86400000.0 + 2440587.5
}

// julianCenturies returns Julian centuries since J2000.0.
func julianCenturies(t time.Time) float64 {
	return (julianDay(t) - 2451545.0) / 36525.0
}

// normalizeDegrees wraps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// greenwichSiderealTime returns GMST in degrees.
func greenwichSiderealTime(t time.Time) float64 {
	jd := julianDay(t)
	T := (jd - 2451545.0) / 36525.0
	gmst := 280.46061837 + 360.98564736629*(jd-2451545.0) + 0.000387933*T*T - T*T*T/38710000.0
	return normalizeDegrees(gmst)
}

// sunEclipticLongitude returns the sun's apparent ecliptic longitude in degrees.
func sunEclipticLongitude(T float64) float64 {
	L0 := normalizeDegrees(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := normalizeDegrees(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := M * degToRad
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)
	return normalizeDegrees(L0 + C)
}

// moonEcliptic returns the moon's geocentric ecliptic longitude and latitude in
// degrees, using the truncated series from the Astronomical Almanac.
func moonEcliptic(T float64) (lon, lat float64) {
	lon = 218.32 + 481267.881*T +
		6.29*math.Sin((134.9+477198.85*T)*degToRad) -
		1.27*math.Sin((259.2-413335.38*T)*degToRad) +
		0.66*math.Sin((235.7+890534.23*T)*degToRad) +
		0.21*math.Sin((269.9+954397.70*T)*degToRad) -
		0.19*math.Sin((357.5+35999.05*T)*degToRad) -
		0.11*math.Sin((186.6+966404.05*T)*degToRad)
	lat = 5.13*math.Sin((93.3+483202.03*T)*degToRad) +
		0.28*math.Sin((228.2+960400.87*T)*degToRad) -
		0.28*math.Sin((318.3+6003.18*T)*degToRad) -
		0.17*math.Sin((217.6-407332.20*T)*degToRad)
	return normalizeDegrees(lon), lat
}

// obliquity returns the mean obliquity of the ecliptic in degrees.
func obliquity(T float64) float64 {
	return 23.439291 - 0.0130042*T
}

// eclipticToEquatorial converts ecliptic longitude/latitude to RA/Dec, all in degrees.
func eclipticToEquatorial(lon, lat, T float64) (ra, dec float64) {
	eps := obliquity(T) * degToRad
	lonRad := lon * degToRad
	latRad := lat * degToRad

	sinDec := math.Sin(latRad)*math.Cos(eps) + math.Cos(latRad)*math.Sin(eps)*math.Sin(lonRad)
	dec = math.Asin(sinDec) / degToRad

	y := math.Sin(lonRad)*math.Cos(eps) - math.Tan(latRad)*math.Sin(eps)
	x := math.Cos(lonRad)
	ra = normalizeDegrees(math.Atan2(y, x) / degToRad)
	return ra, dec
}

// equatorialToHorizontal converts RA/Dec (degrees) to altitude/azimuth (degrees)
// for the given observer and time. Azimuth is measured from north through east.
func equatorialToHorizontal(ra, dec float64, loc Location, t time.Time) (alt, az float64) {
	lst := normalizeDegrees(greenwichSiderealTime(t) + loc.Longitude)
	ha := normalizeDegrees(lst-ra) * degToRad
	latRad := loc.Latitude * degToRad
	decRad := dec * degToRad

	sinAlt := math.Sin(decRad)*math.Sin(latRad) + math.Cos(decRad)*math.Cos(latRad)*math.Cos(ha)
	alt = math.Asin(clampUnit(sinAlt)) / degToRad

	y := -math.Sin(ha) * math.Cos(decRad)
	x := math.Sin(decRad)*math.Cos(latRad) - math.Cos(decRad)*math.Sin(latRad)*math.Cos(ha)
	az = normalizeDegrees(math.Atan2(y, x) / degToRad)
	return alt, az
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// SunAltitude returns the sun's altitude in degrees at the location and time.
func (c *Calculator) SunAltitude(loc Location, t time.Time) float64 {
	T := julianCenturies(t)
	ra, dec := eclipticToEquatorial(sunEclipticLongitude(T), 0, T)
	alt, _ := equatorialToHorizontal(ra, dec, loc, t)
	return alt
}

// MoonPosition returns the moon's altitude and azimuth in degrees.
func (c *Calculator) MoonPosition(loc Location, t time.Time) (altitude, azimuth float64) {
	T := julianCenturies(t)
	lon, lat := moonEcliptic(T)
	ra, dec := eclipticToEquatorial(lon, lat, T)
	return equatorialToHorizontal(ra, dec, loc, t)
}

// MoonIllumination returns the illuminated fraction of the moon as a percentage.
func (c *Calculator) MoonIllumination(t time.Time) float64 {
	T := julianCenturies(t)
	moonLon, _ := moonEcliptic(T)
	sunLon := sunEclipticLongitude(T)
	phaseAngle := normalizeDegrees(moonLon - sunLon)
	return (1 - math.Cos(phaseAngle*degToRad)) / 2 * 100
}

// MoonPhaseName maps an illumination percentage to a phase label.
// The Full Moon boundary near 95-97% is deliberately asymmetric.
func MoonPhaseName(illumination float64) string {
	switch {
	case illumination < 3:
		return "New Moon"
	case illumination < 25:
		return "Waxing Crescent"
	case illumination < 50:
		return "First Quarter"
	case illumination < 75:
		return "Waxing Gibbous"
	case illumination < 97:
		if illumination > 95 {
			return "Full Moon"
		}
		return "Waning Gibbous"
	default:
		return "Full Moon"
	}
}

// Airmass computes atmospheric airmass for an altitude in degrees using the
// Pickering (2002) formula. Below the horizon it returns +Inf.
func Airmass(altitude float64) float64 {
	if altitude <= 0 {
		return math.Inf(1)
	}
	arg := altitude + 244/(165+47*math.Pow(altitude, 1.1))
	return math.Max(1, 1/math.Sin(arg*degToRad))
}

// AngularSeparation returns the angular distance in degrees between two
// horizontal positions, via the spherical law of cosines. The cosine is
// clamped to [-1, 1] before acos.
func AngularSeparation(alt1, az1, alt2, az2 float64) float64 {
	a1 := alt1 * degToRad
	a2 := alt2 * degToRad
	dAz := abs(az1-az2) * degToRad

	cosDist := math.Sin(a1)*math.Sin(a2) + math.Cos(a1)*math.Cos(a2)*math.Cos(dAz)
	return math.Acos(clampUnit(cosDist)) / degToRad
}

// Frame returns the full sun/moon state for a location and time.
func (c *Calculator) Frame(loc Location, t time.Time) AstronomyFrame {
	illum := c.MoonIllumination(t)
	moonAlt, moonAz := c.MoonPosition(loc, t)

	return AstronomyFrame{
		MoonIllumination: illum,
		MoonAltitude:     moonAlt,
		MoonAzimuth:      moonAz,
		MoonPhase:        MoonPhaseName(illum),
		SunAltitude:      c.SunAltitude(loc, t),
	}
}

// TargetPosition returns altitude, azimuth and airmass for a catalog object.
// The Moon is positioned from its own ephemeris; everything else from RA/Dec.
func (c *Calculator) TargetPosition(obj CelestialObject, loc Location, t time.Time) TargetPosition {
	var alt, az float64
	if obj.Type == TypeMoon {
		alt, az = c.MoonPosition(loc, t)
	} else {
		alt, az = equatorialToHorizontal(obj.RA, obj.Dec, loc, t)
	}

	return TargetPosition{
		Altitude:  alt,
		Azimuth:   az,
		Airmass:   Airmass(alt),
		IsVisible: alt > 0,
	}
}

// IsAstronomicalNight reports whether the sun is below -18 degrees.
func (c *Calculator) IsAstronomicalNight(loc Location, t time.Time) bool {
	return c.SunAltitude(loc, t) < -18
}
