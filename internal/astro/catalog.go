package astro

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a catalog lookup matches nothing.
var ErrNotFound = fmt.Errorf("object not found in catalog")

// Catalog holds the fixed-object catalog used for target resolution and
// visibility listings. Planets are intentionally absent: positioning them
// needs orbital mechanics that is out of scope. The Moon is present and
// positioned by the Calculator.
type Catalog struct {
	objects []CelestialObject
}

// NewCatalog constructs a Catalog with the built-in object set.
func NewCatalog() *Catalog {
	return &Catalog{objects: builtinObjects}
}

// NewCatalogWithObjects constructs a Catalog with a custom object set (for tests).
func NewCatalogWithObjects(objects []CelestialObject) *Catalog {
	return &Catalog{objects: objects}
}

// Search finds an object by name, designation, or alias.
// Exact matches win over partial matches. Returns nil when nothing matches.
func (c *Catalog) Search(query string) *CelestialObject {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	for i := range c.objects {
		if strings.ToLower(c.objects[i].Name) == q || strings.ToLower(c.objects[i].Designation) == q {
			return &c.objects[i]
		}
	}
	for i := range c.objects {
		if c.objects[i].MatchesSearch(q) {
			return &c.objects[i]
		}
	}
	return nil
}

// Get is Search that fails loudly.
func (c *Catalog) Get(query string) (*CelestialObject, error) {
	obj := c.Search(query)
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return obj, nil
}

// DeepSky returns all deep-sky objects.
func (c *Catalog) DeepSky() []CelestialObject {
	var out []CelestialObject
	for _, obj := range c.objects {
		if obj.IsDeepSky() {
			out = append(out, obj)
		}
	}
	return out
}

// GetVisible returns catalog objects above minAltitude at the location and
// time, sorted by altitude descending. The Moon is skipped; it is handled by
// its own position path.
func (c *Catalog) GetVisible(calc *Calculator, loc Location, t time.Time, minAltitude float64) []VisibleObject {
	var visible []VisibleObject
	for _, obj := range c.objects {
		if obj.Type == TypeMoon {
			continue
		}
		pos := calc.TargetPosition(obj, loc, t)
		if pos.Altitude >= minAltitude {
			visible = append(visible, VisibleObject{Object: obj, Altitude: pos.Altitude, Azimuth: pos.Azimuth})
		}
	}

	sort.Slice(visible, func(i, j int) bool { return visible[i].Altitude > visible[j].Altitude })
	return visible
}

// Len returns the number of catalog objects.
func (c *Catalog) Len() int {
	return len(c.objects)
}

var builtinObjects = []CelestialObject{
	{Name: "Moon", Designation: "Luna", Type: TypeMoon, Description: "Earth's moon"},
	{Name: "Andromeda Galaxy", Designation: "M31", RA: 10.685, Dec: 41.269, Magnitude: 3.4, Type: TypeGalaxy, Constellation: "Andromeda", Description: "Nearest large spiral galaxy", Aliases: []string{"NGC 224", "Andromeda"}},
	{Name: "Triangulum Galaxy", Designation: "M33", RA: 23.462, Dec: 30.660, Magnitude: 5.7, Type: TypeGalaxy, Constellation: "Triangulum", Aliases: []string{"NGC 598"}},
	{Name: "Whirlpool Galaxy", Designation: "M51", RA: 202.470, Dec: 47.195, Magnitude: 8.4, Type: TypeGalaxy, Constellation: "Canes Venatici", Aliases: []string{"NGC 5194"}},
	{Name: "Pinwheel Galaxy", Designation: "M101", RA: 210.802, Dec: 54.349, Magnitude: 7.9, Type: TypeGalaxy, Constellation: "Ursa Major", Aliases: []string{"NGC 5457"}},
	{Name: "Bode's Galaxy", Designation: "M81", RA: 148.888, Dec: 69.065, Magnitude: 6.9, Type: TypeGalaxy, Constellation: "Ursa Major", Aliases: []string{"NGC 3031"}},
	{Name: "Orion Nebula", Designation: "M42", RA: 83.822, Dec: -5.391, Magnitude: 4.0, Type: TypeNebula, Constellation: "Orion", Description: "Bright star-forming region", Aliases: []string{"NGC 1976"}},
	{Name: "Lagoon Nebula", Designation: "M8", RA: 270.904, Dec: -24.387, Magnitude: 6.0, Type: TypeNebula, Constellation: "Sagittarius", Aliases: []string{"NGC 6523"}},
	{Name: "Eagle Nebula", Designation: "M16", RA: 274.700, Dec: -13.807, Magnitude: 6.4, Type: TypeNebula, Constellation: "Serpens", Aliases: []string{"NGC 6611"}},
	{Name: "North America Nebula", Designation: "NGC 7000", RA: 314.697, Dec: 44.530, Magnitude: 4.0, Type: TypeNebula, Constellation: "Cygnus"},
	{Name: "Ring Nebula", Designation: "M57", RA: 283.396, Dec: 33.029, Magnitude: 8.8, Type: TypePlanetaryNebula, Constellation: "Lyra", Aliases: []string{"NGC 6720"}},
	{Name: "Dumbbell Nebula", Designation: "M27", RA: 299.902, Dec: 22.721, Magnitude: 7.5, Type: TypePlanetaryNebula, Constellation: "Vulpecula", Aliases: []string{"NGC 6853"}},
	{Name: "Crab Nebula", Designation: "M1", RA: 83.633, Dec: 22.015, Magnitude: 8.4, Type: TypeSupernovaRemnant, Constellation: "Taurus", Aliases: []string{"NGC 1952"}},
	{Name: "Veil Nebula", Designation: "NGC 6960", RA: 311.610, Dec: 30.722, Magnitude: 7.0, Type: TypeSupernovaRemnant, Constellation: "Cygnus", Aliases: []string{"Witch's Broom"}},
	{Name: "Pleiades", Designation: "M45", RA: 56.871, Dec: 24.105, Magnitude: 1.6, Type: TypeOpenCluster, Constellation: "Taurus", Description: "Seven Sisters open cluster", Aliases: []string{"Seven Sisters"}},
	{Name: "Double Cluster", Designation: "NGC 869", RA: 34.741, Dec: 57.134, Magnitude: 3.7, Type: TypeOpenCluster, Constellation: "Perseus", Aliases: []string{"NGC 884", "Caldwell 14"}},
	{Name: "Beehive Cluster", Designation: "M44", RA: 130.025, Dec: 19.672, Magnitude: 3.1, Type: TypeOpenCluster, Constellation: "Cancer", Aliases: []string{"Praesepe", "NGC 2632"}},
	{Name: "Hercules Cluster", Designation: "M13", RA: 250.422, Dec: 36.460, Magnitude: 5.8, Type: TypeGlobularCluster, Constellation: "Hercules", Aliases: []string{"NGC 6205"}},
	{Name: "M22", Designation: "M22", RA: 279.100, Dec: -23.905, Magnitude: 5.1, Type: TypeGlobularCluster, Constellation: "Sagittarius", Aliases: []string{"NGC 6656"}},
	{Name: "Vega", Designation: "Alpha Lyrae", RA: 279.235, Dec: 38.784, Magnitude: 0.0, Type: TypeStar, Constellation: "Lyra"},
	{Name: "Sirius", Designation: "Alpha Canis Majoris", RA: 101.287, Dec: -16.716, Magnitude: -1.5, Type: TypeStar, Constellation: "Canis Major", Aliases: []string{"Dog Star"}},
	{Name: "Polaris", Designation: "Alpha Ursae Minoris", RA: 37.955, Dec: 89.264, Magnitude: 2.0, Type: TypeStar, Constellation: "Ursa Minor", Aliases: []string{"North Star"}},
	{Name: "Albireo", Designation: "Beta Cygni", RA: 292.680, Dec: 27.960, Magnitude: 3.1, Type: TypeDoubleStar, Constellation: "Cygnus"},
}
