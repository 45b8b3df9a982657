package gdgg

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncompleteLocation is returned by New when neither a complete
// latitude/longitude pair nor a complete octant/x/y triple is supplied.
var ErrIncompleteLocation = errors.New("either latitude and longitude or octant, x and y are required")

// Form tells which representations of a Location are known.
type Form uint8

const (
	GeographicOnly Form = iota + 1
	PathOnly
	BothResolved
)

func (f Form) String() string {
	switch f {
	case GeographicOnly:
		return "geographic"
	case PathOnly:
		return "path"
	case BothResolved:
		return "resolved"
	default:
		return "invalid"
	}
}

// Location is a point on the sphere in geographic form, grid-path form or
// both. Values are immutable; Resolve returns a copy with both forms filled.
type Location struct {
	form Form

	latitude  float64
	longitude float64

	octant int
	levels []Level
	// remainder inside the deepest triangle of levels
	x, y float64
}

// Input carries the optional construction fields for New.
type Input struct {
	Latitude  *float64
	Longitude *float64
	Octant    *int
	X         *float64
	Y         *float64
	Levels    []Level
}

// New builds a Location from whichever forms are complete in the input.
func New(in Input) (Location, error) {
	geo := in.Latitude != nil && in.Longitude != nil
	grid := in.Octant != nil && in.X != nil && in.Y != nil

	switch {
	case geo && grid:
		return Location{
			form:      BothResolved,
			latitude:  *in.Latitude,
			longitude: *in.Longitude,
			octant:    *in.Octant,
			levels:    cloneLevels(in.Levels),
			x:         *in.X,
			y:         *in.Y,
		}, nil
	case geo:
		return FromLatLon(*in.Latitude, *in.Longitude), nil
	case grid:
		return FromGridPath(*in.Octant, in.Levels, *in.X, *in.Y), nil
	default:
		return Location{}, ErrIncompleteLocation
	}
}

// FromLatLon returns a geographic-only Location.
func FromLatLon(latitude, longitude float64) Location {
	return Location{form: GeographicOnly, latitude: latitude, longitude: longitude}
}

// FromGridPath returns a path-only Location. x and y are the remainder
// coordinates inside the triangle reached by levels.
func FromGridPath(octant int, levels []Level, x, y float64) Location {
	return Location{form: PathOnly, octant: octant, levels: cloneLevels(levels), x: x, y: y}
}

// Form reports which representations are known without derivation.
func (l Location) Form() Form { return l.form }

// Resolve returns the Location with both forms populated. A geographic-only
// location resolves to its octant with an empty level path.
func (l Location) Resolve() Location {
	switch l.form {
	case GeographicOnly:
		l.octant, l.x, l.y = project(l.latitude, l.longitude)
		l.levels = nil
	case PathOnly:
		l.latitude, l.longitude = backProject(l.octant, l.levels, l.x, l.y)
	}
	l.form = BothResolved
	return l
}

// Latitude in decimal degrees, derived from the path when needed.
func (l Location) Latitude() float64 {
	if l.form == PathOnly {
		lat, _ := backProject(l.octant, l.levels, l.x, l.y)
		return lat
	}
	return l.latitude
}

// Longitude in decimal degrees, derived from the path when needed.
func (l Location) Longitude() float64 {
	if l.form == PathOnly {
		_, lon := backProject(l.octant, l.levels, l.x, l.y)
		return lon
	}
	return l.longitude
}

// LatLon returns both geographic coordinates with a single derivation.
func (l Location) LatLon() (float64, float64) {
	if l.form == PathOnly {
		return backProject(l.octant, l.levels, l.x, l.y)
	}
	return l.latitude, l.longitude
}

// Octant of the location, in [0, 7].
func (l Location) Octant() int {
	if l.form == GeographicOnly {
		o, _, _ := project(l.latitude, l.longitude)
		return o
	}
	return l.octant
}

// XY returns the remainder coordinates inside the deepest computed triangle.
func (l Location) XY() (float64, float64) {
	if l.form == GeographicOnly {
		_, x, y := project(l.latitude, l.longitude)
		return x, y
	}
	return l.x, l.y
}

// Levels returns a copy of the subdivision path.
func (l Location) Levels() []Level {
	return cloneLevels(l.levels)
}

// Path returns the canonical grid address.
func (l Location) Path() Path {
	return Path{Octant: l.Octant(), Levels: l.Levels()}
}

// ReadableHash of the location at its current depth.
func (l Location) ReadableHash() string {
	return l.Path().ReadableHash()
}

// NumericHash of the location at its current depth.
func (l Location) NumericHash() uint64 {
	return l.Path().NumericHash()
}

func (l Location) String() string {
	return fmt.Sprintf("Location[%s]", l.ReadableHash())
}

// project selects the octant for a coordinate and maps the 90°x90° wedge onto
// the unit right triangle.
func project(latitude, longitude float64) (octant int, x, y float64) {
	switch {
	case longitude < -90:
		octant = 0
	case longitude < 0:
		octant = 1
	case longitude < 90:
		octant = 2
	default:
		octant = 3
	}
	if !(latitude > 0) {
		octant += 4
	}

	x = floorMod(longitude+180, 90) / 90
	y = math.Abs(latitude) / 90
	x *= 1 - y
	return octant, x, y
}

// backProject walks the levels in reverse from the remainder and undoes the
// octant projection.
func backProject(octant int, levels []Level, x, y float64) (latitude, longitude float64) {
	for i := len(levels) - 1; i >= 0; i-- {
		switch levels[i] {
		case LevelTop:
			x /= 2
			y = y/2 + 0.5
		case LevelLeft:
			x /= 2
			y /= 2
		case LevelRight:
			x = x/2 + 0.5
			y /= 2
		case LevelCenter:
			x = (1 - x) / 2
			y = (1 - y) / 2
		}
	}

	// at the pole the longitude is undefined; elsewhere keep rounding from
	// pushing the ratio past the wedge edges
	if y >= 1 {
		x = 0
	} else {
		x = math.Min(math.Max(x/(1-y), 0), 1)
	}
	x *= 90
	y *= 90

	switch octant % 4 {
	case 0:
		x -= 180
	case 1:
		x -= 90
	case 3:
		x += 90
	}
	if octant >= 4 {
		y = -y
	}
	return y, x
}

func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += b
	}
	return m
}

func cloneLevels(levels []Level) []Level {
	if levels == nil {
		return nil
	}
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}
