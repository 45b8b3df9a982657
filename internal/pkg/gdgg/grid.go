package gdgg

import (
	"math"
)

// Seed remainder used when back-projecting a bare path. It sits inside the
// unit triangle and away from its edges.
const seedXY = 0.3

const (
	almostZero = 1e-12
	almostOne  = 1 - 1e-12
)

// Builder is the mutable stage of forward hashing: it owns the remainder and
// the growing level path until Location freezes a snapshot.
type Builder struct {
	latitude  float64
	longitude float64
	octant    int
	levels    []Level
	x, y      float64
}

// NewBuilder projects a coordinate onto its octant triangle.
func NewBuilder(latitude, longitude float64) *Builder {
	octant, x, y := project(latitude, longitude)
	return &Builder{latitude: latitude, longitude: longitude, octant: octant, x: x, y: y}
}

// Step computes the next subdivision level and rewrites the remainder into the
// chosen child's local coordinates. Boundary ties favour top, then left, then
// right, in that order.
func (b *Builder) Step() Level {
	var l Level
	switch {
	case b.y > 0.5:
		l = LevelTop
		b.x *= 2
		b.y = (b.y - 0.5) * 2
	case b.y < 0.5-b.x:
		l = LevelLeft
		b.x *= 2
		b.y *= 2
	case b.x >= 0.5:
		l = LevelRight
		b.x = (b.x - 0.5) * 2
		b.y *= 2
	default:
		l = LevelCenter
		b.x = 1 - b.x*2
		b.y = 1 - b.y*2
	}
	b.levels = append(b.levels, l)
	return l
}

// Depth is the number of levels computed so far.
func (b *Builder) Depth() int { return len(b.levels) }

// Location snapshots the builder. The snapshot keeps the original coordinate
// and does not change when the builder keeps stepping.
func (b *Builder) Location() Location {
	return Location{
		form:      BothResolved,
		latitude:  b.latitude,
		longitude: b.longitude,
		octant:    b.octant,
		levels:    cloneLevels(b.levels),
		x:         b.x,
		y:         b.y,
	}
}

// PreciseLocation returns a resolved location subdivided to the given
// precision in bits.
func PreciseLocation(latitude, longitude float64, precision int) Location {
	b := NewBuilder(latitude, longitude)
	for i := LevelCount(precision); i > 0; i-- {
		b.Step()
	}
	return b.Location()
}

// LevelsToLocation returns a path-only location seeded at the default
// remainder.
func LevelsToLocation(path Path) Location {
	return FromGridPath(path.Octant, path.Levels, seedXY, seedXY)
}

// LevelsToTriangle returns the corners of the leaf triangle of a path. With
// normalisePoles a corner that lands on a pole is replaced by two corners at
// the pole latitude, yielding four locations instead of three.
func LevelsToTriangle(path Path, normalisePoles bool) []Location {
	c1 := FromGridPath(path.Octant, path.Levels, almostZero, almostZero).Resolve()
	c2 := FromGridPath(path.Octant, path.Levels, almostZero, almostOne).Resolve()
	c3 := FromGridPath(path.Octant, path.Levels, almostOne, almostZero).Resolve()

	if normalisePoles && isClose(math.Abs(c2.latitude), 90) {
		c2a, c2b := c2, c2
		c2a.longitude = c1.longitude
		c2b.longitude = c3.longitude
		return []Location{c1, c2a, c2b, c3}
	}
	return []Location{c1, c2, c3}
}

// LatLonToReadableHash hashes a coordinate to its readable form.
func LatLonToReadableHash(latitude, longitude float64, precision int) string {
	return PreciseLocation(latitude, longitude, precision).ReadableHash()
}

// LatLonToNumericHash hashes a coordinate to its numeric form.
func LatLonToNumericHash(latitude, longitude float64, precision int) uint64 {
	return PreciseLocation(latitude, longitude, precision).NumericHash()
}

// NumericHashToLatLon returns the representative coordinate of a numeric hash.
func NumericHashToLatLon(hash uint64, precision int) (latitude, longitude float64) {
	return LevelsToLocation(PathFromNumericHash(hash, precision)).LatLon()
}

// ReadableHashToLatLon returns the representative coordinate of a readable hash.
func ReadableHashToLatLon(hash string) (latitude, longitude float64, err error) {
	path, err := ParseReadableHash(hash)
	if err != nil {
		return 0, 0, err
	}
	latitude, longitude = LevelsToLocation(path).LatLon()
	return latitude, longitude, nil
}

// NumericHashToArea returns the 3 or 4 corners bounding a numeric hash.
func NumericHashToArea(hash uint64, precision int) []Location {
	return LevelsToTriangle(PathFromNumericHash(hash, precision), true)
}

// ReadableHashToArea returns the 3 or 4 corners bounding a readable hash.
func ReadableHashToArea(hash string) ([]Location, error) {
	path, err := ParseReadableHash(hash)
	if err != nil {
		return nil, err
	}
	return LevelsToTriangle(path, true), nil
}

// isClose mirrors a relative tolerance of 1e-9.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
