// Package gdgg implements a simplified octahedral quaternary triangle mesh
// (OQTM), a global discrete geodetic grid. A point on the sphere is addressed
// by one of eight octahedron faces (the octant) followed by a path of
// quaternary subdivisions of that face's triangle.
package gdgg

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPrecision is the hash precision in bits used when callers have no
// preference.
const DefaultPrecision = 25

// MaxPrecision is the largest precision a numeric hash can carry in a uint64.
const MaxPrecision = 63

// ErrInvalidReadableHash is returned when a readable hash is empty or holds
// digits outside the octant (0-7) or level (0-3) alphabets.
var ErrInvalidReadableHash = errors.New("invalid readable hash")

// Level selects one of the four child triangles of a subdivision step.
type Level uint8

const (
	LevelCenter Level = 0 // inverted centre triangle
	LevelTop    Level = 1
	LevelLeft   Level = 2
	LevelRight  Level = 3
)

// HashPrecisions lists the precisions that map onto whole levels: 3, 5, ..., 59.
func HashPrecisions() []int {
	out := make([]int, 0, 29)
	for p := 3; p < 60; p += 2 {
		out = append(out, p)
	}
	return out
}

// LevelCount returns how many subdivision steps a precision requires.
// Precisions below 4 address the octant alone.
func LevelCount(precision int) int {
	n := 0
	for p := 3; p < precision; p += 2 {
		n++
	}
	return n
}

// Path is the canonical address of a grid cell.
type Path struct {
	Octant int
	Levels []Level
}

// Precision is the number of address bits carried by the path.
func (p Path) Precision() int {
	return 3 + 2*len(p.Levels)
}

// ReadableHash renders the octant digit followed by one digit per level.
func (p Path) ReadableHash() string {
	var b strings.Builder
	b.Grow(1 + len(p.Levels))
	b.WriteByte(byte('0' + p.Octant))
	for _, l := range p.Levels {
		b.WriteByte(byte('0' + l))
	}
	return b.String()
}

// NumericHash packs the octant into the low 3 bits and each level into the
// following base-4 digits, least significant level first. Levels beyond
// MaxPrecision do not fit and are ignored.
func (p Path) NumericHash() uint64 {
	acc := uint64(p.Octant)
	mult := uint64(8)
	for i, l := range p.Levels {
		if 3+2*i >= MaxPrecision {
			break
		}
		acc += mult * uint64(l)
		mult *= 4
	}
	return acc
}

// Clone returns a copy that does not share the level slice.
func (p Path) Clone() Path {
	levels := make([]Level, len(p.Levels))
	copy(levels, p.Levels)
	return Path{Octant: p.Octant, Levels: levels}
}

// PathFromNumericHash unpacks a numeric hash. The precision must be the one
// used for encoding because leading zero levels are not recoverable from the
// integer alone.
func PathFromNumericHash(hash uint64, precision int) Path {
	if precision > MaxPrecision {
		precision = MaxPrecision
	}
	octant := int(hash % 8)
	hash /= 8
	levels := make([]Level, 0, LevelCount(precision))
	for i := 3; i < precision; i += 2 {
		levels = append(levels, Level(hash%4))
		hash /= 4
	}
	return Path{Octant: octant, Levels: levels}
}

// ParseReadableHash parses "<octant-digit><level-digit>*".
func ParseReadableHash(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("%w: empty", ErrInvalidReadableHash)
	}
	if s[0] < '0' || s[0] > '7' {
		return Path{}, fmt.Errorf("%w: octant %q out of range", ErrInvalidReadableHash, s[0])
	}
	levels := make([]Level, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '3' {
			return Path{}, fmt.Errorf("%w: level %q at position %d", ErrInvalidReadableHash, c, i)
		}
		levels = append(levels, Level(c-'0'))
	}
	return Path{Octant: int(s[0] - '0'), Levels: levels}, nil
}
