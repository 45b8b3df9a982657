package gdgg_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
)

func randomPath(r *rand.Rand, maxLevels int) gdgg.Path {
	n := r.Intn(maxLevels + 1)
	levels := make([]gdgg.Level, n)
	for i := range levels {
		levels[i] = gdgg.Level(r.Intn(4))
	}
	return gdgg.Path{Octant: r.Intn(8), Levels: levels}
}

func randomCoord(r *rand.Rand) (float64, float64) {
	return r.Float64()*180 - 90, r.Float64()*360 - 180
}

func TestNew_Incomplete(t *testing.T) {
	_, err := gdgg.New(gdgg.Input{})
	require.ErrorIs(t, err, gdgg.ErrIncompleteLocation)

	lat := 10.0
	octant := 3
	x := 0.1
	_, err = gdgg.New(gdgg.Input{Latitude: &lat, Octant: &octant, X: &x})
	require.True(t, errors.Is(err, gdgg.ErrIncompleteLocation))
}

func TestNew_Forms(t *testing.T) {
	lat, lon := 12.5, -40.0
	loc, err := gdgg.New(gdgg.Input{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	require.Equal(t, gdgg.GeographicOnly, loc.Form())
	require.Equal(t, gdgg.BothResolved, loc.Resolve().Form())
	require.Equal(t, 1, loc.Octant())

	octant := 5
	x, y := 0.2, 0.3
	loc, err = gdgg.New(gdgg.Input{Octant: &octant, X: &x, Y: &y})
	require.NoError(t, err)
	require.Equal(t, gdgg.PathOnly, loc.Form())
	resolved := loc.Resolve()
	require.Equal(t, loc.Latitude(), resolved.Latitude())
	require.Less(t, resolved.Latitude(), 0.0)
}

func TestContainment(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	check := func(lat, lon float64, precision int) {
		x, y := gdgg.PreciseLocation(lat, lon, precision).XY()
		require.GreaterOrEqual(t, x, 0.0, "lat=%v lon=%v", lat, lon)
		require.GreaterOrEqual(t, y, 0.0, "lat=%v lon=%v", lat, lon)
		require.LessOrEqual(t, x, 1.0, "lat=%v lon=%v", lat, lon)
		require.LessOrEqual(t, y, 1.0, "lat=%v lon=%v", lat, lon)
		require.LessOrEqual(t, x+y, 1.0+1e-12, "lat=%v lon=%v", lat, lon)
	}
	for _, p := range []int{3, 4, 25} {
		for _, c := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}, {90, 0}, {-90, 90}, {45, -90}} {
			check(c[0], c[1], p)
		}
	}
	for i := 0; i < 2000; i++ {
		lat, lon := randomCoord(r)
		check(lat, lon, gdgg.HashPrecisions()[r.Intn(len(gdgg.HashPrecisions()))])
	}
}

func TestComputeLevel_AppendsLevel(t *testing.T) {
	b := gdgg.NewBuilder(33.3, 120)
	require.Equal(t, 0, b.Depth())
	b.Step()
	require.Equal(t, 1, b.Depth())
	snap := b.Location()
	b.Step()
	require.Len(t, snap.Levels(), 1)
	require.Len(t, b.Location().Levels(), 2)
}

func TestStep_TieBreaks(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     string
	}{
		// y == 0.5 is not > 0.5 and x == 0.25 is left of the right corner: centre
		{45, 45, "20"},
		{80, -170, "01"},
		// y == 0, x == 0.5: right corner wins over centre
		{0, 45, "63"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, gdgg.LatLonToReadableHash(tc.lat, tc.lon, 5), "lat=%v lon=%v", tc.lat, tc.lon)
	}
}

func TestOctantBoundaries(t *testing.T) {
	// latitude 0 is not > 0 and longitude 0 is not < 0
	require.Equal(t, "6", gdgg.LatLonToReadableHash(0, 0, 3))
	require.Equal(t, "2", gdgg.LatLonToReadableHash(1e-9, 0, 3))
	require.Equal(t, "1", gdgg.LatLonToReadableHash(1, -1e-9, 3))
	require.Equal(t, "0", gdgg.LatLonToReadableHash(1, -180, 3))
	require.Equal(t, "1", gdgg.LatLonToReadableHash(1, -90, 3))
	require.Equal(t, "3", gdgg.LatLonToReadableHash(1, 90, 3))
	require.Equal(t, "7", gdgg.LatLonToReadableHash(-1, 180, 3))
	require.Equal(t, "4", gdgg.LatLonToReadableHash(-90, -179, 3))
}

func TestNumericHash_Examples(t *testing.T) {
	require.Equal(t, uint64(2), gdgg.LatLonToNumericHash(45, 45, 5))
	require.Equal(t, uint64(8), gdgg.LatLonToNumericHash(80, -170, 5))

	p := gdgg.Path{Octant: 2, Levels: []gdgg.Level{0, 1, 3}}
	require.Equal(t, "2013", p.ReadableHash())
	require.Equal(t, uint64(2+8*(0+1*4+3*16)), p.NumericHash())
	require.Equal(t, 9, p.Precision())
}

func TestRoundTrip_Numeric(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		p := randomPath(r, 30)
		got := gdgg.PathFromNumericHash(p.NumericHash(), p.Precision())
		require.Equal(t, p.Octant, got.Octant)
		require.Equal(t, p.Levels, got.Levels)
	}
}

func TestRoundTrip_Readable(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		p := randomPath(r, 40)
		got, err := gdgg.ParseReadableHash(p.ReadableHash())
		require.NoError(t, err)
		require.Equal(t, p.Octant, got.Octant)
		require.Equal(t, p.Levels, got.Levels)
	}
}

func TestParseReadableHash_Invalid(t *testing.T) {
	for _, s := range []string{"", "8", "9012", "24", "2a", "-1"} {
		_, err := gdgg.ParseReadableHash(s)
		require.ErrorIs(t, err, gdgg.ErrInvalidReadableHash, "hash %q", s)
	}
}

func TestPathFromNumericHash_LeadingZeros(t *testing.T) {
	p := gdgg.PathFromNumericHash(5, 9)
	require.Equal(t, "5000", p.ReadableHash())
	require.Len(t, gdgg.PathFromNumericHash(5, 3).Levels, 0)
	require.Len(t, gdgg.PathFromNumericHash(5, 4).Levels, 1)
}

func TestRangeInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	inRange := func(lat, lon float64) {
		require.False(t, math.IsNaN(lat) || math.IsNaN(lon))
		require.True(t, lat >= -90 && lat <= 90, "lat=%v", lat)
		require.True(t, lon >= -180 && lon <= 180, "lon=%v", lon)
	}
	for i := 0; i < 1000; i++ {
		p := randomPath(r, 10)
		inRange(gdgg.LevelsToLocation(p).LatLon())

		lat, lon, err := gdgg.ReadableHashToLatLon(p.ReadableHash())
		require.NoError(t, err)
		inRange(lat, lon)

		precisions := gdgg.HashPrecisions()
		inRange(gdgg.NumericHashToLatLon(uint64(r.Intn(1_000_000)), precisions[r.Intn(len(precisions))]))

		xy := r.Float64() / 2
		inRange(gdgg.FromGridPath(p.Octant, p.Levels, xy, xy).LatLon())

		for _, c := range gdgg.LevelsToTriangle(p, true) {
			inRange(c.LatLon())
		}
	}
}

func TestForwardInverseConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 500; i++ {
		lat, lon := randomCoord(r)
		hash := gdgg.LatLonToReadableHash(lat, lon, gdgg.DefaultPrecision)
		clat, clon, err := gdgg.ReadableHashToLatLon(hash)
		require.NoError(t, err)
		require.Equal(t, hash, gdgg.LatLonToReadableHash(clat, clon, gdgg.DefaultPrecision))
	}
}

func TestLevelsToTriangle_Cardinality(t *testing.T) {
	nonPole := gdgg.Path{Octant: 2, Levels: []gdgg.Level{0, 2, 3}}
	require.Len(t, gdgg.LevelsToTriangle(nonPole, true), 3)
	require.Len(t, gdgg.LevelsToTriangle(nonPole, false), 3)

	pole := gdgg.Path{Octant: 0, Levels: []gdgg.Level{1, 1, 1, 1}}
	require.Len(t, gdgg.LevelsToTriangle(pole, false), 3)

	corners := gdgg.LevelsToTriangle(pole, true)
	require.Len(t, corners, 4)
	require.InDelta(t, 90, corners[1].Latitude(), 1e-6)
	require.Equal(t, corners[1].Latitude(), corners[2].Latitude())
	require.Equal(t, corners[0].Longitude(), corners[1].Longitude())
	require.Equal(t, corners[3].Longitude(), corners[2].Longitude())

	south := gdgg.Path{Octant: 6, Levels: []gdgg.Level{1, 1}}
	corners = gdgg.LevelsToTriangle(south, true)
	require.Len(t, corners, 4)
	require.InDelta(t, -90, corners[1].Latitude(), 1e-6)
}

func TestArea_OctantOnlyIsPoleQuad(t *testing.T) {
	area := gdgg.NumericHashToArea(3, 3)
	require.Len(t, area, 4)

	area, err := gdgg.ReadableHashToArea("20")
	require.NoError(t, err)
	require.Len(t, area, 3)

	_, err = gdgg.ReadableHashToArea("x")
	require.Error(t, err)
}

func TestAreaFeature(t *testing.T) {
	f := gdgg.AreaFeature(gdgg.Path{Octant: 2, Levels: []gdgg.Level{0}})
	require.Equal(t, "20", f.ID)
	require.Equal(t, "Polygon", f.Geometry.GeoJSONType())
	require.Equal(t, uint64(2), f.Properties["numeric_hash"])

	pt := gdgg.PointFeature(gdgg.PreciseLocation(10, 20, 7))
	require.Equal(t, "Point", pt.Geometry.GeoJSONType())
}

func TestHashPrecisions(t *testing.T) {
	ps := gdgg.HashPrecisions()
	require.Equal(t, 3, ps[0])
	require.Equal(t, 59, ps[len(ps)-1])
	require.Equal(t, 11, gdgg.LevelCount(25))
	require.Equal(t, 1, gdgg.LevelCount(4))
	require.Equal(t, 0, gdgg.LevelCount(1))
}

func TestLocation_String(t *testing.T) {
	loc := gdgg.LevelsToLocation(gdgg.Path{Octant: 2, Levels: []gdgg.Level{0, 1, 3}})
	require.Equal(t, "Location[2013]", loc.String())
}
