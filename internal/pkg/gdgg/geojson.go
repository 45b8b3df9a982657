package gdgg

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Point returns the location as an orb point (lon, lat).
func (l Location) Point() orb.Point {
	lat, lon := l.LatLon()
	return orb.Point{lon, lat}
}

// AreaPolygon closes the corners of a cell into a counter-clockwise ring.
func AreaPolygon(corners []Location) orb.Polygon {
	ring := make(orb.Ring, 0, len(corners)+1)
	for _, c := range corners {
		ring = append(ring, c.Point())
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return orb.Polygon{ring}
}

// PointFeature wraps a location as a GeoJSON Point feature.
func PointFeature(l Location) *geojson.Feature {
	f := geojson.NewFeature(l.Point())
	setHashProperties(f, l.Path())
	return f
}

// AreaFeature returns the cell bounded by path as a GeoJSON Polygon feature,
// with pole corners normalised.
func AreaFeature(path Path) *geojson.Feature {
	f := geojson.NewFeature(AreaPolygon(LevelsToTriangle(path, true)))
	setHashProperties(f, path)
	return f
}

func setHashProperties(f *geojson.Feature, path Path) {
	readable := path.ReadableHash()
	f.ID = readable
	f.Properties["readable_hash"] = readable
	f.Properties["precision"] = path.Precision()
	if path.Precision() <= MaxPrecision {
		f.Properties["numeric_hash"] = path.NumericHash()
	}
}
