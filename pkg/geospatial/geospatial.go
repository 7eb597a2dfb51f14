package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ParseBoundary decodes a GeoJSON site boundary. Both bare geometries
// and single-feature documents are accepted. A boundary encloses an
// area, so the geometry must be polygonal.
func ParseBoundary(doc []byte) (orb.Geometry, error) {
	geom, err := decodeGeometry(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geom, nil
	default:
		return nil, fmt.Errorf("boundary must be polygonal, got %s", geom.GeoJSONType())
	}
}

func decodeGeometry(doc []byte) (orb.Geometry, error) {
	if g, err := geojson.UnmarshalGeometry(doc); err == nil {
		return g.Geometry(), nil
	}

	feature, err := geojson.UnmarshalFeature(doc)
	if err != nil {
		return nil, err
	}
	if feature.Geometry == nil {
		return nil, errors.New("feature has no geometry")
	}
	return feature.Geometry, nil
}

// AreaSquareMeters computes the geodetic area of a lon/lat geometry.
// Winding order does not matter to callers, so the result is absolute.
func AreaSquareMeters(geom orb.Geometry) float64 {
	return math.Abs(geo.Area(geom))
}

// Centroid returns the area-weighted center of a geometry. Site
// boundaries are small enough that the planar centroid serves as the
// map pin.
func Centroid(geom orb.Geometry) orb.Point {
	center, _ := planar.CentroidArea(geom)
	return center
}

// ToHectares converts square meters to hectares.
func ToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}
