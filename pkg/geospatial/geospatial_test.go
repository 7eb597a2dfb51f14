package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareGeometry = `{"type":"Polygon","coordinates":[[[0,0],[0.001,0],[0.001,0.001],[0,0.001],[0,0]]]}`

const squareFeature = `{"type":"Feature","properties":{},"geometry":` + squareGeometry + `}`

func TestParseBoundaryAcceptsGeometryAndFeature(t *testing.T) {
	for _, doc := range []string{squareGeometry, squareFeature} {
		geom, err := ParseBoundary([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "Polygon", geom.GeoJSONType())
	}
}

func TestParseBoundaryRejectsNonPolygonal(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Point","coordinates":[12.5,41.9]}`))
	assert.Error(t, err)
}

func TestParseBoundaryRejectsMalformedInput(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Feature","properties":{}}`))
	assert.Error(t, err)

	_, err = ParseBoundary([]byte(`not geojson`))
	assert.Error(t, err)
}

func TestAreaOfSmallSquareNearEquator(t *testing.T) {
	geom, err := ParseBoundary([]byte(squareGeometry))
	require.NoError(t, err)

	// 0.001 degrees is ~111.32m at the equator, so the square covers
	// roughly 12,390 square meters.
	area := AreaSquareMeters(geom)
	assert.InDelta(t, 111.32*111.32, area, 500)
	assert.InDelta(t, area/10000, ToHectares(area), 1e-9)
}

func TestAreaIgnoresWindingOrder(t *testing.T) {
	clockwise := `{"type":"Polygon","coordinates":[[[0,0],[0,0.001],[0.001,0.001],[0.001,0],[0,0]]]}`

	ccw, err := ParseBoundary([]byte(squareGeometry))
	require.NoError(t, err)
	cw, err := ParseBoundary([]byte(clockwise))
	require.NoError(t, err)

	assert.InDelta(t, AreaSquareMeters(ccw), AreaSquareMeters(cw), 1e-6)
}

func TestCentroidOfSquare(t *testing.T) {
	geom, err := ParseBoundary([]byte(squareGeometry))
	require.NoError(t, err)

	center := Centroid(geom)
	assert.InDelta(t, 0.0005, center.Lon(), 1e-9)
	assert.InDelta(t, 0.0005, center.Lat(), 1e-9)
}
