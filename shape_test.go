package geotess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeVectorRoundTrip(t *testing.T) {
	shape := DefaultShape()
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"equator-prime-meridian", 0, 0},
		{"mid-latitude", 37.5, -122.0},
		{"southern", -33.9, 151.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := shape.VectorOfDegrees(tt.lat, tt.lon)
			assert.InDelta(t, 1.0, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), 1e-9)
			assert.InDelta(t, tt.lat, shape.LatDegrees(v), 1e-6)
			assert.InDelta(t, tt.lon, shape.LonDegrees(v), 1e-6)
		})
	}
}

func TestShapePoleLongitude(t *testing.T) {
	shape := DefaultShape()
	north := shape.VectorOfDegrees(90, 0)
	assert.Equal(t, 0.0, shape.Lon(north))
}

func TestShapeEarthRadiusPositivity(t *testing.T) {
	shape := NewShape(WGS84, false)
	for _, lat := range []float64{-90, -45, 0, 45, 90} {
		v := shape.VectorOfDegrees(lat, 0)
		r := shape.EarthRadius(v)
		require.Greater(t, r, 0.0)
		assert.Less(t, r, 6500.0)
	}
}

func TestShapeSphereCollapsesGeocentricAndGeographic(t *testing.T) {
	shape := NewShape(SPHERE, false)
	lat := 33.0 * math.Pi / 180
	assert.InDelta(t, lat, shape.GeocentricLat(lat), 1e-12)
}

func TestGeocentricLatTableMatchesFormula(t *testing.T) {
	shape := NewShape(WGS84, false)
	for deg := 0; deg <= 90; deg += 15 {
		want := shape.GeocentricLat(float64(deg) * math.Pi / 180)
		got := GeocentricLatTableEntry(deg)
		assert.InDelta(t, want, got, 1e-12)
	}
}
