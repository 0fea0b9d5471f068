package geotess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonContainsInteriorAndExcludesExterior(t *testing.T) {
	shape := DefaultShape()
	// A small square-ish polygon around (0,0) in lat/lon degrees.
	vertices := [][3]float64{
		shape.VectorOfDegrees(-5, -5),
		shape.VectorOfDegrees(-5, 5),
		shape.VectorOfDegrees(5, 5),
		shape.VectorOfDegrees(5, -5),
	}
	reference := shape.VectorOfDegrees(0, 0)
	poly, err := NewPolygon(shape, vertices, reference)
	require.NoError(t, err)

	inside := shape.VectorOfDegrees(1, 1)
	outside := shape.VectorOfDegrees(30, 30)

	assert.True(t, poly.Contains(shape, inside))
	assert.False(t, poly.Contains(shape, outside))
}

func TestPolygonRequiresAtLeastThreeVertices(t *testing.T) {
	shape := DefaultShape()
	_, err := NewPolygon(shape, [][3]float64{shape.VectorOfDegrees(0, 0), shape.VectorOfDegrees(1, 1)}, shape.VectorOfDegrees(0, 0))
	require.Error(t, err)
}
