package geotess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCatalogCachesByID(t *testing.T) {
	cat := NewGridCatalog(4)
	calls := 0
	loader := func() (*Grid, error) {
		calls++
		return tetrahedronGridStandalone(), nil
	}

	bounds := Bounds{MinLat: -10, MaxLat: 10, MinLon: -10, MaxLon: 10}
	g1, err := cat.Get("grid-a", bounds, loader)
	require.NoError(t, err)
	g2, err := cat.Get("grid-a", bounds, loader)
	require.NoError(t, err)

	assert.Same(t, g1, g2)
	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 3, g1.RefCount())
}

func TestGridCatalogGridsCovering(t *testing.T) {
	cat := NewGridCatalog(4)
	_, err := cat.Get("grid-a", Bounds{MinLat: -10, MaxLat: 10, MinLon: -10, MaxLon: 10}, func() (*Grid, error) {
		return tetrahedronGridStandalone(), nil
	})
	require.NoError(t, err)

	ids := cat.GridsCovering(0, 0)
	assert.Contains(t, ids, "grid-a")

	ids = cat.GridsCovering(80, 80)
	assert.NotContains(t, ids, "grid-a")
}

func tetrahedronGridStandalone() *Grid {
	vertices := [][3]float64{
		normalizeVec([3]float64{1, 1, 1}),
		normalizeVec([3]float64{1, -1, -1}),
		normalizeVec([3]float64{-1, 1, -1}),
		normalizeVec([3]float64{-1, -1, 1}),
	}
	triangles := [][3]int32{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	}
	tess := []TessellationInfo{{Levels: []Level{{First: 0, Last: 3}}}}
	return NewGrid(DefaultShape(), vertices, triangles, tess)
}
