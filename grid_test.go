package geotess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeVec(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// tetrahedronGrid returns a single-tessellation, single-level grid shaped
// like a regular tetrahedron projected onto the unit sphere: a minimal
// closed triangulated manifold, enough to exercise neighbour-table
// reciprocity and the triangle walk without needing a full icosahedral
// subdivision.
func tetrahedronGrid(t *testing.T) *Grid {
	t.Helper()
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

func TestGridNeighborReciprocity(t *testing.T) {
	g := tetrahedronGrid(t)
	for ti := int32(0); ti < int32(g.NumTriangles()); ti++ {
		nb := g.Neighbors(ti)
		for _, n := range nb {
			if n < 0 {
				continue
			}
			back := g.Neighbors(n)
			assert.Contains(t, []int32{back[0], back[1], back[2]}, ti,
				"triangle %d's neighbor %d should list %d back", ti, n, ti)
		}
	}
}

func TestGridEveryEdgeHasNeighbor(t *testing.T) {
	g := tetrahedronGrid(t)
	for ti := int32(0); ti < int32(g.NumTriangles()); ti++ {
		for side, n := range g.Neighbors(ti) {
			assert.GreaterOrEqualf(t, n, int32(0), "closed manifold triangle %d side %d should have a neighbor", ti, side)
		}
	}
}

func TestGridFindTriangleLocatesOwnVertices(t *testing.T) {
	g := tetrahedronGrid(t)
	tess := g.Tessellation(0)
	for vi := int32(0); vi < int32(g.NumVertices()); vi++ {
		v := g.Vertex(vi)
		tri, err := g.FindTriangle(tess, 0, 0, v)
		require.NoError(t, err)
		found := g.Triangle(tri)
		assert.Contains(t, []int32{found[0], found[1], found[2]}, vi)
	}
}

func TestGridFindTriangleRestartInvariance(t *testing.T) {
	g := tetrahedronGrid(t)
	tess := g.Tessellation(0)
	target := normalizeVec([3]float64{0.2, 0.3, 0.4})

	var results []int32
	for start := int32(0); start < int32(g.NumTriangles()); start++ {
		tri, err := g.FindTriangle(tess, 0, start, target)
		require.NoError(t, err)
		results = append(results, tri)
	}
	for _, r := range results {
		assert.Equal(t, results[0], r, "walk should find the same triangle regardless of start")
	}
}

func TestGridIDStableUnderSameContent(t *testing.T) {
	a := tetrahedronGrid(t)
	b := tetrahedronGrid(t)
	assert.Equal(t, a.GridID(), b.GridID())
}

func TestGridRefCounting(t *testing.T) {
	g := tetrahedronGrid(t)
	require.EqualValues(t, 1, g.RefCount())
	g.retain()
	require.EqualValues(t, 2, g.RefCount())
	g.Release()
	require.EqualValues(t, 1, g.RefCount())
	g.Release()
	require.EqualValues(t, 0, g.RefCount())
}
