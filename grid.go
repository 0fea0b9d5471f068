package geotess

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync/atomic"

	"github.com/geotess/geotess/internal/tessellation"
)

// Level is a contiguous range of triangle indices forming one uniform
// subdivision of the sphere.
type Level struct {
	First, Last int32
}

// TessellationInfo is a family of Levels, each refining the previous by
// uniform 4-to-1 subdivision; the coarsest level covers the whole sphere.
type TessellationInfo struct {
	Levels []Level
}

// Grid owns the vertex/triangle arrays, the neighbour and descendant tables,
// and the tessellation/level structure.
//
// Many Models can share one Grid. Grid is therefore reference-counted: the
// zero-value Grid is never shared directly, callers obtain handles from a
// GridCatalog (see catalog.go) which increments the count on Get and expects
// Release to be called when a Model holding a Grid is dropped.
type Grid struct {
	shape Shape

	vertices  [][3]float64
	triangles [][3]int32
	neighbors [][3]int32
	descendants []int32

	tessellations []TessellationInfo

	gridID      string
	description string

	refs int32
}

// NewGrid constructs a Grid from an explicit vertex/triangle list plus the
// tessellation/level structure, computing neighbour and descendant tables.
// Triangle indices must be in range and each tessellation's levels must
// partition a contiguous, ascending range of triangle indices. NewGrid does
// not check this; ReadGrid (io_binary.go) checks that triangle vertex
// indices and level bounds are in range, since that is the boundary where
// the data actually enters the system.
func NewGrid(shape Shape, vertices [][3]float64, triangles [][3]int32, tessellations []TessellationInfo) *Grid {
	g := &Grid{
		shape:         shape,
		vertices:      vertices,
		triangles:     triangles,
		tessellations: tessellations,
		refs:          1,
	}
	g.buildTables()
	g.gridID = computeGridID(vertices, triangles)
	return g
}

// newGridWithID constructs a Grid the same way NewGrid does but installs a
// caller-declared gridID instead of recomputing one from content. A loader
// reading a file written by a foreign writer uses this to preserve that
// writer's notion of identity rather than silently replacing it with a
// locally computed fingerprint that happens to use the same hash.
func newGridWithID(shape Shape, vertices [][3]float64, triangles [][3]int32, tessellations []TessellationInfo, gridID string) *Grid {
	g := &Grid{
		shape:         shape,
		vertices:      vertices,
		triangles:     triangles,
		tessellations: tessellations,
		gridID:        gridID,
		refs:          1,
	}
	g.buildTables()
	return g
}

// buildTables computes the neighbour table per level and the descendant
// table between consecutive levels of the same tessellation: share-edge
// matching within a level, midpoint/centroid matching across levels.
func (g *Grid) buildTables() {
	g.neighbors = make([][3]int32, len(g.triangles))
	g.descendants = make([]int32, len(g.triangles))
	for i := range g.descendants {
		g.descendants[i] = -1
	}

	for _, tess := range g.tessellations {
		for li, lvl := range tess.Levels {
			levelNeighbors := tessellation.ComputeNeighbors(g.triangles, lvl.First, lvl.Last)
			for t := lvl.First; t <= lvl.Last; t++ {
				g.neighbors[t] = levelNeighbors[t]
			}

			if li+1 < len(tess.Levels) {
				child := tess.Levels[li+1]
				desc, err := tessellation.ComputeDescendants(g.vertices, g.triangles, lvl.First, lvl.Last, child.First, child.Last)
				if err == nil {
					for t := lvl.First; t <= lvl.Last; t++ {
						g.descendants[t] = desc[t-lvl.First]
					}
				}
			}
		}
	}
}

// computeGridID is a content fingerprint: a SHA-256 digest of the canonical
// little-endian vertex/triangle encoding,
// hex-encoded and truncated to 32 characters.
func computeGridID(vertices [][3]float64, triangles [][3]int32) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range vertices {
		for _, c := range v {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(c))
			h.Write(buf)
		}
	}
	ibuf := make([]byte, 4)
	for _, t := range triangles {
		for _, idx := range t {
			binary.LittleEndian.PutUint32(ibuf, uint32(idx))
			h.Write(ibuf)
		}
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:32]
}

// NumVertices returns the number of vertices in the grid.
func (g *Grid) NumVertices() int { return len(g.vertices) }

// NumTriangles returns the number of triangles in the grid.
func (g *Grid) NumTriangles() int { return len(g.triangles) }

// Vertex returns the unit vector of vertex i.
func (g *Grid) Vertex(i int32) [3]float64 { return g.vertices[i] }

// Triangle returns the ordered vertex-index triple of triangle t.
func (g *Grid) Triangle(t int32) [3]int32 { return g.triangles[t] }

// Neighbors returns the neighbour-triangle-index triple of triangle t
// (-1 for a boundary edge).
func (g *Grid) Neighbors(t int32) [3]int32 { return g.neighbors[t] }

// Descendant returns the index of one child triangle of t on the next finer
// level of its tessellation, or -1 on the finest level.
func (g *Grid) Descendant(t int32) int32 { return g.descendants[t] }

// Tessellation returns the i'th tessellation's level structure.
func (g *Grid) Tessellation(i int) TessellationInfo { return g.tessellations[i] }

// NumTessellations returns the number of tessellations in the grid.
func (g *Grid) NumTessellations() int { return len(g.tessellations) }

// GridID returns the content fingerprint identifying this grid.
func (g *Grid) GridID() string { return g.gridID }

// Shape returns the GeodeticShape this grid's vertices were constructed
// against.
func (g *Grid) Shape() Shape { return g.shape }

// FindTriangle locates the triangle on the given level containing v,
// starting the walk from startTri.
func (g *Grid) FindTriangle(level TessellationInfo, levelIdx int, startTri int32, v [3]float64) (int32, error) {
	lvl := level.Levels[levelIdx]
	t, err := tessellation.FindTriangle(g.vertices, g.triangles, g.neighbors, lvl.First, lvl.Last, startTri, v)
	if err != nil {
		return -1, &ErrStateError{Reason: err.Error()}
	}
	return t, nil
}

// retain increments the reference count; used by GridCatalog when handing
// out a shared Grid.
func (g *Grid) retain() { atomic.AddInt32(&g.refs, 1) }

// Release decrements the reference count. When it reaches zero the Grid's
// backing arrays are dropped (left for the garbage collector once no Model
// retains a reference).
func (g *Grid) Release() {
	if atomic.AddInt32(&g.refs, -1) <= 0 {
		g.vertices = nil
		g.triangles = nil
		g.neighbors = nil
		g.descendants = nil
	}
}

// RefCount reports the current reference count, chiefly for tests.
func (g *Grid) RefCount() int32 { return atomic.LoadInt32(&g.refs) }
