// Package tessellation holds the Grid's low-level geometry: neighbour-table
// construction, descendant-table construction, and the triangle walk. None
// of it is part of the public API; geotess.Grid wraps these functions over
// its own vertex/triangle arrays.
package tessellation

import "math"

// Level is a contiguous range of triangle indices forming one uniform
// subdivision of the sphere: [First, Last] inclusive.
type Level struct {
	First, Last int32
}

// edgeKey identifies a directed edge by its two endpoint vertex indices, in
// traversal order. Two triangles are neighbours across an edge when one
// lists the edge (a,b) and the other lists it (b,a) — the opposite-direction
// match required for a consistent CCW winding on the sphere.
type edgeKey struct {
	a, b int32
}

// ComputeNeighbors builds, for each triangle in [first,last], the index of
// the triangle sharing each of its three edges (or -1 for a boundary edge
// within this level): build a lookup keyed by the edge's directed endpoints,
// then for every triangle look up its reverse-oriented edge to find the
// neighbour across it. neighbors[t][i] is the neighbour across the edge
// opposite vertex i, the convention FindTriangle relies on.
func ComputeNeighbors(triangles [][3]int32, first, last int32) [][3]int32 {
	neighbors := make([][3]int32, len(triangles))
	for i := range neighbors {
		neighbors[i] = [3]int32{-1, -1, -1}
	}

	edgeOwner := make(map[edgeKey]int32, int(last-first+1)*3)
	for t := first; t <= last; t++ {
		tri := triangles[t]
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			edgeOwner[edgeKey{a, b}] = t
		}
	}

	for t := first; t <= last; t++ {
		tri := triangles[t]
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			if owner, ok := edgeOwner[edgeKey{b, a}]; ok {
				neighbors[t][(e+2)%3] = owner
			}
		}
	}

	return neighbors
}

// ComputeDescendants assigns to each triangle in [parentFirst, parentLast] the
// index of one child triangle in [childFirst, childLast] obtained by 4-to-1
// subdivision, identified as the child whose centroid (projected onto the
// sphere) falls inside the parent. -1 is assigned when no child level
// follows (the finest level of a tessellation).
func ComputeDescendants(vertices [][3]float64, triangles [][3]int32, parentFirst, parentLast, childFirst, childLast int32) ([]int32, error) {
	descendants := make([]int32, parentLast-parentFirst+1)
	for i := range descendants {
		descendants[i] = -1
	}
	if childFirst > childLast {
		return descendants, nil
	}

	for c := childFirst; c <= childLast; c++ {
		centroid := centroidOf(vertices, triangles[c])
		parent, err := walkLinear(vertices, triangles, parentFirst, parentLast, parentFirst, centroid)
		if err != nil {
			continue
		}
		idx := parent - parentFirst
		if descendants[idx] == -1 {
			descendants[idx] = c
		}
	}
	return descendants, nil
}

func centroidOf(vertices [][3]float64, tri [3]int32) [3]float64 {
	var c [3]float64
	for _, vi := range tri {
		v := vertices[vi]
		c[0] += v[0]
		c[1] += v[1]
		c[2] += v[2]
	}
	n := normalize(c)
	return n
}

func normalize(v [3]float64) [3]float64 {
	len2 := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if len2 == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(len2)
	return [3]float64{v[0] * inv, v[1] * inv, v[2] * inv}
}

// walkLinear is a plain O(level-size) fallback scan used only during grid
// construction (descendant bootstrapping), before a neighbour table exists
// to walk with. The hot-path FindTriangle (walk.go) uses the neighbour table.
func walkLinear(vertices [][3]float64, triangles [][3]int32, first, last, hint int32, v [3]float64) (int32, error) {
	for t := first; t <= last; t++ {
		if containsPoint(vertices, triangles[t], v) {
			return t, nil
		}
	}
	// Fall back to the triangle whose vertices are angularly closest, so
	// construction-time centroid matching never fails outright on
	// floating-point edge cases.
	best := first
	bestDot := -2.0
	for t := first; t <= last; t++ {
		c := centroidOf(vertices, triangles[t])
		dot := c[0]*v[0] + c[1]*v[1] + c[2]*v[2]
		if dot > bestDot {
			bestDot = dot
			best = t
		}
	}
	return best, nil
}

func containsPoint(vertices [][3]float64, tri [3]int32, v [3]float64) bool {
	for e := 0; e < 3; e++ {
		j, k := tri[(e+1)%3], tri[(e+2)%3]
		if scaledTripleProduct(vertices[j], vertices[k], v) < -1e-12 {
			return false
		}
	}
	return true
}

func scaledTripleProduct(a, b, v [3]float64) float64 {
	cx := a[1]*b[2] - a[2]*b[1]
	cy := a[2]*b[0] - a[0]*b[2]
	cz := a[0]*b[1] - a[1]*b[0]
	return v[0]*cx + v[1]*cy + v[2]*cz
}

