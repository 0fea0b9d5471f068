package tessellation

import (
	"errors"
	"math"
)

// ErrUnreachable is returned when the walk exhausts its step budget without
// locating a containing triangle. This should be impossible given valid
// grid invariants; callers treat it as a StateError, not a retryable
// condition.
var ErrUnreachable = errors.New("tessellation: triangle walk did not converge")

// FindTriangle walks the triangulation restricted to [first,last] starting
// from startTri, locating the triangle containing the unit vector v.
//
// At each triangle it computes the three scaled dot products
// s_i = v . (T_j x T_k) for the edge opposite vertex i (j,k the other two
// vertices in CCW order). All s_i >= 0 means v is inside or on the triangle.
// Otherwise the walk steps across the edge with the most negative s_i. Ties
// among negative-most edges are broken by preferring the neighbour with the
// lower global triangle index so that repeated queries are reproducible. A
// point on an edge or vertex (every s_i >= -1e-12) is reported in whichever
// containing triangle the walk reaches first; no tie-break among the
// triangles sharing that edge or vertex is applied.
func FindTriangle(vertices [][3]float64, triangles [][3]int32, neighbors [][3]int32, first, last, startTri int32, v [3]float64) (int32, error) {
	cur := startTri
	if cur < first || cur > last {
		cur = first
	}

	maxSteps := int(last-first+1)*2 + 8
	for step := 0; step < maxSteps; step++ {
		tri := triangles[cur]
		var s [3]float64
		for e := 0; e < 3; e++ {
			j, k := tri[(e+1)%3], tri[(e+2)%3]
			s[e] = scaledTripleProduct(vertices[j], vertices[k], v)
		}

		worst := -1
		worstVal := 0.0
		for e := 0; e < 3; e++ {
			if s[e] < -1e-12 {
				if worst == -1 || s[e] < worstVal-1e-15 {
					worst = e
					worstVal = s[e]
				} else if math.Abs(s[e]-worstVal) <= 1e-15 {
					// Deterministic tie-break: prefer the edge whose
					// neighbour has the lower global triangle index.
					if neighborIndex(neighbors, cur, e) < neighborIndex(neighbors, cur, worst) {
						worst = e
						worstVal = s[e]
					}
				}
			}
		}

		if worst == -1 {
			return cur, nil
		}

		next := neighbors[cur][worst]
		if next < 0 {
			// Boundary edge with a negative crossing: the walk has reached
			// the edge of this level's coverage (should not occur for a
			// tessellation whose coarsest level covers the whole sphere,
			// but guards against malformed input rather than looping).
			return cur, nil
		}
		cur = next
	}

	return -1, ErrUnreachable
}

func neighborIndex(neighbors [][3]int32, tri int32, edge int) int32 {
	n := neighbors[tri][edge]
	if n < 0 {
		return math.MaxInt32
	}
	return n
}
