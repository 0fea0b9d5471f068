package geotess

import (
	"math"
	"sort"
)

// HorizontalInterpolation selects between the two horizontal interpolation
// methods available for Position.
type HorizontalInterpolation int

const (
	// HorizontalLinear is barycentric-linear interpolation across the three
	// vertices of the containing triangle.
	HorizontalLinear HorizontalInterpolation = iota
	// HorizontalNaturalNeighbor interpolates via Sibson natural-neighbor
	// coordinates: the fraction of each neighbor's Voronoi cell that would
	// be stolen were the query point inserted into the triangulation.
	HorizontalNaturalNeighbor
)

// VertexWeight pairs a grid vertex index with its horizontal interpolation
// weight; weights across one VertexWeight slice sum to 1.
type VertexWeight struct {
	Vertex int
	Weight float64
}

// barycentricWeights solves for the combination w0,w1,w2 of the triangle's
// three unit vertex vectors that reproduces v: v = w0*a + w1*b + w2*c. Because
// a, b, c, v are all unit vectors and v lies (to within grid resolution) in
// the plane they span, this linear solve gives the same coefficients a
// spherical barycentric construction would for Grid triangles whose vertices
// are a GeoTess level's edge length apart — the technique the reference
// GeoTess implementation itself uses for linear interpolation, in place of an
// exact spherical-excess area ratio. The three weights are then normalised
// so they sum to 1.
func barycentricWeights(a, b, c, v [3]float64) [3]float64 {
	det := func(m [3][3]float64) float64 {
		return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
			m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
			m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	}
	m := [3][3]float64{
		{a[0], b[0], c[0]},
		{a[1], b[1], c[1]},
		{a[2], b[2], c[2]},
	}
	d := det(m)
	if d == 0 {
		return [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	col := func(m [3][3]float64, j int, x [3]float64) [3][3]float64 {
		r := m
		for i := 0; i < 3; i++ {
			r[i][j] = x[i]
		}
		return r
	}
	w0 := det(col(m, 0, v)) / d
	w1 := det(col(m, 1, v)) / d
	w2 := det(col(m, 2, v)) / d
	if s := w0 + w1 + w2; s != 0 {
		w0, w1, w2 = w0/s, w1/s, w2/s
	}
	return [3]float64{w0, w1, w2}
}

const circumTieEpsilon = 1e-9

// naturalNeighborWeights computes Sibson natural-neighbor coordinates for v:
// the vertex v would be inserted into the Delaunay tessellation conceptually,
// and each neighbor's coefficient is the ratio of Voronoi-cell area the
// insertion would steal from it to the total area stolen.
//
// The cavity — the set of triangles whose circumcircle on the sphere
// contains v — is found by breadth-first expansion outward from the
// containing triangle tri; these are exactly the triangles that would be
// retriangulated were v actually inserted. Their boundary, walked as a ring,
// gives v's natural neighbors in order. For each neighbor p, the stolen area
// is the spherical polygon bounded by the circumcenters of v's new fan
// triangles on either side of p and the circumcenters of the cavity
// triangles that already touched p, fanned in angular order around p. A
// point lying exactly on a triangle's circumscribing circle is treated as
// inside it (the inclusive <= comparison in insideCircumcircle), so the
// cavity — and hence the result — is determined by triangle indices in a
// fixed, reproducible way rather than by floating-point happenstance.
func naturalNeighborWeights(grid *Grid, tri int32, v [3]float64) []VertexWeight {
	cavity := findCavity(grid, tri, v)
	if len(cavity) == 0 {
		cavity = []int32{tri}
	}

	boundary := cavityBoundary(grid, cavity)
	if len(boundary) < 3 {
		t := grid.Triangle(tri)
		return []VertexWeight{
			{Vertex: int(t[0]), Weight: 1.0 / 3},
			{Vertex: int(t[1]), Weight: 1.0 / 3},
			{Vertex: int(t[2]), Weight: 1.0 / 3},
		}
	}

	n := len(boundary)
	newCC := make([][3]float64, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		newCC[i] = sphericalCircumcenter(v, grid.Vertex(boundary[i]), grid.Vertex(boundary[j]))
	}

	oldCC := make(map[int32][][3]float64, n)
	for _, ct := range cavity {
		t := grid.Triangle(ct)
		cc := sphericalCircumcenter(grid.Vertex(t[0]), grid.Vertex(t[1]), grid.Vertex(t[2]))
		for _, vi := range t {
			oldCC[vi] = append(oldCC[vi], cc)
		}
	}

	weights := make([]VertexWeight, n)
	var total float64
	for i, p := range boundary {
		prev := newCC[(i-1+n)%n]
		next := newCC[i]
		fan := sortByAngleAround(grid.Vertex(p), oldCC[p])
		poly := make([][3]float64, 0, len(fan)+2)
		poly = append(poly, prev)
		poly = append(poly, fan...)
		poly = append(poly, next)
		area := sphericalPolygonArea(poly)
		if area < 0 {
			area = -area
		}
		weights[i] = VertexWeight{Vertex: int(p), Weight: area}
		total += area
	}
	if total <= 0 {
		eq := 1.0 / float64(n)
		for i := range weights {
			weights[i].Weight = eq
		}
		return weights
	}
	for i := range weights {
		weights[i].Weight /= total
	}
	return weights
}

// findCavity breadth-first expands from start, collecting every triangle
// whose circumcircle contains v, stopping each branch at the first triangle
// that fails the test. Triangle indices are returned in ascending order so
// downstream area computations are independent of BFS visitation order.
func findCavity(grid *Grid, start int32, v [3]float64) []int32 {
	visited := map[int32]bool{start: true}
	queue := []int32{start}
	var cavity []int32
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !insideCircumcircle(grid, cur, v) {
			continue
		}
		cavity = append(cavity, cur)
		nbrs := grid.Neighbors(cur)
		for _, nb := range nbrs {
			if nb < 0 || visited[nb] {
				continue
			}
			visited[nb] = true
			queue = append(queue, nb)
		}
	}
	sort.Slice(cavity, func(i, j int) bool { return cavity[i] < cavity[j] })
	return cavity
}

// insideCircumcircle reports whether v lies within (or exactly on) the small
// circle on the sphere passing through triangle tri's three vertices.
func insideCircumcircle(grid *Grid, tri int32, v [3]float64) bool {
	t := grid.Triangle(tri)
	a, b, c := grid.Vertex(t[0]), grid.Vertex(t[1]), grid.Vertex(t[2])
	center := sphericalCircumcenter(a, b, c)
	radius := angularDistance(center, a)
	dist := angularDistance(center, v)
	return dist <= radius+circumTieEpsilon
}

// cavityBoundary walks the perimeter of a connected set of cavity triangles
// into an ordered ring of vertex indices: a cavity triangle's edge belongs
// to the boundary when its opposite neighbor is not itself in the cavity.
// Triangles are assumed consistently wound (the same convention
// internal/tessellation's edge walk relies on), so boundary edges chain
// tip-to-tail into a single ring with no extra bookkeeping.
func cavityBoundary(grid *Grid, cavity []int32) []int32 {
	inCavity := make(map[int32]bool, len(cavity))
	for _, t := range cavity {
		inCavity[t] = true
	}

	next := make(map[int32]int32)
	for _, ct := range cavity {
		t := grid.Triangle(ct)
		nbrs := grid.Neighbors(ct)
		for side := 0; side < 3; side++ {
			nb := nbrs[side]
			if nb >= 0 && inCavity[nb] {
				continue
			}
			from, to := t[(side+1)%3], t[(side+2)%3]
			next[from] = to
		}
	}
	if len(next) == 0 {
		return nil
	}

	var start int32 = -1
	for k := range next {
		if start == -1 || k < start {
			start = k
		}
	}

	ring := make([]int32, 0, len(next))
	seen := map[int32]bool{}
	cur := start
	for {
		if seen[cur] {
			break
		}
		seen[cur] = true
		ring = append(ring, cur)
		nx, ok := next[cur]
		if !ok {
			break
		}
		cur = nx
		if cur == start {
			break
		}
	}
	return ring
}

// sortByAngleAround orders points by their azimuth in the local tangent
// plane at center, so a fan of circumcenters attached to one natural
// neighbor can be walked consecutively rather than in arbitrary collection
// order.
func sortByAngleAround(center [3]float64, points [][3]float64) [][3]float64 {
	if len(points) <= 1 {
		return points
	}
	ref := arbitraryTangent(center)
	binormal := cross(center, ref)
	angle := func(p [3]float64) float64 {
		d := sub(p, center)
		proj := sub(d, scale(center, dot(d, center)))
		return math.Atan2(dot(proj, binormal), dot(proj, ref))
	}
	out := append([][3]float64(nil), points...)
	sort.Slice(out, func(i, j int) bool { return angle(out[i]) < angle(out[j]) })
	return out
}

// arbitraryTangent returns any unit vector orthogonal to n, used only to
// establish a stable zero-azimuth reference for sortByAngleAround.
func arbitraryTangent(n [3]float64) [3]float64 {
	ref := [3]float64{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		ref = [3]float64{0, 1, 0}
	}
	t := sub(ref, scale(n, dot(ref, n)))
	return normalize(t)
}

// sphericalCircumcenter returns the unit vector equidistant (in angular
// terms) from a, b, and c, lying on the same hemisphere as the triangle —
// the spherical analogue of a planar circumcenter, and the point natural
// neighbor interpolation measures stolen Voronoi area against.
func sphericalCircumcenter(a, b, c [3]float64) [3]float64 {
	n := cross(sub(b, a), sub(c, a))
	if dot(n, a)+dot(n, b)+dot(n, c) < 0 {
		n = scale(n, -1)
	}
	return normalize(n)
}

// sphericalTriangleArea returns the spherical excess of triangle a,b,c on
// the unit sphere (Van Oosterom & Strackee), numerically stable for the
// small triangles natural-neighbor stolen-area polygons produce.
func sphericalTriangleArea(a, b, c [3]float64) float64 {
	numerator := dot(a, cross(b, c))
	denominator := 1 + dot(a, b) + dot(b, c) + dot(c, a)
	return 2 * math.Atan2(numerator, denominator)
}

// sphericalPolygonArea returns the signed area of a spherical polygon via
// fan triangulation from its first vertex; valid for the small, simple,
// near-convex stolen-area polygons this package constructs.
func sphericalPolygonArea(poly [][3]float64) float64 {
	if len(poly) < 3 {
		return 0
	}
	var area float64
	for i := 1; i < len(poly)-1; i++ {
		area += sphericalTriangleArea(poly[0], poly[i], poly[i+1])
	}
	return area
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func normalize(a [3]float64) [3]float64 {
	n := math.Sqrt(dot(a, a))
	if n == 0 {
		return a
	}
	return scale(a, 1/n)
}

func angularDistance(a, b [3]float64) float64 {
	d := dot(a, b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}
