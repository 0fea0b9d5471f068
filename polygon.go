package geotess

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// Polygon is an ordered great-circle loop on the sphere, with an assumed
// reference point known to be inside the loop. Edges are indexed with an
// R-tree bounding-box broad-phase: most candidate edges can be discarded by
// bounding box before the exact great-circle crossing test runs.
type Polygon struct {
	vertices  [][3]float64
	reference [3]float64
	rtree     *rtreego.Rtree
}

type polygonEdge struct {
	i, j   int
	minLat, maxLat, minLon, maxLon float64
}

func (e polygonEdge) Bounds() rtreego.Rect {
	point := rtreego.Point{e.minLon, e.minLat}
	lengths := []float64{maxf(e.maxLon-e.minLon, 1e-9), maxf(e.maxLat-e.minLat, 1e-9)}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// NewPolygon builds a Polygon from an ordered vertex ring and a reference
// unit vector known to be inside it.
func NewPolygon(shape Shape, vertices [][3]float64, reference [3]float64) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, &ErrInvalidArgument{Reason: "polygon must have at least 3 vertices"}
	}
	p := &Polygon{vertices: vertices, reference: reference, rtree: rtreego.NewTree(2, 5, 10)}
	n := len(vertices)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		lat1, lon1 := shape.LatDegrees(vertices[i]), shape.LonDegrees(vertices[i])
		lat2, lon2 := shape.LatDegrees(vertices[j]), shape.LonDegrees(vertices[j])
		e := polygonEdge{
			i: i, j: j,
			minLat: math.Min(lat1, lat2), maxLat: math.Max(lat1, lat2),
			minLon: math.Min(lon1, lon2), maxLon: math.Max(lon1, lon2),
		}
		p.rtree.Insert(e)
	}
	return p, nil
}

// Contains reports whether u lies inside the polygon: since the reference
// point is inside, u is inside iff the arc from the reference point to u
// crosses the polygon's edges an even number of times.
func (p *Polygon) Contains(shape Shape, u [3]float64) bool {
	lat, lon := shape.LatDegrees(u), shape.LonDegrees(u)
	refLat, refLon := shape.LatDegrees(p.reference), shape.LonDegrees(p.reference)

	minLat, maxLat := math.Min(lat, refLat), math.Max(lat, refLat)
	minLon, maxLon := math.Min(lon, refLon), math.Max(lon, refLon)
	point := rtreego.Point{minLon, minLat}
	lengths := []float64{maxf(maxLon-minLon, 1e-9), maxf(maxLat-minLat, 1e-9)}
	rect, _ := rtreego.NewRect(point, lengths)

	crossings := 0
	for _, sp := range p.rtree.SearchIntersect(rect) {
		e := sp.(polygonEdge)
		if greatCircleSegmentsCross(p.reference, u, p.vertices[e.i], p.vertices[e.j]) {
			crossings++
		}
	}
	return crossings%2 == 0
}

// greatCircleSegmentsCross reports whether great-circle segment (a,b)
// crosses great-circle segment (c,d) on the unit sphere: each segment lies
// on the plane through the origin and its two endpoints; the segments cross
// iff c and d fall on opposite sides of plane(a,b) AND a and b fall on
// opposite sides of plane(c,d).
func greatCircleSegmentsCross(a, b, c, d [3]float64) bool {
	nAB := cross(a, b)
	sideC := dot(nAB, c)
	sideD := dot(nAB, d)
	if sideC*sideD > 0 {
		return false
	}
	nCD := cross(c, d)
	sideA := dot(nCD, a)
	sideB := dot(nCD, b)
	if sideA*sideB > 0 {
		return false
	}
	return true
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
