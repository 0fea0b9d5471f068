package geotess

import (
	"math"
	"sort"
	"sync"
)

// ProfileType discriminates the six Profile variants. Dispatch on this tag
// in Profile's methods avoids heap-indirected polymorphism on the hot query
// path, in place of variant Profiles via subclassing.
type ProfileType int

const (
	ProfileEmpty ProfileType = iota
	ProfileThin
	ProfileConstant
	ProfileNPoint
	ProfileSurface
	ProfileSurfaceEmpty
)

// RadialNode is one (radial-index, weight) pair participating in an
// interpolated value; weights across all nodes returned for one query sum to
// 1.
type RadialNode struct {
	Index  int
	Weight float64
}

// RadialInterpolation selects linear or natural-cubic-spline interpolation
// of a Profile's NPOINT stack.
type RadialInterpolation int

const (
	RadialLinear RadialInterpolation = iota
	RadialCubicSpline
)

// Profile is the radial stack of attribute data anchored at one vertex
// within one layer. It is always accessed through a
// pointer so the cubic-spline weight matrix cached on the instance
// (spline.go, built once under splineOnce) is shared by every user of that
// Profile.
type Profile struct {
	typ      ProfileType
	attrType AttributeType
	nattrs   int
	radii    []float64 // km, monotone ascending
	data     []Data    // len(data) == len(radii) for THIN/NPOINT; 1 for CONSTANT/SURFACE; 0 for EMPTY/SURFACE_EMPTY

	splineOnce  sync.Once
	splineCoefs *splineCoefficients
}

// NewEmptyProfile returns an EMPTY profile spanning [bottom, top] with no
// data — a zero-thickness layer.
func NewEmptyProfile(bottom, top float64) *Profile {
	return &Profile{typ: ProfileEmpty, radii: []float64{bottom, top}}
}

// NewThinProfile returns a THIN profile: one radius, one Data tuple.
func NewThinProfile(radius float64, d Data) *Profile {
	return &Profile{typ: ProfileThin, attrType: d.Type(), nattrs: d.NumAttributes(), radii: []float64{radius}, data: []Data{d}}
}

// NewConstantProfile returns a CONSTANT profile: the layer's [bottom, top]
// interface radii and one Data tuple applying throughout.
func NewConstantProfile(bottom, top float64, d Data) *Profile {
	return &Profile{typ: ProfileConstant, attrType: d.Type(), nattrs: d.NumAttributes(), radii: []float64{bottom, top}, data: []Data{d}}
}

// NewNPointProfile returns an NPOINT profile: len(radii) >= 2 monotone radii
// with matching Data per node.
func NewNPointProfile(radii []float64, data []Data) *Profile {
	var attrType AttributeType
	var nattrs int
	if len(data) > 0 {
		attrType, nattrs = data[0].Type(), data[0].NumAttributes()
	}
	return &Profile{typ: ProfileNPoint, attrType: attrType, nattrs: nattrs, radii: append([]float64(nil), radii...), data: append([]Data(nil), data...)}
}

// NewSurfaceProfile returns a SURFACE profile: a single Data tuple defined on
// the sphere surface with no radial extent.
func NewSurfaceProfile(d Data) *Profile {
	return &Profile{typ: ProfileSurface, attrType: d.Type(), nattrs: d.NumAttributes(), data: []Data{d}}
}

// NewSurfaceEmptyProfile returns a SURFACE_EMPTY profile: no data.
func NewSurfaceEmptyProfile() *Profile {
	return &Profile{typ: ProfileSurfaceEmpty}
}

// Type returns the profile's variant tag.
func (p *Profile) Type() ProfileType { return p.typ }

// NumRadii returns the number of stored radii (0, 1, 2, or len(data) for
// NPOINT).
func (p *Profile) NumRadii() int { return len(p.radii) }

// Radius returns the i'th stored radius, in km.
func (p *Profile) Radius(i int) float64 { return p.radii[i] }

// Data returns the i'th stored Data tuple.
func (p *Profile) Data(i int) Data { return p.data[i] }

// NumActiveNodes is the PointMap contribution of this profile: 0 for
// EMPTY/SURFACE_EMPTY, 1 for THIN/CONSTANT/SURFACE, N for NPOINT with N
// nodes.
func (p *Profile) NumActiveNodes() int {
	switch p.typ {
	case ProfileEmpty, ProfileSurfaceEmpty:
		return 0
	case ProfileThin, ProfileConstant, ProfileSurface:
		return 1
	case ProfileNPoint:
		return len(p.data)
	default:
		return 0
	}
}

// RadiusBottom and RadiusTop return the layer's interface radii, derived
// from the profile's endpoints. Both variants with no radii (EMPTY has two,
// so this only applies to SURFACE/SURFACE_EMPTY) return NaN — a layer
// sampled on the sphere surface has no radial extent.
func (p *Profile) RadiusBottom() float64 {
	if len(p.radii) == 0 {
		return math.NaN()
	}
	return p.radii[0]
}

func (p *Profile) RadiusTop() float64 {
	if len(p.radii) == 0 {
		return math.NaN()
	}
	return p.radii[len(p.radii)-1]
}

// RadialNodes returns the (index, weight) pairs contributing to an
// interpolated value at radius r, following this lookup rule:
//
//   - EMPTY, SURFACE_EMPTY: no nodes (no data exists to interpolate).
//   - THIN, CONSTANT, SURFACE: the single stored tuple, weight 1.
//   - NPOINT: clamp to the bottom/top node outside [r0, rN-1]; otherwise a
//     binary-search segment with a linear coefficient, or (mode ==
//     RadialCubicSpline) all nodes weighted by the natural cubic spline.
func (p *Profile) RadialNodes(r float64, mode RadialInterpolation) []RadialNode {
	switch p.typ {
	case ProfileEmpty, ProfileSurfaceEmpty:
		return nil
	case ProfileThin, ProfileConstant, ProfileSurface:
		return []RadialNode{{Index: 0, Weight: 1}}
	case ProfileNPoint:
		return p.npointRadialNodes(r, mode)
	default:
		return nil
	}
}

func (p *Profile) npointRadialNodes(r float64, mode RadialInterpolation) []RadialNode {
	n := len(p.radii)
	if n == 1 {
		return []RadialNode{{Index: 0, Weight: 1}}
	}
	if r <= p.radii[0] {
		return []RadialNode{{Index: 0, Weight: 1}}
	}
	if r >= p.radii[n-1] {
		return []RadialNode{{Index: n - 1, Weight: 1}}
	}

	if mode == RadialCubicSpline {
		return p.cubicSplineNodes(r)
	}

	i := sort.Search(n, func(i int) bool { return p.radii[i] > r }) - 1
	if i < 0 {
		i = 0
	}
	if i >= n-1 {
		i = n - 2
	}
	lo, hi := p.radii[i], p.radii[i+1]
	var frac float64
	if hi > lo {
		frac = (r - lo) / (hi - lo)
	}
	return []RadialNode{
		{Index: i, Weight: 1 - frac},
		{Index: i + 1, Weight: frac},
	}
}

// Value returns the interpolated double value of attribute attr at the given
// radial nodes: sum(node.Weight * Data(node.Index).AsDouble(attr)).
func (p *Profile) Value(nodes []RadialNode, attr int) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Weight * p.data[n.Index].AsDouble(attr)
	}
	return sum
}
