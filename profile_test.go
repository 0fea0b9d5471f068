package geotess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleAttrData(x float64) Data {
	d := NewData(AttributeDouble, 1)
	d.SetDouble(0, x)
	return d
}

func TestProfileNumActiveNodes(t *testing.T) {
	assert.Equal(t, 0, NewEmptyProfile(0, 10).NumActiveNodes())
	assert.Equal(t, 1, NewThinProfile(5, singleAttrData(1)).NumActiveNodes())
	assert.Equal(t, 1, NewConstantProfile(0, 10, singleAttrData(1)).NumActiveNodes())
	assert.Equal(t, 1, NewSurfaceProfile(singleAttrData(1)).NumActiveNodes())
	assert.Equal(t, 0, NewSurfaceEmptyProfile().NumActiveNodes())

	radii := []float64{0, 10, 20, 30}
	data := []Data{singleAttrData(0), singleAttrData(1), singleAttrData(4), singleAttrData(9)}
	assert.Equal(t, 4, NewNPointProfile(radii, data).NumActiveNodes())
}

func TestProfileRadialNodesClampOutsideRange(t *testing.T) {
	radii := []float64{0, 10, 20, 30}
	data := []Data{singleAttrData(0), singleAttrData(1), singleAttrData(4), singleAttrData(9)}
	p := NewNPointProfile(radii, data)

	below := p.RadialNodes(-5, RadialLinear)
	require.Len(t, below, 1)
	assert.Equal(t, 0, below[0].Index)
	assert.InDelta(t, 1.0, below[0].Weight, 1e-12)

	above := p.RadialNodes(100, RadialLinear)
	require.Len(t, above, 1)
	assert.Equal(t, 3, above[0].Index)
}

func TestProfileLinearInterpolationMidpoint(t *testing.T) {
	radii := []float64{0, 10}
	data := []Data{singleAttrData(0), singleAttrData(10)}
	p := NewNPointProfile(radii, data)

	nodes := p.RadialNodes(5, RadialLinear)
	require.Len(t, nodes, 2)
	got := p.Value(nodes, 0)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestProfileCubicSplineWeightsSumToOne(t *testing.T) {
	radii := []float64{0, 5, 15, 30, 50}
	data := make([]Data, len(radii))
	for i, r := range radii {
		data[i] = singleAttrData(r * r)
	}
	p := NewNPointProfile(radii, data)

	for _, r := range []float64{1, 7, 20, 45} {
		nodes := p.RadialNodes(r, RadialCubicSpline)
		var sum float64
		for _, n := range nodes {
			sum += n.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights at r=%v should sum to 1", r)
	}
}

func TestProfileCubicSplineExactOnLinearData(t *testing.T) {
	// A natural cubic spline through collinear samples is the line itself:
	// every second derivative is zero, which the "natural" end condition
	// (zero second derivative at the ends) already satisfies.
	radii := []float64{0, 10, 20, 30, 40}
	data := make([]Data, len(radii))
	for i, r := range radii {
		data[i] = singleAttrData(2 * r)
	}
	p := NewNPointProfile(radii, data)

	nodes := p.RadialNodes(25, RadialCubicSpline)
	got := p.Value(nodes, 0)
	assert.InDelta(t, 50.0, got, 1e-6)
}

func TestProfileRadiusBottomTopNaNForSurface(t *testing.T) {
	p := NewSurfaceProfile(singleAttrData(1))
	assert.True(t, math.IsNaN(p.RadiusBottom()))
	assert.True(t, math.IsNaN(p.RadiusTop()))
}
