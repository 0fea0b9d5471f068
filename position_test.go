package geotess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func varyingProfileTable(g *Grid) [][]*Profile {
	profiles := make([][]*Profile, g.NumVertices())
	for v := range profiles {
		value := float64(v) * 10
		profiles[v] = []*Profile{NewConstantProfile(3480, 6371, singleAttrData(value))}
	}
	return profiles
}

func TestPositionValueAtVertexMatchesVertexData(t *testing.T) {
	g := tetrahedronGrid(t)
	m, err := NewModel(g, singleLayerMetadata(), varyingProfileTable(g))
	require.NoError(t, err)

	for vi := int32(0); vi < int32(g.NumVertices()); vi++ {
		pos := NewPosition(m, HorizontalLinear, RadialLinear)
		pos.Set(g.Vertex(vi))
		pos.SetLayer(0)
		pos.SetRadius(5000)
		got, err := pos.Value(0)
		require.NoError(t, err)
		assert.InDelta(t, float64(vi)*10, got, 1e-6)
	}
}

func TestPositionHorizontalWeightsSumToOne(t *testing.T) {
	g := tetrahedronGrid(t)
	m, err := NewModel(g, singleLayerMetadata(), varyingProfileTable(g))
	require.NoError(t, err)

	target := normalizeVec([3]float64{0.3, 0.2, 0.9})
	for _, mode := range []HorizontalInterpolation{HorizontalLinear, HorizontalNaturalNeighbor} {
		pos := NewPosition(m, mode, RadialLinear)
		pos.Set(target)
		pos.SetLayer(0)
		weights, err := pos.Weights()
		require.NoError(t, err)
		var sum float64
		for _, w := range weights {
			sum += w.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPositionDepthRadiusRoundTrip(t *testing.T) {
	g := tetrahedronGrid(t)
	m, err := NewModel(g, singleLayerMetadata(), varyingProfileTable(g))
	require.NoError(t, err)

	pos := NewPosition(m, HorizontalLinear, RadialLinear)
	pos.Set(g.Vertex(0))
	pos.SetLayer(0)
	pos.SetDepth(100)
	want := g.Shape().EarthRadius(g.Vertex(0)) - 100
	assert.InDelta(t, want, pos.Radius(), 1e-9)
}

func TestPositionInterfaceRadii(t *testing.T) {
	g := tetrahedronGrid(t)
	m, err := NewModel(g, singleLayerMetadata(), varyingProfileTable(g))
	require.NoError(t, err)

	pos := NewPosition(m, HorizontalLinear, RadialLinear)
	pos.Set(g.Vertex(0))
	pos.SetLayer(0)
	bottom, top := pos.InterfaceRadii()
	assert.InDelta(t, 3480, bottom, 1e-6)
	assert.InDelta(t, 6371, top, 1e-6)
}
