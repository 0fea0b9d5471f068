package geotess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleLayerMetadata() Metadata {
	return Metadata{
		Description:       "test model",
		AttributeNames:    []string{"VALUE"},
		AttributeUnits:    []string{"unitless"},
		AttributeType:     AttributeDouble,
		LayerNames:        []string{"layer0"},
		LayerTessellation: []int{0},
	}
}

func constantProfileTable(g *Grid, value float64) [][]*Profile {
	profiles := make([][]*Profile, g.NumVertices())
	for v := range profiles {
		profiles[v] = []*Profile{NewConstantProfile(0, 10, singleAttrData(value))}
	}
	return profiles
}

func TestNewModelRejectsVertexCountMismatch(t *testing.T) {
	g := tetrahedronGrid(t)
	_, err := NewModel(g, singleLayerMetadata(), [][]*Profile{})
	require.Error(t, err)
}

func TestNewModelRejectsLayerCountMismatch(t *testing.T) {
	g := tetrahedronGrid(t)
	profiles := constantProfileTable(g, 1)
	profiles[0] = append(profiles[0], NewConstantProfile(0, 10, singleAttrData(1)))
	_, err := NewModel(g, singleLayerMetadata(), profiles)
	require.Error(t, err)
}

func TestModelNPointsSumsActiveNodes(t *testing.T) {
	g := tetrahedronGrid(t)
	profiles := constantProfileTable(g, 1)
	m, err := NewModel(g, singleLayerMetadata(), profiles)
	require.NoError(t, err)
	assert.Equal(t, g.NumVertices(), m.NPoints())
}

func TestModelEqualReflexive(t *testing.T) {
	g := tetrahedronGrid(t)
	profiles := constantProfileTable(g, 3.5)
	m, err := NewModel(g, singleLayerMetadata(), profiles)
	require.NoError(t, err)
	assert.True(t, m.Equal(m))
}

func TestModelPointMapRoundTrip(t *testing.T) {
	g := tetrahedronGrid(t)
	profiles := constantProfileTable(g, 1)
	m, err := NewModel(g, singleLayerMetadata(), profiles)
	require.NoError(t, err)

	pm := m.PointMap()
	require.Equal(t, g.NumVertices(), pm.Size())
	for p := 0; p < pm.Size(); p++ {
		v, l, node := pm.Of(p)
		idx, ok := pm.PointIndex(v, l, node)
		require.True(t, ok)
		assert.Equal(t, p, idx)
	}
}
