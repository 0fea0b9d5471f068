package geotess

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridBinaryRoundTrip(t *testing.T) {
	g := tetrahedronGrid(t)
	var buf bytes.Buffer
	require.NoError(t, WriteGrid(&buf, g))

	got, err := ReadGrid(&buf, DefaultShape())
	require.NoError(t, err)
	assert.Equal(t, g.GridID(), got.GridID())
	assert.Equal(t, g.NumVertices(), got.NumVertices())
	assert.Equal(t, g.NumTriangles(), got.NumTriangles())
	for ti := int32(0); ti < int32(g.NumTriangles()); ti++ {
		assert.Equal(t, g.Neighbors(ti), got.Neighbors(ti))
	}
}

func TestModelBinaryRoundTrip(t *testing.T) {
	g := tetrahedronGrid(t)
	profiles := varyingProfileTable(g)
	m, err := NewModel(g, singleLayerMetadata(), profiles)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteModel(&buf, m))

	got, err := ReadModel(&buf, g)
	require.NoError(t, err)
	assert.True(t, m.Equal(got))
}

func TestModelBinaryRejectsGridIDMismatch(t *testing.T) {
	g := tetrahedronGrid(t)
	m, err := NewModel(g, singleLayerMetadata(), constantProfileTable(g, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteModel(&buf, m))

	otherGrid := tetrahedronGrid(t)
	otherGrid.gridID = "not-the-same-grid-id"

	_, err = ReadModel(&buf, otherGrid)
	require.Error(t, err)
	var mismatch *ErrFormatMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestGridASCIIRoundTrip(t *testing.T) {
	g := tetrahedronGrid(t)
	var buf bytes.Buffer
	require.NoError(t, WriteGridASCII(&buf, g))

	got, err := ReadGridASCII(&buf, DefaultShape())
	require.NoError(t, err)
	assert.Equal(t, g.GridID(), got.GridID())
}
