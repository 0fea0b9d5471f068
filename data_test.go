package geotess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDoubleRoundTrip(t *testing.T) {
	d := NewData(AttributeDouble, 3)
	d.SetDouble(0, 1.5)
	d.SetDouble(1, -2.25)
	assert.InDelta(t, 1.5, d.AsDouble(0), 1e-15)
	assert.InDelta(t, -2.25, d.AsDouble(1), 1e-15)
	assert.True(t, math.IsNaN(d.AsDouble(2)))
}

func TestDataIntegerMissingSentinel(t *testing.T) {
	for _, typ := range []AttributeType{AttributeLong, AttributeInt, AttributeShort, AttributeByte} {
		d := NewData(typ, 1)
		assert.True(t, math.IsNaN(d.AsDouble(0)), "type %v should start missing", typ)
		d.SetDouble(0, 7)
		assert.InDelta(t, 7.0, d.AsDouble(0), 1e-9)
		d.SetDouble(0, math.NaN())
		assert.True(t, math.IsNaN(d.AsDouble(0)))
	}
}

func TestDataBytesRoundTrip(t *testing.T) {
	d := NewData(AttributeFloat, 2)
	d.SetDouble(0, 3.25)
	d.SetDouble(1, -1.0)
	raw := d.Bytes()
	rebuilt := DataFromBytes(AttributeFloat, 2, raw)
	require.True(t, d.Equal(rebuilt))
}

func TestDataEqualDetectsMismatch(t *testing.T) {
	a := NewData(AttributeDouble, 1)
	a.SetDouble(0, 1)
	b := NewData(AttributeDouble, 1)
	b.SetDouble(0, 2)
	assert.False(t, a.Equal(b))
}
