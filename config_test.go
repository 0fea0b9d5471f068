package geotess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigShape(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, WGS84, cfg.DefaultEllipsoid)
	assert.False(t, cfg.UseSphere)
	assert.Equal(t, HorizontalLinear, cfg.DefaultHorizontal)
	assert.Equal(t, RadialLinear, cfg.DefaultRadial)

	shape := cfg.Shape()
	assert.Equal(t, DefaultShape(), shape)
}
