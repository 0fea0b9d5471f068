package geotess

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeModelAndGridFiles writes one shared Grid file plus n Model files
// (each a constant profile over value i) into dir, returning the model
// paths and the grid path.
func writeModelAndGridFiles(t *testing.T, dir string, g *Grid, n int) (modelPaths []string, gridPath string) {
	t.Helper()

	gridPath = filepath.Join(dir, "shared.geotessgrid")
	gf, err := os.Create(gridPath)
	require.NoError(t, err)
	require.NoError(t, WriteGrid(gf, g))
	require.NoError(t, gf.Close())

	for i := 0; i < n; i++ {
		m, err := NewModel(g, singleLayerMetadata(), constantProfileTable(g, float64(i)))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteModel(&buf, m))

		path := filepath.Join(dir, "model-"+string(rune('a'+i))+".geotessmodel")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
		modelPaths = append(modelPaths, path)
	}
	return modelPaths, gridPath
}

func TestLoadModelsWithCatalogSharesOneGrid(t *testing.T) {
	g := tetrahedronGrid(t)
	dir := t.TempDir()
	modelPaths, gridPath := writeModelAndGridFiles(t, dir, g, 4)

	catalog := NewGridCatalog(8)
	locate := func(modelPath string) (string, Bounds) { return gridPath, Bounds{} }

	opts := DefaultLoadOptions()
	opts.Workers = 4
	models, errs := LoadModelsWithCatalog(modelPaths, catalog, locate, DefaultShape(), opts)

	require.Empty(t, errs)
	require.Len(t, models, len(modelPaths))
	assert.Equal(t, 1, catalog.Len(), "all four models should share one cached grid")

	for i, m := range models {
		v := NewPosition(m, HorizontalLinear, RadialLinear)
		v.Set(g.Vertex(0))
		v.SetLayer(0)
		v.SetRadius(5000)
		got, err := v.Value(0)
		require.NoError(t, err)
		assert.InDelta(t, float64(i), got, 1e-6)
		m.Grid().Release()
	}
}

func TestLoadModelsWithCatalogSerial(t *testing.T) {
	g := tetrahedronGrid(t)
	dir := t.TempDir()
	modelPaths, gridPath := writeModelAndGridFiles(t, dir, g, 3)

	catalog := NewGridCatalog(8)
	locate := func(modelPath string) (string, Bounds) { return gridPath, Bounds{} }

	opts := LoadOptions{Parallel: false}
	models, errs := LoadModelsWithCatalog(modelPaths, catalog, locate, DefaultShape(), opts)

	require.Empty(t, errs)
	require.Len(t, models, len(modelPaths))
	assert.Equal(t, 1, catalog.Len())
	for _, m := range models {
		m.Grid().Release()
	}
}

func TestLoadModelsWithCatalogCollectsErrors(t *testing.T) {
	g := tetrahedronGrid(t)
	dir := t.TempDir()
	modelPaths, gridPath := writeModelAndGridFiles(t, dir, g, 2)
	modelPaths = append(modelPaths, filepath.Join(dir, "missing.geotessmodel"))

	catalog := NewGridCatalog(8)
	locate := func(modelPath string) (string, Bounds) { return gridPath, Bounds{} }

	opts := DefaultLoadOptions()
	models, errs := LoadModelsWithCatalog(modelPaths, catalog, locate, DefaultShape(), opts)

	assert.Len(t, errs, 1)
	assert.Len(t, models, 2)
	for _, m := range models {
		m.Grid().Release()
	}
}

func TestLoadModelsParallelMatchesSerial(t *testing.T) {
	g := tetrahedronGrid(t)
	dir := t.TempDir()
	modelPaths, _ := writeModelAndGridFiles(t, dir, g, 3)

	serial, errs := LoadModelsParallel(modelPaths, g, LoadOptions{Parallel: false})
	require.Empty(t, errs)
	parallel, errs := LoadModelsParallel(modelPaths, g, LoadOptions{Parallel: true, Workers: 3})
	require.Empty(t, errs)

	require.Len(t, serial, len(modelPaths))
	require.Len(t, parallel, len(modelPaths))
	for i := range serial {
		assert.True(t, serial[i].Equal(parallel[i]))
	}
}
