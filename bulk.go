package geotess

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
)

// LoadOptions controls parallel Model loading: a worker pool over a path
// list, with optional progress reporting and either fail-fast or
// skip-and-collect error handling.
type LoadOptions struct {
	// Parallel enables concurrent model loading; when false, models load
	// serially on the calling goroutine.
	Parallel bool
	// Workers is the worker goroutine count; 0 defaults to runtime.NumCPU().
	Workers int
	// SkipErrors continues past individual load failures, collecting them,
	// instead of stopping at the first one.
	SkipErrors bool
	// Progress, if set, is called after each model finishes loading
	// (successfully or not).
	Progress func(loaded, total int)
	// ErrorLog, if set, receives one line per load failure.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns load options tuned for batch loading many
// models backed by a small number of shared grids: parallel across
// NumCPU workers, tolerant of individual failures.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Parallel: true, Workers: runtime.NumCPU(), SkipErrors: true}
}

// GridLocator resolves a Model file path to the path of the Grid file it was
// built against, plus the geographic bounds that Grid should be indexed
// under in the GridCatalog.
type GridLocator func(modelPath string) (gridPath string, bounds Bounds)

// LoadModelsWithCatalog reads the Model file at each path, resolving and
// registering each one's backing Grid through catalog so that models
// sharing a Grid file load it only once — the common case for a directory
// of per-attribute models all built against one regional grid. Models load
// concurrently per opts; grid resolution is synchronized internally so
// concurrent models sharing a grid path don't each pay to parse it.
//
// Every returned Model holds a retained reference to its Grid (via
// catalog.Get); callers are responsible for calling Model.Grid().Release()
// once they are done with each model, the same contract GridCatalog
// documents for any caller obtaining a Grid through it.
func LoadModelsWithCatalog(paths []string, catalog *GridCatalog, locate GridLocator, shape Shape, opts LoadOptions) ([]*Model, []error) {
	if len(paths) == 0 {
		return nil, nil
	}

	resolver := &gridResolver{catalog: catalog, locate: locate, shape: shape}
	loadOne := func(path string) (*Model, error) {
		grid, err := resolver.resolve(path)
		if err != nil {
			return nil, err
		}
		return loadModelFile(path, grid)
	}

	if !opts.Parallel {
		return loadModelsSerial(paths, loadOne, opts)
	}
	return loadModelsParallel(paths, loadOne, opts)
}

// LoadModelsParallel reads the binary Model file at each path, against the
// single shared grid (the common case: one study area, many attribute
// models), and returns them in input order.
func LoadModelsParallel(paths []string, grid *Grid, opts LoadOptions) ([]*Model, []error) {
	if len(paths) == 0 {
		return nil, nil
	}
	loadOne := func(path string) (*Model, error) { return loadModelFile(path, grid) }
	if !opts.Parallel {
		return loadModelsSerial(paths, loadOne, opts)
	}
	return loadModelsParallel(paths, loadOne, opts)
}

// gridResolver resolves model paths to their backing Grid through a
// GridCatalog, caching the path-to-gridID mapping so concurrent callers
// asking about the same grid path don't each parse the file: mu is held for
// the whole resolution, so the first caller parses the file and records its
// gridID in pathToGrid, and every later caller reuses that entry through the
// catalog's own dedup on gridID.
type gridResolver struct {
	mu         sync.Mutex
	pathToGrid map[string]string
	catalog    *GridCatalog
	locate     GridLocator
	shape      Shape
}

func (r *gridResolver) resolve(modelPath string) (*Grid, error) {
	gridPath, bounds := r.locate(modelPath)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pathToGrid == nil {
		r.pathToGrid = make(map[string]string)
	}
	gridID, known := r.pathToGrid[gridPath]

	if known {
		return r.catalog.Get(gridID, bounds, func() (*Grid, error) {
			return readGridFile(gridPath, r.shape)
		})
	}

	g, err := readGridFile(gridPath, r.shape)
	if err != nil {
		return nil, err
	}
	r.pathToGrid[gridPath] = g.GridID()
	return r.catalog.Get(g.GridID(), bounds, func() (*Grid, error) { return g, nil })
}

func readGridFile(path string, shape Shape) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrIoFailure{Path: path, Reason: err.Error()}
	}
	defer f.Close()
	return ReadGrid(f, shape)
}

func loadModelsParallel(paths []string, loadOne func(string) (*Model, error), opts LoadOptions) ([]*Model, []error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		model *Model
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				m, err := loadOne(paths[index])
				results <- loadResult{index: index, model: m, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	modelByIndex := make(map[int]*Model)
	var errs []error
	loaded := 0
	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}
		if result.err != nil {
			err := fmt.Errorf("%s: %w", paths[result.index], result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "error loading model: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		modelByIndex[result.index] = result.model
	}

	models := make([]*Model, 0, len(modelByIndex))
	for i := range paths {
		if m, ok := modelByIndex[i]; ok {
			models = append(models, m)
		}
	}
	return models, errs
}

func loadModelsSerial(paths []string, loadOne func(string) (*Model, error), opts LoadOptions) ([]*Model, []error) {
	models := make([]*Model, 0, len(paths))
	var errs []error
	for i, path := range paths {
		m, err := loadOne(path)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", path, err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "error loading model: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		models = append(models, m)
	}
	return models, errs
}

func loadModelFile(path string, grid *Grid) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrIoFailure{Path: path, Reason: err.Error()}
	}
	defer f.Close()
	return ReadModel(f, grid)
}
