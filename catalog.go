package geotess

import (
	"sync"

	"github.com/dhconnelly/rtreego"
	lru "github.com/hashicorp/golang-lru/v2"
)

// GridCatalog is a registry of shared Grids keyed by gridID: an LRU eviction
// policy over a bounded number of entries, so a process serving many Models
// backed by a handful of distinct grids loads each grid file once.
// GridCatalog is backed by the hashicorp/golang-lru library and is safe for
// concurrent use.
//
// GridCatalog additionally indexes each grid's bounding box with an R-tree
// (github.com/dhconnelly/rtreego), the broad-phase structure the LibCorr3D
// station-lookup interface (§4.11) needs to find "which grid covers this
// station" without a linear scan over every cached grid.
type GridCatalog struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, *Grid]
	rtree  *rtreego.Rtree
	bounds map[string]Bounds
}

// NewGridCatalog creates a catalog holding at most capacity distinct grids.
func NewGridCatalog(capacity int) *GridCatalog {
	if capacity <= 0 {
		capacity = 1
	}
	c := &GridCatalog{
		rtree:  rtreego.NewTree(2, 5, 10),
		bounds: make(map[string]Bounds),
	}
	c.cache, _ = lru.NewWithEvict[string, *Grid](capacity, func(gridID string, _ *Grid) {
		c.rtree.Delete(indexedGrid{gridID: gridID, bounds: c.bounds[gridID]})
		delete(c.bounds, gridID)
	})
	return c
}

// Bounds is a geographic lat/lon bounding box in degrees.
type Bounds struct {
	MinLat, MaxLat, MinLon, MaxLon float64
}

type indexedGrid struct {
	gridID string
	bounds Bounds
}

func (e indexedGrid) Bounds() rtreego.Rect {
	point := rtreego.Point{e.bounds.MinLon, e.bounds.MinLat}
	lengths := []float64{
		maxf(e.bounds.MaxLon-e.bounds.MinLon, 1e-6),
		maxf(e.bounds.MaxLat-e.bounds.MinLat, 1e-6),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Get returns the cached Grid for gridID with its reference count
// incremented, or calls loader and caches the result if absent. Callers must
// call Release on the returned Grid when done with it.
func (c *GridCatalog) Get(gridID string, bounds Bounds, loader func() (*Grid, error)) (*Grid, error) {
	c.mu.Lock()
	if g, ok := c.cache.Get(gridID); ok {
		g.retain()
		c.mu.Unlock()
		return g, nil
	}
	c.mu.Unlock()

	g, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cache.Get(gridID); ok {
		existing.retain()
		return existing, nil
	}
	c.cache.Add(gridID, g)
	c.bounds[gridID] = bounds
	c.rtree.Insert(indexedGrid{gridID: gridID, bounds: bounds})
	g.retain()
	return g, nil
}

// GridsCovering returns the gridIDs of every cached grid whose bounding box
// contains the given lat/lon (degrees), used by the LibCorr3D
// station-lookup interface to narrow which grid(s) to search for a station.
func (c *GridCatalog) GridsCovering(lat, lon float64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	point := rtreego.Point{lon, lat}
	lengths := []float64{1e-9, 1e-9}
	rect, _ := rtreego.NewRect(point, lengths)

	var ids []string
	for _, sp := range c.rtree.SearchIntersect(rect) {
		ids = append(ids, sp.(indexedGrid).gridID)
	}
	return ids
}

// Len returns the number of grids currently cached.
func (c *GridCatalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
