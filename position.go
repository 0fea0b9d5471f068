package geotess

import "math"

// Position is a query cursor into a Model: set a geographic location and a
// radius (or depth), then read interpolated attribute values.
// It caches the triangle-walk and horizontal-weight results across repeated
// queries at the same location, invalidating them only when the location or
// layer changes — the "per-tessellation last-found-triangle cache" the
// Grid-walk algorithm relies on to stay fast for spatially coherent query
// sequences (the common case: ray paths, profiles along a traverse).
type Position struct {
	model      *Model
	horizMode  HorizontalInterpolation
	radialMode RadialInterpolation

	haveLocation bool
	uvec         [3]float64

	haveRadius bool
	radius     float64

	layer int

	lastTri map[int]int32 // tessellation index -> last triangle found there

	weightsValid bool
	weightsTess  int
	weights      []VertexWeight

	resolvedLayer int // layer that actually supplied the last Value result
}

// NewPosition returns a Position over model using the given horizontal and
// radial interpolation modes, with no location or radius set yet.
func NewPosition(model *Model, horiz HorizontalInterpolation, radial RadialInterpolation) *Position {
	return &Position{
		model:         model,
		horizMode:     horiz,
		radialMode:    radial,
		layer:         -1,
		resolvedLayer: -1,
		lastTri:       make(map[int]int32),
	}
}

// Set moves the Position to unit vector v, invalidating any cached
// horizontal weights.
func (pos *Position) Set(v [3]float64) {
	pos.uvec = v
	pos.haveLocation = true
	pos.weightsValid = false
}

// SetGeographicDegrees moves the Position to the given geographic
// latitude/longitude, in degrees.
func (pos *Position) SetGeographicDegrees(latDeg, lonDeg float64) {
	pos.Set(pos.model.Grid().Shape().VectorOfDegrees(latDeg, lonDeg))
}

// SetLayer selects which layer subsequent radius/depth/value queries apply
// to. Changing layer invalidates cached horizontal weights only when the new
// layer uses a different tessellation than the previous one.
func (pos *Position) SetLayer(layer int) {
	if layer == pos.layer {
		return
	}
	oldTess := pos.tessellationOf(pos.layer)
	pos.layer = layer
	if pos.tessellationOf(layer) != oldTess {
		pos.weightsValid = false
	}
}

// Layer returns the currently selected layer index, or -1 if none is set.
func (pos *Position) Layer() int { return pos.layer }

func (pos *Position) tessellationOf(layer int) int {
	if layer < 0 || layer >= len(pos.model.Metadata().LayerTessellation) {
		return -1
	}
	return pos.model.Metadata().LayerTessellation[layer]
}

// SetRadius sets the query radius, in km from Earth's centre.
func (pos *Position) SetRadius(r float64) { pos.radius = r; pos.haveRadius = true }

// SetDepth sets the query radius by depth below sea level, in km, resolved
// against the Position's current location.
func (pos *Position) SetDepth(depthKm float64) {
	pos.SetRadius(pos.model.Grid().Shape().EarthRadius(pos.uvec) - depthKm)
}

// SetRadiusFraction sets the query radius to a fraction of the current
// layer's thickness at this location (0 = bottom, 1 = top), resolved using
// the horizontally interpolated interface radii from InterfaceRadii. Exact
// per-vertex interface radii differ across a triangle; callers needing exact
// per-vertex values should resolve a Horizon with GetRadius instead.
func (pos *Position) SetRadiusFraction(fraction float64) error {
	if err := pos.ensureWeights(); err != nil {
		return err
	}
	bottom, top := pos.InterfaceRadii()
	pos.SetRadius(bottom + fraction*(top-bottom))
	return nil
}

// InterfaceRadii returns the horizontally-interpolated bottom/top radii of
// the current layer at the Position's location.
func (pos *Position) InterfaceRadii() (bottom, top float64) {
	if err := pos.ensureWeights(); err != nil {
		return math.NaN(), math.NaN()
	}
	for _, vw := range pos.weights {
		p := pos.model.Profile(vw.Vertex, pos.layer)
		bottom += vw.Weight * p.RadiusBottom()
		top += vw.Weight * p.RadiusTop()
	}
	return bottom, top
}

// Radius returns the Position's current radius, in km.
func (pos *Position) Radius() float64 { return pos.radius }

// Depth returns the Position's current depth below sea level, in km.
func (pos *Position) Depth() float64 {
	return pos.model.Grid().Shape().EarthRadius(pos.uvec) - pos.radius
}

// ensureWeights (re)computes the horizontal interpolation weights for the
// current location against the current layer's tessellation, reusing the
// last triangle found on that tessellation as the walk's starting point.
func (pos *Position) ensureWeights() error {
	if !pos.haveLocation {
		return &ErrStateError{Reason: "position has no location set"}
	}
	tessIdx := pos.tessellationOf(pos.layer)
	if tessIdx < 0 {
		return &ErrInvalidArgument{Reason: "position has no layer set"}
	}
	if pos.weightsValid && pos.weightsTess == tessIdx {
		return nil
	}

	grid := pos.model.Grid()
	tess := grid.Tessellation(tessIdx)
	levelIdx := len(tess.Levels) - 1

	start, ok := pos.lastTri[tessIdx]
	if !ok {
		start = tess.Levels[levelIdx].First
	}
	tri, err := grid.FindTriangle(tess, levelIdx, start, pos.uvec)
	if err != nil {
		return err
	}
	pos.lastTri[tessIdx] = tri

	var weights []VertexWeight
	switch pos.horizMode {
	case HorizontalNaturalNeighbor:
		weights = naturalNeighborWeights(grid, tri, pos.uvec)
	default:
		t := grid.Triangle(tri)
		w := barycentricWeights(grid.Vertex(t[0]), grid.Vertex(t[1]), grid.Vertex(t[2]), pos.uvec)
		weights = []VertexWeight{
			{Vertex: int(t[0]), Weight: w[0]},
			{Vertex: int(t[1]), Weight: w[1]},
			{Vertex: int(t[2]), Weight: w[2]},
		}
	}

	pos.weights = weights
	pos.weightsTess = tessIdx
	pos.weightsValid = true
	return nil
}

// Value returns the interpolated value of attribute attr at the Position's
// current location, layer, and radius: the horizontal vertex weights each
// contribute their own vertex's radially-interpolated value.
//
// If the current radius falls outside the selected layer's interpolated
// interface radii, the layer is re-selected by scanning outward via
// LayerAt before the value is computed, so a caller that sets a radius
// crossing a layer boundary still gets the value from whichever layer
// actually contains it. ResolvedLayer reports which layer that was.
func (pos *Position) Value(attr int) (float64, error) {
	if !pos.haveRadius {
		return math.NaN(), &ErrStateError{Reason: "position has no radius set"}
	}
	if err := pos.ensureLayerForRadius(); err != nil {
		return math.NaN(), err
	}
	var sum float64
	for _, vw := range pos.weights {
		p := pos.model.Profile(vw.Vertex, pos.layer)
		nodes := p.RadialNodes(pos.radius, pos.radialMode)
		if len(nodes) == 0 {
			continue
		}
		sum += vw.Weight * p.Value(nodes, attr)
	}
	return sum, nil
}

// ensureLayerForRadius re-selects pos.layer when the current radius falls
// outside the selected layer's horizontally-interpolated interface radii,
// via LayerAt. A radius outside every layer (above the surface, say)
// leaves the originally selected layer in place — Value's result then
// reflects that layer's nearest endpoint, same as before layer crossing
// existed.
func (pos *Position) ensureLayerForRadius() error {
	if err := pos.ensureWeights(); err != nil {
		return err
	}
	bottom, top := pos.InterfaceRadii()
	if pos.radius >= bottom && pos.radius <= top {
		pos.resolvedLayer = pos.layer
		return nil
	}
	l, err := pos.LayerAt(pos.radius)
	if err != nil {
		pos.resolvedLayer = pos.layer
		return nil
	}
	pos.SetLayer(l)
	pos.resolvedLayer = l
	return pos.ensureWeights()
}

// ResolvedLayer returns the index of the layer that actually supplied the
// most recent Value result (-1 before any Value call). When the requested
// radius crossed into a neighboring layer, Value also switches the selected
// layer to it, so after Value this equals Layer().
func (pos *Position) ResolvedLayer() int { return pos.resolvedLayer }

// Weights exposes the current horizontal interpolation weights, chiefly for
// tests and for callers implementing bulk operations (e.g. PathUncertainty)
// that need the same vertex set Value used.
func (pos *Position) Weights() ([]VertexWeight, error) {
	if err := pos.ensureWeights(); err != nil {
		return nil, err
	}
	return pos.weights, nil
}

// LayerAt returns the index of the layer containing radius r at the
// Position's current location, by scanning layers' interpolated interface
// radii bottom-up. Returns ErrNotFound if no layer contains r.
func (pos *Position) LayerAt(r float64) (int, error) {
	nl := pos.model.Metadata().NumLayers()
	savedLayer := pos.layer
	savedValid := pos.weightsValid
	savedTess := pos.weightsTess
	savedWeights := pos.weights
	defer func() {
		pos.layer = savedLayer
		pos.weightsValid = savedValid
		pos.weightsTess = savedTess
		pos.weights = savedWeights
	}()

	for l := 0; l < nl; l++ {
		pos.SetLayer(l)
		bottom, top := pos.InterfaceRadii()
		if r >= bottom && r <= top {
			return l, nil
		}
	}
	return -1, &ErrNotFound{Subject: "layer containing radius"}
}
