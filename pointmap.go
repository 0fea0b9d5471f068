package geotess

// pointEntry identifies one flattened (vertex, layer, radialNode) triple,
// the addressing unit a "point" refers to.
type pointEntry struct {
	vertex int
	layer  int
	node   int
}

// PointMap flattens a Model's active cells into a 1D index space, ordered
// outer-to-inner by vertex, then layer ascending, then radial node
// bottom-to-top. It is the addressing scheme I/O and bulk
// tomographic updates use; built lazily from Model.PointMap and cached there.
type PointMap struct {
	model   *Model
	entries []pointEntry
	index   map[pointEntry]int
}

func newPointMap(m *Model) *PointMap {
	pm := &PointMap{model: m, index: make(map[pointEntry]int)}
	for v, row := range m.profiles {
		for l, p := range row {
			n := p.NumActiveNodes()
			for node := 0; node < n; node++ {
				e := pointEntry{vertex: v, layer: l, node: node}
				pm.index[e] = len(pm.entries)
				pm.entries = append(pm.entries, e)
			}
		}
	}
	return pm
}

// Size returns the total number of active points.
func (pm *PointMap) Size() int { return len(pm.entries) }

// PointIndex returns the flat index p for (vertex, layer, node).
func (pm *PointMap) PointIndex(vertex, layer, node int) (int, bool) {
	p, ok := pm.index[pointEntry{vertex: vertex, layer: layer, node: node}]
	return p, ok
}

// Of is the inverse of PointIndex: given flat index p, returns (vertex,
// layer, node).
func (pm *PointMap) Of(p int) (vertex, layer, node int) {
	e := pm.entries[p]
	return e.vertex, e.layer, e.node
}

// UnitVector returns the grid unit vector of the vertex owning point p.
func (pm *PointMap) UnitVector(p int) [3]float64 {
	e := pm.entries[p]
	return pm.model.grid.Vertex(int32(e.vertex))
}

// Radius returns the radius, in km, of point p.
func (pm *PointMap) Radius(p int) float64 {
	e := pm.entries[p]
	profile := pm.model.profiles[e.vertex][e.layer]
	return profile.radiusOfNode(e.node)
}

// Depth returns the depth below the local earth radius of point p, using the
// grid's GeodeticShape.
func (pm *PointMap) Depth(p int) float64 {
	e := pm.entries[p]
	v := pm.model.grid.Vertex(int32(e.vertex))
	r := pm.Radius(p)
	return pm.model.grid.Shape().EarthRadius(v) - r
}

// SetValue writes x into attribute attr of the Data tuple addressed by point
// p. Callers must not run this concurrently with an active Position.
func (pm *PointMap) SetValue(p int, attr int, x float64) {
	e := pm.entries[p]
	profile := pm.model.profiles[e.vertex][e.layer]
	profile.data[profile.dataIndexOfNode(e.node)].SetDouble(attr, x)
}

// radiusOfNode maps a 0-based "active node" index (per NumActiveNodes) to
// the profile's stored radius.
func (p *Profile) radiusOfNode(node int) float64 {
	switch p.typ {
	case ProfileThin, ProfileConstant, ProfileSurface:
		return p.radii[0]
	case ProfileNPoint:
		return p.radii[node]
	default:
		return 0
	}
}

// dataIndexOfNode maps a 0-based active node index to the index into
// p.data.
func (p *Profile) dataIndexOfNode(node int) int {
	switch p.typ {
	case ProfileThin, ProfileConstant, ProfileSurface:
		return 0
	case ProfileNPoint:
		return node
	default:
		return 0
	}
}
