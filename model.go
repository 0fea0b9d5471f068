package geotess

import "fmt"

// Metadata carries a Model's descriptive and structural information: names,
// units, attribute type, layer structure, and the layer→tessellation map.
type Metadata struct {
	Description       string
	AttributeNames    []string
	AttributeUnits    []string
	AttributeType     AttributeType
	LayerNames        []string
	LayerTessellation []int // layerTessId: layer index -> tessellation index
	SoftwareVersion   string
	GenerationDate    string
}

// NumAttributes returns the declared number of attributes Na.
func (m Metadata) NumAttributes() int { return len(m.AttributeNames) }

// NumLayers returns the declared number of layers NL.
func (m Metadata) NumLayers() int { return len(m.LayerNames) }

// Model composes a Grid with a 2D Profile table. A Model
// exclusively owns its Profiles; many Models may share one Grid via
// GridCatalog.
type Model struct {
	grid     *Grid
	metadata Metadata
	profiles [][]*Profile // profiles[v][layer]

	pointMap *PointMap // lazily built, cached
}

// NewModel constructs a Model from a Grid, metadata, and a fully populated
// Nv×NL Profile table. The caller retains ownership of grid (NewModel does
// not call Grid.retain(); use GridCatalog.Get when sharing is desired).
func NewModel(grid *Grid, metadata Metadata, profiles [][]*Profile) (*Model, error) {
	if len(profiles) != grid.NumVertices() {
		return nil, &ErrInvalidArgument{Reason: fmt.Sprintf("profiles has %d rows, grid has %d vertices", len(profiles), grid.NumVertices())}
	}
	nl := metadata.NumLayers()
	for v, row := range profiles {
		if len(row) != nl {
			return nil, &ErrInvalidArgument{Reason: fmt.Sprintf("vertex %d has %d layers, metadata declares %d", v, len(row), nl)}
		}
	}
	return &Model{grid: grid, metadata: metadata, profiles: profiles}, nil
}

// Grid returns the model's Grid.
func (m *Model) Grid() *Grid { return m.grid }

// Metadata returns the model's metadata.
func (m *Model) Metadata() Metadata { return m.metadata }

// Profile returns the Profile stack at (vertex, layer).
func (m *Model) Profile(v, layer int) *Profile { return m.profiles[v][layer] }

// SetProfile replaces the Profile stack at (vertex, layer). Bulk mutation
// through this method must not run concurrently with an active Position,
// and invalidates the model's cached PointMap.
func (m *Model) SetProfile(v, layer int, p *Profile) {
	m.profiles[v][layer] = p
	m.pointMap = nil
}

// RadiusBottom and RadiusTop return the layer's interface radii at vertex v,
// derived from the Profile's endpoints.
func (m *Model) RadiusBottom(v, layer int) float64 { return m.profiles[v][layer].RadiusBottom() }
func (m *Model) RadiusTop(v, layer int) float64    { return m.profiles[v][layer].RadiusTop() }

// NPoints returns the sum, over all Profiles, of the number of radial
// active nodes.
func (m *Model) NPoints() int {
	total := 0
	for _, row := range m.profiles {
		for _, p := range row {
			total += p.NumActiveNodes()
		}
	}
	return total
}

// PointMap returns the model's flattened point addressing, building and
// caching it on first call.
func (m *Model) PointMap() *PointMap {
	if m.pointMap == nil {
		m.pointMap = newPointMap(m)
	}
	return m.pointMap
}

// Equal reports whether two models are equal: Grid IDs
// match, metadata matches, and every Profile is equal node-for-node.
func (m *Model) Equal(o *Model) bool {
	if m.grid.GridID() != o.grid.GridID() {
		return false
	}
	if !metadataEqual(m.metadata, o.metadata) {
		return false
	}
	if len(m.profiles) != len(o.profiles) {
		return false
	}
	for v := range m.profiles {
		if len(m.profiles[v]) != len(o.profiles[v]) {
			return false
		}
		for l := range m.profiles[v] {
			if !profilesEqual(m.profiles[v][l], o.profiles[v][l]) {
				return false
			}
		}
	}
	return true
}

func metadataEqual(a, b Metadata) bool {
	if a.AttributeType != b.AttributeType || len(a.AttributeNames) != len(b.AttributeNames) {
		return false
	}
	for i := range a.AttributeNames {
		if a.AttributeNames[i] != b.AttributeNames[i] || a.AttributeUnits[i] != b.AttributeUnits[i] {
			return false
		}
	}
	if len(a.LayerNames) != len(b.LayerNames) {
		return false
	}
	for i := range a.LayerNames {
		if a.LayerNames[i] != b.LayerNames[i] || a.LayerTessellation[i] != b.LayerTessellation[i] {
			return false
		}
	}
	return true
}

func profilesEqual(a, b *Profile) bool {
	if a.typ != b.typ || len(a.radii) != len(b.radii) {
		return false
	}
	for i := range a.radii {
		if absf(a.radii[i]-b.radii[i]) > 1e-6 {
			return false
		}
	}
	if len(a.data) != len(b.data) {
		return false
	}
	for i := range a.data {
		if !a.data[i].Equal(b.data[i]) {
			return false
		}
	}
	return true
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
