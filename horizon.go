package geotess

// HorizonKind selects how a Horizon's radial position is specified.
type HorizonKind int

const (
	// HorizonDepth specifies a depth below sea level, in km.
	HorizonDepth HorizonKind = iota
	// HorizonRadius specifies a radius from the Earth's centre, in km.
	HorizonRadius
	// HorizonLayerFraction specifies a fractional position within a named
	// layer: 0 at the layer bottom, 1 at the layer top.
	HorizonLayerFraction
)

// VertexContext is the information a Horizon needs to resolve its radius at
// a specific vertex: the model and the vertex index. The layer a
// HorizonLayerFraction refers to is carried by the Horizon itself.
type VertexContext struct {
	Model  *Model
	Vertex int
}

// Horizon specifies a radial position independent of grid vertex, via one of
// three kinds, optionally constrained to a layer.
type Horizon struct {
	kind     HorizonKind
	value    float64 // depth km, radius km, or fraction [0,1]
	layer    int     // layer index, meaningful for HorizonLayerFraction and as an optional constraint otherwise
	hasLayer bool
}

// NewDepthHorizon returns a Horizon specifying a fixed depth below sea level.
func NewDepthHorizon(depthKm float64) Horizon {
	return Horizon{kind: HorizonDepth, value: depthKm}
}

// NewRadiusHorizon returns a Horizon specifying a fixed radius from centre.
func NewRadiusHorizon(radiusKm float64) Horizon {
	return Horizon{kind: HorizonRadius, value: radiusKm}
}

// NewLayerFractionHorizon returns a Horizon specifying a fractional position
// within the given layer (0 = layer bottom, 1 = layer top).
func NewLayerFractionHorizon(layer int, fraction float64) Horizon {
	return Horizon{kind: HorizonLayerFraction, value: fraction, layer: layer, hasLayer: true}
}

// WithLayerConstraint returns a copy of h with its layer set to the given
// layer. For HorizonLayerFraction this selects the layer GetRadius reads
// interface radii from. For HorizonDepth/HorizonRadius GetRadius does not
// use the layer: the radius is not clamped to that layer's interfaces.
func (h Horizon) WithLayerConstraint(layer int) Horizon {
	h.layer = layer
	h.hasLayer = true
	return h
}

// GetRadius resolves this Horizon to a radius in km at the given vertex
// context.
func (h Horizon) GetRadius(ctx VertexContext) (float64, error) {
	switch h.kind {
	case HorizonRadius:
		return h.value, nil
	case HorizonDepth:
		v := ctx.Model.Grid().Vertex(int32(ctx.Vertex))
		return ctx.Model.Grid().Shape().EarthRadius(v) - h.value, nil
	case HorizonLayerFraction:
		if !h.hasLayer {
			return 0, &ErrInvalidArgument{Reason: "layer-fraction horizon requires a layer"}
		}
		bottom := ctx.Model.RadiusBottom(ctx.Vertex, h.layer)
		top := ctx.Model.RadiusTop(ctx.Vertex, h.layer)
		return bottom + h.value*(top-bottom), nil
	default:
		return 0, &ErrInvalidArgument{Reason: "unknown horizon kind"}
	}
}

// ActivePredicate marks which (vertex, layer, node) points are "active":
// inside the optional Polygon and between two Horizon surfaces. A nil
// Polygon means "no spatial constraint" (every vertex passes the
// containment test).
type ActivePredicate struct {
	Shape   Shape
	Polygon *Polygon
	Lower   Horizon
	Upper   Horizon
}

// IsActive reports whether the point identified by (vertex, radius) passes
// the predicate.
func (a ActivePredicate) IsActive(model *Model, vertex int, radius float64) bool {
	if a.Polygon != nil {
		v := model.Grid().Vertex(int32(vertex))
		if !a.Polygon.Contains(a.Shape, v) {
			return false
		}
	}
	ctx := VertexContext{Model: model, Vertex: vertex}
	lower, err := a.Lower.GetRadius(ctx)
	if err != nil {
		return false
	}
	upper, err := a.Upper.GetRadius(ctx)
	if err != nil {
		return false
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return radius >= lower && radius <= upper
}
