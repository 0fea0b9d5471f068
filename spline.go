package geotess

// splineCoefficients holds, for a Profile's radii, the n×n linear map from
// sample values to second derivatives of the natural cubic spline: y2 = W·y.
// Because the map depends only on the radii (not the attribute values), one
// matrix serves every attribute of the profile.
type splineCoefficients struct {
	n int
	w [][]float64 // w[i][k]: contribution of sample k to second derivative at node i
}

// cubicSplineNodes returns every node of the stack with the weight
// contributed by the natural cubic spline evaluated at r: CUBIC_SPLINE
// emits all nodes of the stack with coefficients from the natural spline.
// Nodes whose resulting weight is exactly zero are omitted from the
// returned slice; the remaining weights still sum to 1.
//
// The weight matrix is computed once per Profile instance, guarded by
// splineOnce and cached on the Profile itself (splineCoefs) rather than in
// a shared cache keyed by Profile identity: every lookup for a given *Profile
// happens after that instance's own sync.Once has already fired, so a
// separate cache keyed the same way could never register a hit. Profiles
// are never mutated in place once their radii are set (a mutation
// constructs a new Profile), so this per-instance cache is never
// invalidated mid-flight.
func (p *Profile) cubicSplineNodes(r float64) []RadialNode {
	p.splineOnce.Do(func() {
		p.splineCoefs = buildSplineWeightMatrix(p.radii)
	})

	n := len(p.radii)
	i := splineSegment(p.radii, r)
	h := p.radii[i+1] - p.radii[i]
	a := (p.radii[i+1] - r) / h
	b := (r - p.radii[i]) / h
	cA := (a*a*a - a) * h * h / 6
	cB := (b*b*b - b) * h * h / 6

	weights := make([]float64, n)
	weights[i] += a
	weights[i+1] += b
	wi, wi1 := p.splineCoefs.w[i], p.splineCoefs.w[i+1]
	for k := 0; k < n; k++ {
		weights[k] += cA*wi[k] + cB*wi1[k]
	}

	nodes := make([]RadialNode, 0, n)
	for k, w := range weights {
		if w != 0 {
			nodes = append(nodes, RadialNode{Index: k, Weight: w})
		}
	}
	return nodes
}

func splineSegment(radii []float64, r float64) int {
	lo, hi := 0, len(radii)-1
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if radii[mid] <= r {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// buildSplineWeightMatrix solves, for each unit basis vector e_k (a profile
// whose data is 1 at node k and 0 elsewhere), the standard natural-cubic-
// spline tridiagonal system for the second-derivative array. Column k of the
// resulting n×n matrix is that solve's output, so row i gives the weight of
// every sample k in the second derivative at node i — a pure function of the
// radii, independent of the actual attribute values, which is why one matrix
// serves every attribute of the profile.
func buildSplineWeightMatrix(radii []float64) *splineCoefficients {
	n := len(radii)
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
	}
	if n < 3 {
		return &splineCoefficients{n: n, w: w}
	}

	for k := 0; k < n; k++ {
		y2 := solveNaturalSpline(radii, k)
		for i := 0; i < n; i++ {
			w[i][k] = y2[i]
		}
	}
	return &splineCoefficients{n: n, w: w}
}

// solveNaturalSpline computes the second-derivative array for the natural
// cubic spline through samples y where y[basisIndex]=1 and all other samples
// are 0, via the textbook tridiagonal forward/back substitution.
func solveNaturalSpline(radii []float64, basisIndex int) []float64 {
	n := len(radii)
	y2 := make([]float64, n)
	u := make([]float64, n)

	sample := func(i int) float64 {
		if i == basisIndex {
			return 1
		}
		return 0
	}

	for i := 1; i < n-1; i++ {
		sig := (radii[i] - radii[i-1]) / (radii[i+1] - radii[i-1])
		p := sig*y2[i-1] + 2
		y2[i] = (sig - 1) / p
		du := (sample(i+1)-sample(i))/(radii[i+1]-radii[i]) - (sample(i)-sample(i-1))/(radii[i]-radii[i-1])
		u[i] = (6*du/(radii[i+1]-radii[i-1]) - sig*u[i-1]) / p
	}
	for k := n - 2; k >= 0; k-- {
		y2[k] = y2[k]*y2[k+1] + u[k]
	}
	return y2
}
