package localreg

// Result holds the per-query accumulator state and, after post-processing,
// the final predictions. Each query carries lower, estimate, and upper
// accumulators for the left hand side Gram matrix and right hand side vector,
// a pruned count, and the error bound spent on its behalf.
type Result struct {
	rows       int
	numQueries int

	LeftHandSideL []MeanVariancePairMatrix
	LeftHandSideE []MeanVariancePairMatrix
	LeftHandSideU []MeanVariancePairMatrix

	RightHandSideL []MeanVariancePairVector
	RightHandSideE []MeanVariancePairVector
	RightHandSideU []MeanVariancePairVector

	Pruned    []float64
	UsedError []float64

	// Predictions is filled by post-processing: one regression value per
	// query point.
	Predictions []float64

	// Coefficients is filled by post-processing: the fitted local
	// coefficients per query, intercept first.
	Coefficients [][]float64
}

// NewResult allocates accumulator state for numQueries queries over
// D-dimensional points.
func NewResult(dims, numQueries int) *Result {
	res := &Result{}
	res.Init(dims, numQueries)
	return res
}

// Init sizes and zeroes the per-query state.
func (res *Result) Init(dims, numQueries int) {
	res.rows = dims + 1
	res.numQueries = numQueries

	res.LeftHandSideL = make([]MeanVariancePairMatrix, numQueries)
	res.LeftHandSideE = make([]MeanVariancePairMatrix, numQueries)
	res.LeftHandSideU = make([]MeanVariancePairMatrix, numQueries)
	res.RightHandSideL = make([]MeanVariancePairVector, numQueries)
	res.RightHandSideE = make([]MeanVariancePairVector, numQueries)
	res.RightHandSideU = make([]MeanVariancePairVector, numQueries)
	for q := 0; q < numQueries; q++ {
		res.LeftHandSideL[q].Init(res.rows, res.rows)
		res.LeftHandSideE[q].Init(res.rows, res.rows)
		res.LeftHandSideU[q].Init(res.rows, res.rows)
		res.RightHandSideL[q].Init(res.rows)
		res.RightHandSideE[q].Init(res.rows)
		res.RightHandSideU[q].Init(res.rows)
	}

	res.Pruned = make([]float64, numQueries)
	res.UsedError = make([]float64, numQueries)
	res.Predictions = make([]float64, numQueries)
	res.Coefficients = make([][]float64, numQueries)
}

// Seed installs an initial pruned count for one query.
func (res *Result) Seed(qIndex int, initialPruned float64) {
	res.Pruned[qIndex] = initialPruned
}

// ApplyPostponed folds flushed postponed state into one query's accumulators.
func (res *Result) ApplyPostponed(p *Postponed, qIndex int) {
	res.LeftHandSideL[qIndex].CombineWith(&p.LeftHandSideL)
	res.LeftHandSideE[qIndex].CombineWith(&p.LeftHandSideE)
	res.LeftHandSideU[qIndex].CombineWith(&p.LeftHandSideU)
	res.RightHandSideL[qIndex].CombineWith(&p.RightHandSideL)
	res.RightHandSideE[qIndex].CombineWith(&p.RightHandSideE)
	res.RightHandSideU[qIndex].CombineWith(&p.RightHandSideU)
	res.Pruned[qIndex] += p.Pruned
	res.UsedError[qIndex] += p.UsedError
}

// ApplyContribution pushes one exact reference term into a query's
// accumulators. The exact kernel value enters all three of the lower,
// estimate, and upper accumulators, keeping the bound envelope tight for
// directly computed terms.
func (res *Result) ApplyContribution(g *Global, qIndex int, queryPoint, referencePoint []float64, referenceWeight float64) {
	kv := g.Kernel().EvalUnnormOnSq(g.Metric().DistanceSq(queryPoint, referencePoint))

	for j := 0; j < res.rows; j++ {
		xj := 1.0
		if j > 0 {
			xj = referencePoint[j-1]
		}
		res.RightHandSideL[qIndex].At(j).Push(kv * referenceWeight * xj)
		res.RightHandSideE[qIndex].At(j).Push(kv * referenceWeight * xj)
		res.RightHandSideU[qIndex].At(j).Push(kv * referenceWeight * xj)
		for i := 0; i < res.rows; i++ {
			xi := 1.0
			if i > 0 {
				xi = referencePoint[i-1]
			}
			res.LeftHandSideL[qIndex].At(i, j).Push(kv * xi * xj)
			res.LeftHandSideE[qIndex].At(i, j).Push(kv * xi * xj)
			res.LeftHandSideU[qIndex].At(i, j).Push(kv * xi * xj)
		}
	}
	res.Pruned[qIndex]++
}

// Moments extracts one query's midpoint estimates as plain arrays for the
// least-squares solve: a row-major (D+1)×(D+1) matrix and a length-(D+1)
// vector of weighted sums. In a monochromatic run the query's own k(0)
// self term is subtracted exactly once here.
func (res *Result) Moments(g *Global, qIndex int) (lhs, rhs []float64) {
	pruned := res.Pruned[qIndex]
	lhs = make([]float64, res.rows*res.rows)
	rhs = make([]float64, res.rows)
	for j := 0; j < res.rows; j++ {
		rhs[j] = res.RightHandSideE[qIndex].At(j).SampleMean() * pruned
		for i := 0; i < res.rows; i++ {
			lhs[i*res.rows+j] = res.LeftHandSideE[qIndex].At(i, j).SampleMean() * pruned
		}
	}

	if g.IsMonochromatic() {
		k0 := g.Kernel().EvalUnnormOnSq(0)
		point := g.QueryTable().Point(qIndex)
		weight := g.QueryTable().Weight(qIndex)
		for j := 0; j < res.rows; j++ {
			xj := 1.0
			if j > 0 {
				xj = point[j-1]
			}
			rhs[j] -= k0 * weight * xj
			for i := 0; i < res.rows; i++ {
				xi := 1.0
				if i > 0 {
					xi = point[i-1]
				}
				lhs[i*res.rows+j] -= k0 * xi * xj
			}
		}
	}
	return lhs, rhs
}
