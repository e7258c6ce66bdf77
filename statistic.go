package localreg

// Statistic is the per-node cached state of the dual-tree engine: the moment
// sufficient statistics over the node's reference points (an average moment
// matrix and a weighted average moment vector), plus the node's postponed
// contributions and its summary bound envelope.
//
// The moment containers are (D+1)-sized with row/column 0 reserved for the
// intercept term: AverageInfo(0,0) averages 1, AverageInfo(0,j)=AverageInfo(j,0)
// averages x_j, AverageInfo(i,j) averages x_i*x_j, WeightedAverageInfo(0)
// averages w and WeightedAverageInfo(j) averages w*x_j.
type Statistic struct {
	AverageInfo         MeanVariancePairMatrix
	WeightedAverageInfo MeanVariancePairVector
	Postponed           Postponed
	Summary             Summary
}

// InitFromPoints initializes the statistic by scanning the raw points owned
// by the node, then zeroes the node's postponed and summary state.
func (s *Statistic) InitFromPoints(t *Tree, node int) {
	dims := t.Table().NumFeatures()

	s.AverageInfo.Init(dims+1, dims+1)
	s.WeightedAverageInfo.Init(dims + 1)

	t.ForEachPoint(node, func(point []float64, _ int, weight float64) {
		s.AverageInfo.At(0, 0).Push(1)
		s.WeightedAverageInfo.At(0).Push(weight)
		for j := 1; j <= dims; j++ {
			xj := point[j-1]
			// Row and column updates keep the matrix symmetric.
			s.AverageInfo.At(0, j).Push(xj)
			s.AverageInfo.At(j, 0).Push(xj)
			s.WeightedAverageInfo.At(j).Push(weight * xj)
			for i := 1; i <= dims; i++ {
				s.AverageInfo.At(i, j).Push(point[i-1] * xj)
			}
		}
	})

	s.Postponed.Init(dims)
	s.Summary.Init(dims)
}

// InitFromChildren initializes the statistic by combining two already-built
// child statistics element-wise, without re-scanning raw points, then zeroes
// the node's postponed and summary state. Combination is associative and
// commutative, so subtrees may be merged in any order.
func (s *Statistic) InitFromChildren(dims int, left, right *Statistic) {
	s.AverageInfo.Init(dims+1, dims+1)
	s.WeightedAverageInfo.Init(dims + 1)

	s.AverageInfo.CombineWith(&left.AverageInfo)
	s.AverageInfo.CombineWith(&right.AverageInfo)
	s.WeightedAverageInfo.CombineWith(&left.WeightedAverageInfo)
	s.WeightedAverageInfo.CombineWith(&right.WeightedAverageInfo)

	s.Postponed.Init(dims)
	s.Summary.Init(dims)
}

// SetZero resets the node's postponed and summary state, leaving the cached
// moment statistics intact. Called before every traversal.
func (s *Statistic) SetZero() {
	s.Postponed.SetZero()
	s.Summary.SetZero()
}

// Seed resets the node's traversal state and seeds the summary with an
// initial pruned count (supports warm-starting from a prior estimate).
func (s *Statistic) Seed(initialPruned float64) {
	s.Postponed.SetZero()
	s.Summary.Seed(initialPruned)
}
