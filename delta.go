package localreg

import "math"

// Delta is the bounded contribution of one reference node to one query node,
// computed once per visited node pair from the kernel value range implied by
// the pair's squared-distance range and the reference node's cached moment
// averages. A delta is a fresh, single-use object: computed, consumed by
// ApplyDelta on the postponed/summary it targets, and discarded.
type Delta struct {
	LeftHandSideL  MeanVariancePairMatrix
	LeftHandSideE  MeanVariancePairMatrix
	LeftHandSideU  MeanVariancePairMatrix
	RightHandSideL MeanVariancePairVector
	RightHandSideE MeanVariancePairVector
	RightHandSideU MeanVariancePairVector

	// Pruned is the reference node's point count.
	Pruned float64

	// UsedError is the worst-case additional error approximating the pair
	// by this delta would incur: half the maximum cell-wise deviation
	// between the upper and lower bounds.
	UsedError float64
}

// NewDelta allocates a zeroed Delta for D-dimensional points.
func NewDelta(dims int) *Delta {
	d := &Delta{}
	d.LeftHandSideL.Init(dims+1, dims+1)
	d.LeftHandSideE.Init(dims+1, dims+1)
	d.LeftHandSideU.Init(dims+1, dims+1)
	d.RightHandSideL.Init(dims + 1)
	d.RightHandSideE.Init(dims + 1)
	d.RightHandSideU.Init(dims + 1)
	return d
}

// InitExactPrune prepares the delta for an extrinsic (exact-zero) prune of a
// reference node with refCount points: zero moments covering refCount terms
// and zero used error.
func (d *Delta) InitExactPrune(refCount int) {
	n := float64(refCount)
	d.LeftHandSideL.SetZero()
	d.LeftHandSideE.SetZero()
	d.LeftHandSideU.SetZero()
	d.RightHandSideL.SetZero()
	d.RightHandSideE.SetZero()
	d.RightHandSideU.SetZero()
	d.LeftHandSideL.SetTotalNumTerms(n)
	d.LeftHandSideE.SetTotalNumTerms(n)
	d.LeftHandSideU.SetTotalNumTerms(n)
	d.RightHandSideL.SetTotalNumTerms(n)
	d.RightHandSideE.SetTotalNumTerms(n)
	d.RightHandSideU.SetTotalNumTerms(n)
	d.Pruned = n
	d.UsedError = 0
}

// DeterministicCompute fills the delta for a (query node, reference node)
// pair from the pair's squared-distance range and the reference node's
// cached statistic. The kernel is monotone non-increasing in squared
// distance, so the far end of the range gives the smaller kernel value and
// the near end the larger. Each cell's bounds bracket the cell's true
// average contribution regardless of the sign of the cached moment.
func (d *Delta) DeterministicCompute(g *Global, refStat *Statistic, refCount int, sqRange SqRange) {
	lowerKernel := g.Kernel().EvalUnnormOnSq(sqRange.Hi)
	upperKernel := g.Kernel().EvalUnnormOnSq(sqRange.Lo)
	midKernel := 0.5 * (lowerKernel + upperKernel)
	n := float64(refCount)

	maxDeviation := 0.0

	rows := refStat.AverageInfo.Rows()
	for j := 0; j < rows; j++ {
		for i := 0; i < rows; i++ {
			m := refStat.AverageInfo.At(i, j).SampleMean()
			lo, hi := boundProducts(lowerKernel, upperKernel, m)
			d.LeftHandSideL.At(i, j).SetZero()
			d.LeftHandSideE.At(i, j).SetZero()
			d.LeftHandSideU.At(i, j).SetZero()
			d.LeftHandSideL.At(i, j).Push(lo)
			d.LeftHandSideE.At(i, j).Push(midKernel * m)
			d.LeftHandSideU.At(i, j).Push(hi)
			if hi-lo > maxDeviation {
				maxDeviation = hi - lo
			}
		}

		m := refStat.WeightedAverageInfo.At(j).SampleMean()
		lo, hi := boundProducts(lowerKernel, upperKernel, m)
		d.RightHandSideL.At(j).SetZero()
		d.RightHandSideE.At(j).SetZero()
		d.RightHandSideU.At(j).SetZero()
		d.RightHandSideL.At(j).Push(lo)
		d.RightHandSideE.At(j).Push(midKernel * m)
		d.RightHandSideU.At(j).Push(hi)
		if hi-lo > maxDeviation {
			maxDeviation = hi - lo
		}
	}

	d.LeftHandSideL.SetTotalNumTerms(n)
	d.LeftHandSideE.SetTotalNumTerms(n)
	d.LeftHandSideU.SetTotalNumTerms(n)
	d.RightHandSideL.SetTotalNumTerms(n)
	d.RightHandSideE.SetTotalNumTerms(n)
	d.RightHandSideU.SetTotalNumTerms(n)

	d.Pruned = n
	d.UsedError = 0.5 * maxDeviation
}

// boundProducts returns the ordered [min, max] of lowerKernel*m and
// upperKernel*m. For a negative moment the larger kernel value gives the
// smaller product.
func boundProducts(lowerKernel, upperKernel, m float64) (lo, hi float64) {
	a, b := lowerKernel*m, upperKernel*m
	return math.Min(a, b), math.Max(a, b)
}
