package localreg

import "math"

// Summary is a query node's running bound envelope: element-wise lower and
// upper bounds (plain numbers, not accumulators) on the left and right hand
// side sums over all contributions already processed or postponed for every
// query under the node, plus the minimum pruned count and maximum used error
// seen across those queries. The pruning predicate reads only this envelope
// and the candidate delta.
type Summary struct {
	rows int

	// LeftHandSideL/LeftHandSideU are (D+1)×(D+1) row-major bound matrices.
	LeftHandSideL []float64
	LeftHandSideU []float64

	// RightHandSideL/RightHandSideU are length-(D+1) bound vectors.
	RightHandSideL []float64
	RightHandSideU []float64

	// PrunedL is the minimum effective pruned count over the node's queries.
	PrunedL float64

	// UsedErrorU is the maximum error bound spent over the node's queries.
	UsedErrorU float64
}

// summaryDenominatorGuard is the tolerance below which the remaining-mass
// denominator of the pruning predicate is treated as exhausted. The
// denominator only approaches zero once nearly all reference mass has been
// pruned, at which point the remaining budget is compared directly.
const summaryDenominatorGuard = 1e-8

// NewSummary allocates a zeroed Summary for D-dimensional points.
func NewSummary(dims int) *Summary {
	s := &Summary{}
	s.Init(dims)
	return s
}

// Init sizes the bound arrays for D-dimensional points and zeroes everything.
func (s *Summary) Init(dims int) {
	s.rows = dims + 1
	s.LeftHandSideL = make([]float64, s.rows*s.rows)
	s.LeftHandSideU = make([]float64, s.rows*s.rows)
	s.RightHandSideL = make([]float64, s.rows)
	s.RightHandSideU = make([]float64, s.rows)
	s.PrunedL = 0
	s.UsedErrorU = 0
}

// SetZero resets the envelope.
func (s *Summary) SetZero() {
	for i := range s.LeftHandSideL {
		s.LeftHandSideL[i] = 0
		s.LeftHandSideU[i] = 0
	}
	for i := range s.RightHandSideL {
		s.RightHandSideL[i] = 0
		s.RightHandSideU[i] = 0
	}
	s.PrunedL = 0
	s.UsedErrorU = 0
}

// Seed resets the envelope and installs an initial pruned count.
func (s *Summary) Seed(initialPruned float64) {
	s.SetZero()
	s.PrunedL = initialPruned
}

// StartReaccumulate prepares the envelope for a min/max refold from child or
// per-query state: lower bounds start at +Inf, upper bounds at -Inf.
func (s *Summary) StartReaccumulate() {
	for i := range s.LeftHandSideL {
		s.LeftHandSideL[i] = math.Inf(1)
		s.LeftHandSideU[i] = math.Inf(-1)
	}
	for i := range s.RightHandSideL {
		s.RightHandSideL[i] = math.Inf(1)
		s.RightHandSideU[i] = math.Inf(-1)
	}
	s.PrunedL = math.Inf(1)
	s.UsedErrorU = 0
}

// AccumulateResult folds one query's accumulated result state into a
// reaccumulating envelope: element-wise min of lower bounds, max of upper
// bounds, min of pruned counts, max of used error. A monotone contraction of
// the envelope, never an expansion.
func (s *Summary) AccumulateResult(res *Result, qIndex int) {
	pruned := res.Pruned[qIndex]
	for j := 0; j < s.rows; j++ {
		s.RightHandSideL[j] = math.Min(s.RightHandSideL[j],
			res.RightHandSideL[qIndex].At(j).SampleMean()*pruned)
		s.RightHandSideU[j] = math.Max(s.RightHandSideU[j],
			res.RightHandSideU[qIndex].At(j).SampleMean()*pruned)
		for i := 0; i < s.rows; i++ {
			cell := i*s.rows + j
			s.LeftHandSideL[cell] = math.Min(s.LeftHandSideL[cell],
				res.LeftHandSideL[qIndex].At(i, j).SampleMean()*pruned)
			s.LeftHandSideU[cell] = math.Max(s.LeftHandSideU[cell],
				res.LeftHandSideU[qIndex].At(i, j).SampleMean()*pruned)
		}
	}
	s.PrunedL = math.Min(s.PrunedL, pruned)
	s.UsedErrorU = math.Max(s.UsedErrorU, res.UsedError[qIndex])
}

// AccumulateSummary folds a child node's summary together with the child's
// still-unflushed postponed state into a reaccumulating envelope.
func (s *Summary) AccumulateSummary(o *Summary, postponed *Postponed) {
	for j := 0; j < s.rows; j++ {
		s.RightHandSideL[j] = math.Min(s.RightHandSideL[j],
			o.RightHandSideL[j]+postponed.RightHandSideL.At(j).SampleMean()*postponed.Pruned)
		s.RightHandSideU[j] = math.Max(s.RightHandSideU[j],
			o.RightHandSideU[j]+postponed.RightHandSideU.At(j).SampleMean()*postponed.Pruned)
		for i := 0; i < s.rows; i++ {
			cell := i*s.rows + j
			s.LeftHandSideL[cell] = math.Min(s.LeftHandSideL[cell],
				o.LeftHandSideL[cell]+postponed.LeftHandSideL.At(i, j).SampleMean()*postponed.Pruned)
			s.LeftHandSideU[cell] = math.Max(s.LeftHandSideU[cell],
				o.LeftHandSideU[cell]+postponed.LeftHandSideU.At(i, j).SampleMean()*postponed.Pruned)
		}
	}
	s.PrunedL = math.Min(s.PrunedL, o.PrunedL+postponed.Pruned)
	s.UsedErrorU = math.Max(s.UsedErrorU, o.UsedErrorU+postponed.UsedError)
}

// ApplyDelta folds a just-pruned delta into the envelope: the chunk's bounds
// are added to the running lower/upper sums, its mass to the pruned count,
// and its error to the spent error. Called exactly when the corresponding
// Postponed.ApplyDelta is.
func (s *Summary) ApplyDelta(d *Delta) {
	for j := 0; j < s.rows; j++ {
		s.RightHandSideL[j] += d.RightHandSideL.At(j).SampleMean() * d.Pruned
		s.RightHandSideU[j] += d.RightHandSideU.At(j).SampleMean() * d.Pruned
		for i := 0; i < s.rows; i++ {
			cell := i*s.rows + j
			s.LeftHandSideL[cell] += d.LeftHandSideL.At(i, j).SampleMean() * d.Pruned
			s.LeftHandSideU[cell] += d.LeftHandSideU.At(i, j).SampleMean() * d.Pruned
		}
	}
	s.PrunedL += d.Pruned
	s.UsedErrorU += d.UsedError
}

// CanSummarize is the finite-difference pruning predicate: it reports whether
// the candidate delta approximates its reference node tightly enough to stay
// within the error contract for every query under the node.
//
// The budget is the relative tolerance scaled by a lower bound on the total
// contribution magnitude plus the absolute tolerance scaled by the effective
// reference count, minus error already spent; it is allocated to the
// candidate reference node in proportion to its share of the not-yet-pruned
// reference mass. The lower bound counts both the envelope's accumulated
// lower bounds and the candidate delta's own lower bound — the candidate
// chunk is disjoint from all mass the envelope has absorbed.
//
// This is a sufficient, not necessary, condition: returning false merely
// forces recursion, while returning true must never violate the contract.
// When nearly all reference mass has been pruned the proportional-share
// denominator vanishes; the remaining budget is then compared directly
// instead of dividing by it.
func (s *Summary) CanSummarize(g *Global, d *Delta, refCount int) bool {
	lowerBoundL1 := 0.0
	for j := 0; j < s.rows; j++ {
		lowerBoundL1 += s.RightHandSideL[j] + d.RightHandSideL.At(j).SampleMean()*d.Pruned
		for i := 0; i < s.rows; i++ {
			lowerBoundL1 += s.LeftHandSideL[i*s.rows+j] + d.LeftHandSideL.At(i, j).SampleMean()*d.Pruned
		}
	}

	effective := g.EffectiveNumReferencePoints()
	numerator := g.RelativeError()*lowerBoundL1 + effective*g.AbsoluteError() - s.UsedErrorU
	denominator := effective - s.PrunedL

	if denominator <= summaryDenominatorGuard {
		return d.UsedError <= math.Max(numerator, 0)
	}
	return d.UsedError <= float64(refCount)*numerator/denominator
}
