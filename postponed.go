package localreg

// Postponed holds contributions that have been accounted to a query node but
// not yet pushed down to its children or flushed into per-query results:
// lower/estimate/upper moment structures for both sides of the normal
// equations, the effective count of reference points already covered, and an
// upper bound on the approximation error incurred for that mass.
//
// Every operation strictly accumulates; nothing ever subtracts except
// SetZero. Combination is associative and commutative, so postponed state
// can be deferred, merged, and flushed in any traversal order.
type Postponed struct {
	LeftHandSideL  MeanVariancePairMatrix
	LeftHandSideE  MeanVariancePairMatrix
	LeftHandSideU  MeanVariancePairMatrix
	RightHandSideL MeanVariancePairVector
	RightHandSideE MeanVariancePairVector
	RightHandSideU MeanVariancePairVector

	// Pruned is the effective number of reference points this postponed
	// state already accounts for.
	Pruned float64

	// UsedError is an upper bound on the approximation error incurred for
	// the pruned mass.
	UsedError float64
}

// NewPostponed allocates a zeroed Postponed for D-dimensional points.
func NewPostponed(dims int) *Postponed {
	p := &Postponed{}
	p.Init(dims)
	return p
}

// Init sizes the moment structures for D-dimensional points and zeroes
// everything.
func (p *Postponed) Init(dims int) {
	p.LeftHandSideL.Init(dims+1, dims+1)
	p.LeftHandSideE.Init(dims+1, dims+1)
	p.LeftHandSideU.Init(dims+1, dims+1)
	p.RightHandSideL.Init(dims + 1)
	p.RightHandSideE.Init(dims + 1)
	p.RightHandSideU.Init(dims + 1)
	p.Pruned = 0
	p.UsedError = 0
}

// SetZero resets everything.
func (p *Postponed) SetZero() {
	p.LeftHandSideL.SetZero()
	p.LeftHandSideE.SetZero()
	p.LeftHandSideU.SetZero()
	p.RightHandSideL.SetZero()
	p.RightHandSideE.SetZero()
	p.RightHandSideU.SetZero()
	p.Pruned = 0
	p.UsedError = 0
}

// ApplyDelta folds a computed node-pair delta into the postponed state. The
// delta must be applied at most once; deltas are single-use objects.
func (p *Postponed) ApplyDelta(d *Delta) {
	p.LeftHandSideL.CombineWith(&d.LeftHandSideL)
	p.LeftHandSideE.CombineWith(&d.LeftHandSideE)
	p.LeftHandSideU.CombineWith(&d.LeftHandSideU)
	p.RightHandSideL.CombineWith(&d.RightHandSideL)
	p.RightHandSideE.CombineWith(&d.RightHandSideE)
	p.RightHandSideU.CombineWith(&d.RightHandSideU)
	p.Pruned += d.Pruned
	p.UsedError += d.UsedError
}

// ApplyPostponed folds another postponed state into p.
func (p *Postponed) ApplyPostponed(o *Postponed) {
	p.LeftHandSideL.CombineWith(&o.LeftHandSideL)
	p.LeftHandSideE.CombineWith(&o.LeftHandSideE)
	p.LeftHandSideU.CombineWith(&o.LeftHandSideU)
	p.RightHandSideL.CombineWith(&o.RightHandSideL)
	p.RightHandSideE.CombineWith(&o.RightHandSideE)
	p.RightHandSideU.CombineWith(&o.RightHandSideU)
	p.Pruned += o.Pruned
	p.UsedError += o.UsedError
}

