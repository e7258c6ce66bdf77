package localreg

// MeanVariancePair tracks a running sample mean and variance using Welford's
// algorithm. It is the atomic unit for every bound and moment kept by the
// dual-tree engine.
//
// A pair can additionally be told how many underlying terms its pushed
// samples represent (SetTotalNumTerms). A single pushed sample may then stand
// for a whole reference chunk (e.g. a node average standing for count points),
// and CombineWith weighs sub-aggregates by their represented term counts.
// The invariant maintained throughout: SampleMean()*TotalNumTerms() is the
// sum the pair represents. SetTotalNumTerms is declared after pushing, never
// before; a push always weighs one new term against the terms already
// represented.
type MeanVariancePair struct {
	count    int
	numTerms float64
	mean     float64
	m2       float64
}

// Push incorporates a new sample representing one term. Pushing into a
// zero-valued pair is always valid. When the pair already represents merged
// chunks the new term is weighed against the represented count, so pushes
// and merges can interleave in any order.
func (p *MeanVariancePair) Push(x float64) {
	total := p.TotalNumTerms() + 1
	delta := x - p.mean
	p.mean += delta / total
	p.m2 += delta * (x - p.mean)
	p.count++
	if p.numTerms > 0 {
		p.numTerms = total
	}
}

// SampleCount returns the number of samples pushed or merged in.
func (p *MeanVariancePair) SampleCount() int { return p.count }

// SampleMean returns the running mean, or 0 if nothing has been pushed.
func (p *MeanVariancePair) SampleMean() float64 { return p.mean }

// SampleVariance returns the sample variance (M2/(n-1)), or 0 for fewer than
// two samples.
func (p *MeanVariancePair) SampleVariance() float64 {
	if p.count < 2 {
		return 0
	}
	return p.m2 / float64(p.count-1)
}

// TotalNumTerms returns the number of terms the pair represents: the
// explicitly set term count if any, otherwise the number of pushed samples.
func (p *MeanVariancePair) TotalNumTerms() float64 {
	if p.numTerms > 0 {
		return p.numTerms
	}
	return float64(p.count)
}

// SetTotalNumTerms declares that the samples pushed into this pair jointly
// represent n underlying terms.
func (p *MeanVariancePair) SetTotalNumTerms(n float64) { p.numTerms = n }

// SetZero resets the pair to its initial empty state.
func (p *MeanVariancePair) SetZero() { *p = MeanVariancePair{} }

// CombineWith merges another pair into p using the parallel-variance merge
// formula, weighting each side by its represented term count. The operation
// is associative and commutative; merging an empty pair is a no-op.
func (p *MeanVariancePair) CombineWith(o *MeanVariancePair) {
	wo := o.TotalNumTerms()
	if wo == 0 {
		return
	}
	wp := p.TotalNumTerms()
	if wp == 0 {
		*p = *o
		return
	}
	total := wp + wo
	delta := o.mean - p.mean
	p.m2 += o.m2 + delta*delta*wp*wo/total
	p.mean += delta * wo / total
	p.count += o.count
	p.numTerms = total
}

// MeanVariancePairMatrix is a dense 2-D container of accumulators. Cells are
// addressed (row, col); the matrix is stored row-major in a flat slice.
type MeanVariancePairMatrix struct {
	rows, cols int
	pairs      []MeanVariancePair
}

// Init sizes the matrix, discarding any previous contents.
func (m *MeanVariancePairMatrix) Init(rows, cols int) {
	m.rows = rows
	m.cols = cols
	m.pairs = make([]MeanVariancePair, rows*cols)
}

// Rows returns the number of rows.
func (m *MeanVariancePairMatrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *MeanVariancePairMatrix) Cols() int { return m.cols }

// At returns the accumulator at (row, col).
func (m *MeanVariancePairMatrix) At(row, col int) *MeanVariancePair {
	return &m.pairs[row*m.cols+col]
}

// SetZero resets every cell.
func (m *MeanVariancePairMatrix) SetZero() {
	for i := range m.pairs {
		m.pairs[i].SetZero()
	}
}

// SetTotalNumTerms declares the represented term count on every cell.
func (m *MeanVariancePairMatrix) SetTotalNumTerms(n float64) {
	for i := range m.pairs {
		m.pairs[i].SetTotalNumTerms(n)
	}
}

// CombineWith merges another matrix element-wise. Both matrices must have the
// same shape.
func (m *MeanVariancePairMatrix) CombineWith(o *MeanVariancePairMatrix) {
	for i := range m.pairs {
		m.pairs[i].CombineWith(&o.pairs[i])
	}
}

// CopyFrom copies another matrix's cells into m, resizing if needed.
func (m *MeanVariancePairMatrix) CopyFrom(o *MeanVariancePairMatrix) {
	if m.rows != o.rows || m.cols != o.cols {
		m.Init(o.rows, o.cols)
	}
	copy(m.pairs, o.pairs)
}

// MeanVariancePairVector is a dense 1-D container of accumulators.
type MeanVariancePairVector struct {
	pairs []MeanVariancePair
}

// Init sizes the vector, discarding any previous contents.
func (v *MeanVariancePairVector) Init(n int) {
	v.pairs = make([]MeanVariancePair, n)
}

// Len returns the number of entries.
func (v *MeanVariancePairVector) Len() int { return len(v.pairs) }

// At returns the accumulator at index i.
func (v *MeanVariancePairVector) At(i int) *MeanVariancePair { return &v.pairs[i] }

// SetZero resets every entry.
func (v *MeanVariancePairVector) SetZero() {
	for i := range v.pairs {
		v.pairs[i].SetZero()
	}
}

// SetTotalNumTerms declares the represented term count on every entry.
func (v *MeanVariancePairVector) SetTotalNumTerms(n float64) {
	for i := range v.pairs {
		v.pairs[i].SetTotalNumTerms(n)
	}
}

// CombineWith merges another vector element-wise. Both vectors must have the
// same length.
func (v *MeanVariancePairVector) CombineWith(o *MeanVariancePairVector) {
	for i := range v.pairs {
		v.pairs[i].CombineWith(&o.pairs[i])
	}
}

// CopyFrom copies another vector's entries into v, resizing if needed.
func (v *MeanVariancePairVector) CopyFrom(o *MeanVariancePairVector) {
	if len(v.pairs) != len(o.pairs) {
		v.Init(len(o.pairs))
	}
	copy(v.pairs, o.pairs)
}
