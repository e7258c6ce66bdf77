package localreg

// Global carries the per-run constants every accumulator operation consults:
// the kernel, the metric, the error tolerances, both tables, and whether the
// run is monochromatic (query and reference tables are the same object, so
// each query's own reference term is excluded).
type Global struct {
	kernel Kernel
	metric Metric

	relError float64
	absError float64

	queryTable     *Table
	referenceTable *Table

	monochromatic bool
	effectiveN    float64
}

// NewGlobal binds the run constants. A run is monochromatic exactly when the
// query table is the reference table; the effective reference count is then
// one less than the table size, since a query never contributes to itself.
func NewGlobal(kernel Kernel, metric Metric, relError, absError float64, queryTable, referenceTable *Table) *Global {
	g := &Global{
		kernel:         kernel,
		metric:         metric,
		relError:       relError,
		absError:       absError,
		queryTable:     queryTable,
		referenceTable: referenceTable,
		monochromatic:  queryTable == referenceTable,
	}
	g.effectiveN = float64(referenceTable.NumPoints())
	if g.monochromatic {
		g.effectiveN = float64(referenceTable.NumPoints() - 1)
	}
	return g
}

// Kernel returns the run's kernel.
func (g *Global) Kernel() Kernel { return g.kernel }

// Metric returns the run's metric.
func (g *Global) Metric() Metric { return g.metric }

// RelativeError returns the relative error tolerance.
func (g *Global) RelativeError() float64 { return g.relError }

// AbsoluteError returns the absolute error tolerance.
func (g *Global) AbsoluteError() float64 { return g.absError }

// QueryTable returns the query table.
func (g *Global) QueryTable() *Table { return g.queryTable }

// ReferenceTable returns the reference table.
func (g *Global) ReferenceTable() *Table { return g.referenceTable }

// IsMonochromatic reports whether query and reference tables are the same.
func (g *Global) IsMonochromatic() bool { return g.monochromatic }

// EffectiveNumReferencePoints returns the reference count each query
// actually sums over: N for bichromatic runs, N-1 for monochromatic ones.
func (g *Global) EffectiveNumReferencePoints() float64 { return g.effectiveN }

// SetBandwidth re-parameterizes the kernel with a new bandwidth. Must not be
// called while a traversal is running.
func (g *Global) SetBandwidth(bandwidth float64) {
	g.kernel = g.kernel.WithBandwidth(bandwidth)
}

// SetEffectiveNumReferencePoints overrides the effective reference count, for
// runs whose reference set is a shard of a larger whole.
func (g *Global) SetEffectiveNumReferencePoints(n float64) { g.effectiveN = n }

// ConsiderExtrinsicPrune reports whether the reference node at the given
// squared-distance range contributes exactly zero to every query under the
// query node. Only compact-support kernels can certify this: the node is
// extrinsically prunable when its nearest point lies at or beyond the
// kernel's support radius.
func (g *Global) ConsiderExtrinsicPrune(rng SqRange) bool {
	cs, ok := g.kernel.(CompactSupportKernel)
	if !ok {
		return false
	}
	return rng.Lo >= cs.SupportSq()
}
