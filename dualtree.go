package localreg

// dualTreeEngine runs the depth-first dual-tree traversal: every
// (query node, reference node) pair is either pruned exactly, pruned
// approximately within the error contract, or split and recursed until the
// base case evaluates the remaining pairs exactly.
type dualTreeEngine struct {
	g     *Global
	qTree *Tree
	rTree *Tree
	res   *Result
	dims  int
}

func newDualTreeEngine(g *Global, qTree, rTree *Tree, res *Result) *dualTreeEngine {
	return &dualTreeEngine{
		g:     g,
		qTree: qTree,
		rTree: rTree,
		res:   res,
		dims:  g.QueryTable().NumFeatures(),
	}
}

// run traverses from the root pair, then flushes all postponed state still
// hanging on query nodes down into the per-query results.
func (e *dualTreeEngine) run() {
	e.qTree.ResetTraversalState()
	e.visit(0, 0)
	e.flush(0)
}

// visit handles one (query node, reference node) pair.
func (e *dualTreeEngine) visit(qNode, rNode int) {
	rng := e.qTree.SqDistRange(qNode, e.rTree, rNode)
	refCount := e.rTree.Count(rNode)
	qStat := e.qTree.Stat(qNode)

	// Extrinsic prune: the reference node is entirely outside the kernel
	// support, so its contribution is exactly zero for every query here.
	if e.g.ConsiderExtrinsicPrune(rng) {
		delta := NewDelta(e.dims)
		delta.InitExactPrune(refCount)
		qStat.Postponed.ApplyDelta(delta)
		qStat.Summary.ApplyDelta(delta)
		return
	}

	// Finite-difference prune: approximate the whole reference node by its
	// bounded delta if the incurred error fits the remaining budget.
	delta := NewDelta(e.dims)
	delta.DeterministicCompute(e.g, e.rTree.Stat(rNode), refCount, rng)
	if qStat.Summary.CanSummarize(e.g, delta, refCount) {
		qStat.Postponed.ApplyDelta(delta)
		qStat.Summary.ApplyDelta(delta)
		return
	}

	// Split the larger of the two nodes so node-pair ranges tighten fastest.
	qLeaf := e.qTree.IsLeaf(qNode)
	rLeaf := e.rTree.IsLeaf(rNode)
	switch {
	case qLeaf && rLeaf:
		e.baseCase(qNode, rNode)
	case qLeaf:
		e.visitReferenceChildren(qNode, rNode)
	case rLeaf:
		e.descendQuery(qNode, rNode)
	case e.rTree.Count(rNode) > e.qTree.Count(qNode):
		e.visitReferenceChildren(qNode, rNode)
	default:
		e.descendQuery(qNode, rNode)
	}
}

// visitReferenceChildren splits the reference node, visiting the nearer
// child first so later pairs see tighter summaries.
func (e *dualTreeEngine) visitReferenceChildren(qNode, rNode int) {
	left, right := e.rTree.ChildNodes(rNode)
	nearFirst := e.qTree.SqDistRange(qNode, e.rTree, left).Lo <=
		e.qTree.SqDistRange(qNode, e.rTree, right).Lo
	if nearFirst {
		e.visit(qNode, left)
		e.visit(qNode, right)
	} else {
		e.visit(qNode, right)
		e.visit(qNode, left)
	}
}

// descendQuery splits the query node: postponed state is pushed down to both
// children first, the children are visited, and the parent summary is then
// refolded from the children's updated state.
func (e *dualTreeEngine) descendQuery(qNode, rNode int) {
	qStat := e.qTree.Stat(qNode)
	qLeft, qRight := e.qTree.ChildNodes(qNode)
	leftStat := e.qTree.Stat(qLeft)
	rightStat := e.qTree.Stat(qRight)

	leftStat.Postponed.ApplyPostponed(&qStat.Postponed)
	rightStat.Postponed.ApplyPostponed(&qStat.Postponed)
	qStat.Postponed.SetZero()

	e.visit(qLeft, rNode)
	e.visit(qRight, rNode)

	qStat.Summary.StartReaccumulate()
	qStat.Summary.AccumulateSummary(&leftStat.Summary, &leftStat.Postponed)
	qStat.Summary.AccumulateSummary(&rightStat.Summary, &rightStat.Postponed)
}

// baseCase evaluates every query/reference pair of two leaves exactly. The
// leaf's postponed state is flushed into the per-query results first so the
// refolded summary reflects everything accounted so far.
func (e *dualTreeEngine) baseCase(qNode, rNode int) {
	qStat := e.qTree.Stat(qNode)
	e.qTree.ForEachPoint(qNode, func(_ []float64, qIndex int, _ float64) {
		e.res.ApplyPostponed(&qStat.Postponed, qIndex)
	})
	qStat.Postponed.SetZero()

	e.qTree.ForEachPoint(qNode, func(queryPoint []float64, qIndex int, _ float64) {
		e.rTree.ForEachPoint(rNode, func(refPoint []float64, _ int, refWeight float64) {
			e.res.ApplyContribution(e.g, qIndex, queryPoint, refPoint, refWeight)
		})
	})

	qStat.Summary.StartReaccumulate()
	e.qTree.ForEachPoint(qNode, func(_ []float64, qIndex int, _ float64) {
		qStat.Summary.AccumulateResult(e.res, qIndex)
	})
}

// flush pushes any postponed state still parked on query nodes down the tree
// and into the per-query results.
func (e *dualTreeEngine) flush(qNode int) {
	qStat := e.qTree.Stat(qNode)
	if e.qTree.IsLeaf(qNode) {
		e.qTree.ForEachPoint(qNode, func(_ []float64, qIndex int, _ float64) {
			e.res.ApplyPostponed(&qStat.Postponed, qIndex)
		})
		qStat.Postponed.SetZero()
		return
	}
	left, right := e.qTree.ChildNodes(qNode)
	e.qTree.Stat(left).Postponed.ApplyPostponed(&qStat.Postponed)
	e.qTree.Stat(right).Postponed.ApplyPostponed(&qStat.Postponed)
	qStat.Postponed.SetZero()
	e.flush(left)
	e.flush(right)
}
