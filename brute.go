package localreg

// runBrute evaluates every query/reference pair exactly. It is the reference
// algorithm: the dual-tree engine with zero tolerances must agree with it to
// floating-point roundoff.
func runBrute(g *Global, res *Result) {
	runBruteRange(g, res, 0, g.QueryTable().NumPoints())
}

func runBruteRange(g *Global, res *Result, start, end int) {
	qt := g.QueryTable()
	rt := g.ReferenceTable()
	for q := start; q < end; q++ {
		queryPoint := qt.Point(q)
		for r := 0; r < rt.NumPoints(); r++ {
			res.ApplyContribution(g, q, queryPoint, rt.Point(r), rt.Weight(r))
		}
	}
}
