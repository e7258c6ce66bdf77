package localreg

import (
	"math"
	"testing"
)

func summaryScenario(t *testing.T, relError float64) (*Global, *Delta, *Summary) {
	t.Helper()
	refs := [][]float64{{0}, {1}, {2}, {3}}
	responses := []float64{1, 1, 1, 1}
	refTable := testTable(t, refs, responses)
	queryTable := testTable(t, [][]float64{{1.5}}, nil)
	refTree := NewTree(refTable, 4)
	queryTree := NewTree(queryTable, 4)

	g := NewGlobal(NewGaussianKernel(2), EuclideanMetric{}, relError, 0, queryTable, refTable)

	delta := NewDelta(1)
	sqRange := queryTree.SqDistRange(queryTree.Root(), refTree, refTree.Root())
	delta.DeterministicCompute(g, refTree.Stat(refTree.Root()), 4, sqRange)

	summary := NewSummary(1)
	return g, delta, summary
}

// A generous relative tolerance lets the root pair prune outright, even from
// a cold start: the candidate delta's own lower bound funds the budget.
func TestSummary_RootPruneAtLooseTolerance(t *testing.T) {
	g, delta, summary := summaryScenario(t, 0.5)
	if !summary.CanSummarize(g, delta, 4) {
		t.Fatalf("root pair did not prune at relative tolerance 0.5 (used error %f)", delta.UsedError)
	}
}

// Zero tolerance must force recursion whenever the delta carries any error.
func TestSummary_NoPruneAtZeroTolerance(t *testing.T) {
	g, delta, summary := summaryScenario(t, 0)
	if delta.UsedError <= 0 {
		t.Fatalf("scenario delta has no error to pay for")
	}
	if summary.CanSummarize(g, delta, 4) {
		t.Fatal("pruned at zero tolerance despite nonzero delta error")
	}
}

// Once nearly all reference mass is pruned the proportional-share denominator
// vanishes; the predicate then compares against the remaining budget directly
// instead of dividing by zero.
func TestSummary_DenominatorGuard(t *testing.T) {
	g, delta, summary := summaryScenario(t, 0.5)
	summary.PrunedL = g.EffectiveNumReferencePoints()
	summary.UsedErrorU = math.MaxFloat64

	if summary.CanSummarize(g, delta, 4) {
		t.Fatal("pruned with exhausted error budget")
	}
}

func TestSummary_ApplyDeltaTracksBounds(t *testing.T) {
	_, delta, summary := summaryScenario(t, 0.5)
	summary.ApplyDelta(delta)

	if summary.PrunedL != 4 {
		t.Errorf("PrunedL = %f, want 4", summary.PrunedL)
	}
	if math.Abs(summary.UsedErrorU-delta.UsedError) > 1e-15 {
		t.Errorf("UsedErrorU = %f, want %f", summary.UsedErrorU, delta.UsedError)
	}
	for j := 0; j < 2; j++ {
		lo := summary.RightHandSideL[j]
		hi := summary.RightHandSideU[j]
		if lo > hi {
			t.Errorf("rhs bounds inverted at %d: [%f, %f]", j, lo, hi)
		}
		wantLo := delta.RightHandSideL.At(j).SampleMean() * 4
		if math.Abs(lo-wantLo) > 1e-12 {
			t.Errorf("rhs lower[%d] = %f, want %f", j, lo, wantLo)
		}
	}
}

// Refolding a parent envelope from child state takes element-wise min of
// lower bounds and max of upper bounds, counting the children's unflushed
// postponed mass.
func TestSummary_AccumulateSummary(t *testing.T) {
	_, delta, _ := summaryScenario(t, 0.5)

	childA := NewSummary(1)
	childA.ApplyDelta(delta)
	postponedA := NewPostponed(1)

	childB := NewSummary(1)
	postponedB := NewPostponed(1)
	postponedB.ApplyDelta(delta)

	parent := NewSummary(1)
	parent.StartReaccumulate()
	parent.AccumulateSummary(childA, postponedA)
	parent.AccumulateSummary(childB, postponedB)

	// Both children account the same delta, one in its summary and one in
	// its postponed state; the refolded parent must see identical totals.
	if parent.PrunedL != 4 {
		t.Errorf("PrunedL = %f, want 4", parent.PrunedL)
	}
	for j := 0; j < 2; j++ {
		wantLo := delta.RightHandSideL.At(j).SampleMean() * 4
		if math.Abs(parent.RightHandSideL[j]-wantLo) > 1e-12 {
			t.Errorf("rhs lower[%d] = %f, want %f", j, parent.RightHandSideL[j], wantLo)
		}
	}
}

func TestSummary_Seed(t *testing.T) {
	s := NewSummary(2)
	s.UsedErrorU = 3
	s.LeftHandSideU[0] = 5
	s.Seed(7)

	if s.PrunedL != 7 {
		t.Errorf("PrunedL = %f, want 7", s.PrunedL)
	}
	if s.UsedErrorU != 0 || s.LeftHandSideU[0] != 0 {
		t.Errorf("Seed did not reset envelope: used=%f lhsU=%f", s.UsedErrorU, s.LeftHandSideU[0])
	}
}

// A warm-started query begins with a nonzero pruned count that subsequent
// flushes add onto instead of replacing.
func TestResult_Seed(t *testing.T) {
	res := NewResult(1, 2)
	res.Seed(1, 5)

	if res.Pruned[0] != 0 || res.Pruned[1] != 5 {
		t.Fatalf("pruned = %v, want [0 5]", res.Pruned)
	}

	p := NewPostponed(1)
	p.Pruned = 3
	p.UsedError = 0.25
	res.ApplyPostponed(p, 1)

	if res.Pruned[1] != 8 {
		t.Errorf("pruned[1] = %f, want 8", res.Pruned[1])
	}
	if res.UsedError[1] != 0.25 {
		t.Errorf("usedError[1] = %f, want 0.25", res.UsedError[1])
	}
}
