package localreg

import (
	"math"
	"testing"
)

func TestMeanVariancePair_PushBasics(t *testing.T) {
	var p MeanVariancePair
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, x := range samples {
		p.Push(x)
	}

	if p.SampleCount() != len(samples) {
		t.Fatalf("SampleCount = %d, want %d", p.SampleCount(), len(samples))
	}
	if math.Abs(p.SampleMean()-5) > 1e-12 {
		t.Errorf("SampleMean = %f, want 5", p.SampleMean())
	}
	// Sample variance of the classic example set: M2 = 32, n-1 = 7.
	if math.Abs(p.SampleVariance()-32.0/7.0) > 1e-12 {
		t.Errorf("SampleVariance = %f, want %f", p.SampleVariance(), 32.0/7.0)
	}
	if p.TotalNumTerms() != float64(len(samples)) {
		t.Errorf("TotalNumTerms = %f, want %d", p.TotalNumTerms(), len(samples))
	}
}

func TestMeanVariancePair_EmptyPair(t *testing.T) {
	var p MeanVariancePair
	if p.SampleMean() != 0 || p.SampleVariance() != 0 || p.TotalNumTerms() != 0 {
		t.Fatalf("empty pair not zero: mean=%f var=%f terms=%f",
			p.SampleMean(), p.SampleVariance(), p.TotalNumTerms())
	}

	// Merging an empty pair changes nothing.
	var q MeanVariancePair
	q.Push(3)
	before := q
	q.CombineWith(&p)
	if q != before {
		t.Errorf("combining with empty pair changed state: %+v != %+v", q, before)
	}

	// Merging into an empty pair adopts the other side.
	p.CombineWith(&q)
	if p.SampleMean() != q.SampleMean() || p.TotalNumTerms() != q.TotalNumTerms() {
		t.Errorf("empty pair did not adopt merge source: %+v", p)
	}
}

// Splitting a sample set into chunks, accumulating each chunk separately, and
// merging must represent the same sum as one straight pass.
func TestMeanVariancePair_CombinePartitions(t *testing.T) {
	samples := []float64{1.5, -2, 0.25, 7, 3, 3, -4.5, 8, 0, 2.25, -1, 6}

	var whole MeanVariancePair
	exactSum := 0.0
	for _, x := range samples {
		whole.Push(x)
		exactSum += x
	}

	for _, split := range []int{1, 3, 6, 11} {
		var a, b MeanVariancePair
		for _, x := range samples[:split] {
			a.Push(x)
		}
		for _, x := range samples[split:] {
			b.Push(x)
		}
		a.CombineWith(&b)

		if math.Abs(a.SampleMean()-whole.SampleMean()) > 1e-12 {
			t.Errorf("split %d: mean = %f, want %f", split, a.SampleMean(), whole.SampleMean())
		}
		gotSum := a.SampleMean() * a.TotalNumTerms()
		if math.Abs(gotSum-exactSum) > 1e-12 {
			t.Errorf("split %d: represented sum = %f, want %f", split, gotSum, exactSum)
		}
	}
}

// A single pushed sample can stand for a whole chunk: after SetTotalNumTerms,
// SampleMean()*TotalNumTerms() is the chunk sum and merges weight accordingly.
func TestMeanVariancePair_RepresentedTerms(t *testing.T) {
	// Chunk A: 10 terms averaging 2.0 each. Chunk B: 5 terms averaging -1.0.
	var a, b MeanVariancePair
	a.Push(2.0)
	a.SetTotalNumTerms(10)
	b.Push(-1.0)
	b.SetTotalNumTerms(5)

	a.CombineWith(&b)
	if a.TotalNumTerms() != 15 {
		t.Fatalf("TotalNumTerms = %f, want 15", a.TotalNumTerms())
	}
	wantSum := 10*2.0 + 5*(-1.0)
	gotSum := a.SampleMean() * a.TotalNumTerms()
	if math.Abs(gotSum-wantSum) > 1e-12 {
		t.Errorf("represented sum = %f, want %f", gotSum, wantSum)
	}
}

// Pushes and merges may interleave in any order without changing the
// represented sum.
func TestMeanVariancePair_PushAfterCombine(t *testing.T) {
	var chunk MeanVariancePair
	chunk.Push(4.0)
	chunk.SetTotalNumTerms(8) // 8 terms summing to 32

	var p MeanVariancePair
	p.Push(1)
	p.CombineWith(&chunk)
	p.Push(2)
	p.Push(-3)

	if p.TotalNumTerms() != 11 {
		t.Fatalf("TotalNumTerms = %f, want 11", p.TotalNumTerms())
	}
	wantSum := 1.0 + 32.0 + 2.0 - 3.0
	gotSum := p.SampleMean() * p.TotalNumTerms()
	if math.Abs(gotSum-wantSum) > 1e-12 {
		t.Errorf("represented sum = %f, want %f", gotSum, wantSum)
	}
}

func TestMeanVariancePair_CombineAssociative(t *testing.T) {
	chunks := [][]float64{{1, 2, 3}, {-5, 4}, {0.5, 0.5, 10, -2}}

	build := func(xs []float64) MeanVariancePair {
		var p MeanVariancePair
		for _, x := range xs {
			p.Push(x)
		}
		return p
	}

	// (a+b)+c
	left := build(chunks[0])
	b := build(chunks[1])
	c := build(chunks[2])
	left.CombineWith(&b)
	left.CombineWith(&c)

	// a+(b+c)
	right := build(chunks[0])
	bc := build(chunks[1])
	c2 := build(chunks[2])
	bc.CombineWith(&c2)
	right.CombineWith(&bc)

	if math.Abs(left.SampleMean()-right.SampleMean()) > 1e-12 {
		t.Errorf("mean differs by association: %f vs %f", left.SampleMean(), right.SampleMean())
	}
	if math.Abs(left.m2-right.m2) > 1e-9 {
		t.Errorf("M2 differs by association: %f vs %f", left.m2, right.m2)
	}
	if left.TotalNumTerms() != right.TotalNumTerms() {
		t.Errorf("terms differ by association: %f vs %f", left.TotalNumTerms(), right.TotalNumTerms())
	}
}

func TestMeanVariancePairMatrix_CombineAndCopy(t *testing.T) {
	var a, b MeanVariancePairMatrix
	a.Init(2, 2)
	b.Init(2, 2)
	a.At(0, 0).Push(1)
	a.At(1, 1).Push(2)
	b.At(0, 0).Push(3)
	b.At(0, 1).Push(5)

	a.CombineWith(&b)
	if got := a.At(0, 0).SampleMean(); math.Abs(got-2) > 1e-12 {
		t.Errorf("cell (0,0) mean = %f, want 2", got)
	}
	if got := a.At(0, 1).SampleMean(); math.Abs(got-5) > 1e-12 {
		t.Errorf("cell (0,1) mean = %f, want 5", got)
	}

	var c MeanVariancePairMatrix
	c.CopyFrom(&a)
	if c.Rows() != 2 || c.Cols() != 2 {
		t.Fatalf("copy shape = %dx%d, want 2x2", c.Rows(), c.Cols())
	}
	if c.At(0, 0).SampleMean() != a.At(0, 0).SampleMean() {
		t.Errorf("copy cell mean = %f, want %f", c.At(0, 0).SampleMean(), a.At(0, 0).SampleMean())
	}

	a.SetZero()
	if a.At(0, 0).SampleMean() != 0 || a.At(0, 0).SampleCount() != 0 {
		t.Errorf("SetZero left data behind: %+v", *a.At(0, 0))
	}
	if c.At(0, 0).SampleMean() == 0 {
		t.Errorf("copy aliases the source")
	}
}

func TestMeanVariancePairVector_Copy(t *testing.T) {
	var a MeanVariancePairVector
	a.Init(3)
	a.At(0).Push(2)
	a.At(2).Push(7)

	var c MeanVariancePairVector
	c.CopyFrom(&a)
	if c.Len() != 3 {
		t.Fatalf("copy length = %d, want 3", c.Len())
	}
	if c.At(0).SampleMean() != 2 || c.At(2).SampleMean() != 7 {
		t.Errorf("copy entries = %f, %f, want 2, 7", c.At(0).SampleMean(), c.At(2).SampleMean())
	}

	a.SetZero()
	if c.At(2).SampleMean() == 0 {
		t.Errorf("copy aliases the source")
	}
}
