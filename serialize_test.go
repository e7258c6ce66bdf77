package localreg

import (
	"errors"
	"math/rand"
	"testing"
)

func TestMeanVariancePair_BinaryRoundTrip(t *testing.T) {
	var p MeanVariancePair
	for _, x := range []float64{1.5, -2.25, 7, 0} {
		p.Push(x)
	}
	p.SetTotalNumTerms(9)

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var q MeanVariancePair
	if err := q.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if p != q {
		t.Errorf("round trip changed state: %+v != %+v", q, p)
	}
}

func TestSerialize_UnknownVersion(t *testing.T) {
	var p MeanVariancePair
	p.Push(1)
	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	data[0] = 99

	var q MeanVariancePair
	if err := q.UnmarshalBinary(data); err == nil {
		t.Fatal("expected error for unknown format version")
	}
}

func TestSerialize_ShortBuffer(t *testing.T) {
	var p Postponed
	p.Init(2)
	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var q Postponed
	if err := q.UnmarshalBinary(data[:len(data)/2]); !errors.Is(err, errShortBuffer) {
		t.Fatalf("err = %v, want short buffer", err)
	}
	if err := q.UnmarshalBinary(nil); !errors.Is(err, errShortBuffer) {
		t.Fatalf("nil input err = %v, want short buffer", err)
	}
}

func TestPostponed_BinaryRoundTrip(t *testing.T) {
	dims := 2
	p := NewPostponed(dims)
	d := NewDelta(dims)
	d.InitExactPrune(12)
	p.ApplyDelta(d)
	p.LeftHandSideE.At(1, 2).Push(3.5)
	p.UsedError = 0.125

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var q Postponed
	if err := q.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if q.Pruned != p.Pruned || q.UsedError != p.UsedError {
		t.Errorf("scalars changed: pruned %f/%f, used %f/%f",
			q.Pruned, p.Pruned, q.UsedError, p.UsedError)
	}
	if *q.LeftHandSideE.At(1, 2) != *p.LeftHandSideE.At(1, 2) {
		t.Errorf("cell changed: %+v != %+v", *q.LeftHandSideE.At(1, 2), *p.LeftHandSideE.At(1, 2))
	}
	if q.RightHandSideU.At(0).TotalNumTerms() != 12 {
		t.Errorf("terms = %f, want 12", q.RightHandSideU.At(0).TotalNumTerms())
	}
}

// A fully post-processed result must round-trip bit-exactly, accumulator
// state included.
func TestResult_BinaryRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	refs := randomPoints(rng, 150, 2)
	responses := linearResponses(refs, 1, []float64{2, -1})
	queries := randomPoints(rng, 8, 2)

	cfg := DefaultConfig()
	cfg.Kernel = NewGaussianKernel(2)
	cfg.Algorithm = AlgorithmDualTree

	res, err := Fit(refs, responses, queries, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	data, err := res.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var back Result
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	for q := range queries {
		if back.Predictions[q] != res.Predictions[q] {
			t.Errorf("prediction[%d] = %v, want %v", q, back.Predictions[q], res.Predictions[q])
		}
		if back.Pruned[q] != res.Pruned[q] || back.UsedError[q] != res.UsedError[q] {
			t.Errorf("trackers changed for query %d", q)
		}
		for j := range back.Coefficients[q] {
			if back.Coefficients[q][j] != res.Coefficients[q][j] {
				t.Errorf("coefficient[%d][%d] changed", q, j)
			}
		}
		rows := 3
		for j := 0; j < rows; j++ {
			if *back.RightHandSideE[q].At(j) != *res.RightHandSideE[q].At(j) {
				t.Errorf("rhs accumulator (%d,%d) changed", q, j)
			}
			for i := 0; i < rows; i++ {
				if *back.LeftHandSideE[q].At(i, j) != *res.LeftHandSideE[q].At(i, j) {
					t.Errorf("lhs accumulator (%d,%d,%d) changed", q, i, j)
				}
			}
		}
	}

	// Re-marshaling the decoded result reproduces the same bytes.
	again, err := back.MarshalBinary()
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if len(again) != len(data) {
		t.Fatalf("re-marshal length %d, want %d", len(again), len(data))
	}
	for i := range again {
		if again[i] != data[i] {
			t.Fatalf("re-marshal differs at byte %d", i)
		}
	}
}
