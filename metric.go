package localreg

// Metric provides squared-distance computation. The engine only needs it in
// the exact base case; all node-level pruning works off bounding-box
// squared-distance ranges.
type Metric interface {
	DistanceSq(a, b []float64) float64
}

// DistanceSqFunc adapts a plain function into a Metric.
type DistanceSqFunc func(a, b []float64) float64

func (f DistanceSqFunc) DistanceSq(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes squared Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) DistanceSq(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// SqRange is a closed interval of squared distances, with Lo <= Hi.
type SqRange struct {
	Lo, Hi float64
}
