package localreg

import "math"

// Kernel is a smoothing kernel evaluated on squared distances. EvalUnnormOnSq
// must be monotonically non-increasing in its argument; the engine relies on
// this to turn a squared-distance range into a kernel value range.
type Kernel interface {
	// EvalUnnormOnSq evaluates the unnormalized kernel on a squared distance.
	EvalUnnormOnSq(sqDist float64) float64

	// BandwidthSq returns the squared bandwidth.
	BandwidthSq() float64

	// WithBandwidth returns a copy of the kernel re-parameterized with the
	// given bandwidth.
	WithBandwidth(bandwidth float64) Kernel
}

// CompactSupportKernel is an optional capability for kernels that are exactly
// zero beyond a support radius. The engine uses it for extrinsic pruning:
// when the minimum squared distance between two nodes already exceeds the
// support, the pair's contribution is provably zero and is skipped with no
// approximation error at all.
type CompactSupportKernel interface {
	Kernel

	// SupportSq returns the squared support radius.
	SupportSq() float64
}

// GaussianKernel is exp(-d²/(2h²)). It has unbounded support.
type GaussianKernel struct {
	bandwidthSq float64
}

// NewGaussianKernel creates a Gaussian kernel with the given bandwidth.
func NewGaussianKernel(bandwidth float64) GaussianKernel {
	return GaussianKernel{bandwidthSq: bandwidth * bandwidth}
}

func (k GaussianKernel) EvalUnnormOnSq(sqDist float64) float64 {
	return math.Exp(-sqDist / (2 * k.bandwidthSq))
}

func (k GaussianKernel) BandwidthSq() float64 { return k.bandwidthSq }

func (k GaussianKernel) WithBandwidth(bandwidth float64) Kernel {
	return NewGaussianKernel(bandwidth)
}

// EpanechnikovKernel is max(0, 1 - d²/h²). It is compactly supported: the
// kernel is exactly zero for squared distances at or beyond h².
type EpanechnikovKernel struct {
	bandwidthSq float64
}

// NewEpanechnikovKernel creates an Epanechnikov kernel with the given bandwidth.
func NewEpanechnikovKernel(bandwidth float64) EpanechnikovKernel {
	return EpanechnikovKernel{bandwidthSq: bandwidth * bandwidth}
}

func (k EpanechnikovKernel) EvalUnnormOnSq(sqDist float64) float64 {
	if sqDist >= k.bandwidthSq {
		return 0
	}
	return 1 - sqDist/k.bandwidthSq
}

func (k EpanechnikovKernel) BandwidthSq() float64 { return k.bandwidthSq }

func (k EpanechnikovKernel) SupportSq() float64 { return k.bandwidthSq }

func (k EpanechnikovKernel) WithBandwidth(bandwidth float64) Kernel {
	return NewEpanechnikovKernel(bandwidth)
}
