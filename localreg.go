package localreg

import (
	"fmt"
	"runtime"
)

// Algorithm selects the evaluation strategy.
type Algorithm string

const (
	AlgorithmAuto     Algorithm = "auto"
	AlgorithmBrute    Algorithm = "brute"
	AlgorithmDualTree Algorithm = "dual_tree"
)

// Config controls local linear regression behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Kernel is the smoothing kernel weighting each reference point by its
	// distance to the query. Compactly supported kernels (Epanechnikov)
	// additionally enable exact zero-contribution pruning. If Bandwidth is
	// also set, the kernel is re-parameterized with it.
	// Default: Epanechnikov with bandwidth 1.
	Kernel Kernel

	// Bandwidth overrides the kernel's bandwidth when > 0. Must be >= 0.
	// Default: 0 (keep the kernel's own bandwidth).
	Bandwidth float64

	// Metric is the squared-distance function used in exact leaf-level
	// evaluation. Use DistanceSqFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric Metric

	// RelativeError is the relative approximation tolerance: each query's
	// accumulated sums deviate from their exact values by at most
	// RelativeError times a lower bound on their magnitude, plus the
	// absolute term. 0 forces exact evaluation (modulo AbsoluteError).
	// Must be >= 0. Default: 0.1.
	RelativeError float64

	// AbsoluteError is the absolute per-reference-point tolerance added on
	// top of the relative one. Must be >= 0. Default: 0.
	AbsoluteError float64

	// Probability is the minimum probability with which the error contract
	// must hold, in (0, 1]. The engine prunes deterministically, which
	// satisfies the contract for any probability; values below 1 declare
	// slack that sampling-based pruning may exploit. Default: 1.
	Probability float64

	// Algorithm selects the evaluation strategy. "auto" picks the dual-tree
	// engine unless the reference set is small enough that brute force wins.
	// "brute" evaluates every pair exactly and ignores the tolerances.
	// Default: "auto".
	Algorithm Algorithm

	// LeafSize is the maximum number of points in a tree leaf node. Larger
	// leaves trade pruning opportunities for cheaper tree construction.
	// Must be >= 1. Default: 40.
	LeafSize int

	// Workers is the number of goroutines used for the per-query linear
	// solves. 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Kernel:        NewEpanechnikovKernel(1),
		Metric:        EuclideanMetric{},
		RelativeError: 0.1,
		Probability:   1,
		Algorithm:     AlgorithmAuto,
		LeafSize:      40,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Bandwidth < 0 {
		return fmt.Errorf("localreg: Bandwidth must be >= 0, got %f", cfg.Bandwidth)
	}
	if cfg.RelativeError < 0 {
		return fmt.Errorf("localreg: RelativeError must be >= 0, got %f", cfg.RelativeError)
	}
	if cfg.AbsoluteError < 0 {
		return fmt.Errorf("localreg: AbsoluteError must be >= 0, got %f", cfg.AbsoluteError)
	}
	if cfg.Probability <= 0 || cfg.Probability > 1 {
		return fmt.Errorf("localreg: Probability must be in (0, 1], got %f", cfg.Probability)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmDualTree:
		// valid
	default:
		return fmt.Errorf("localreg: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("localreg: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("localreg: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Kernel == nil {
		cfg.Kernel = NewEpanechnikovKernel(1)
	}
	if cfg.Bandwidth > 0 {
		cfg.Kernel = cfg.Kernel.WithBandwidth(cfg.Bandwidth)
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Probability == 0 {
		cfg.Probability = 1
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// selectAlgorithm resolves AlgorithmAuto. Tree construction only pays off
// once the reference set comfortably exceeds a pair of leaves.
func selectAlgorithm(cfg Config, numReferences int) Algorithm {
	if cfg.Algorithm != AlgorithmAuto {
		return cfg.Algorithm
	}
	if numReferences <= 2*cfg.LeafSize {
		return AlgorithmBrute
	}
	return AlgorithmDualTree
}

// Fit estimates the local linear regression value at each query point from
// the weighted reference set. references holds the predictor points and
// responses their regressand values, one per reference point; queries holds
// the points to predict at. All points must share one dimensionality.
//
// The returned Result carries one prediction per query plus per-query
// diagnostics (reference mass pruned, error bound spent). Returns an error
// if the config or the inputs are invalid.
func Fit(references [][]float64, responses []float64, queries [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(responses) != len(references) {
		return nil, fmt.Errorf("localreg: got %d responses for %d references", len(responses), len(references))
	}

	refTable, err := NewTable(references, responses)
	if err != nil {
		return nil, err
	}
	queryTable, err := NewTable(queries, nil)
	if err != nil {
		return nil, err
	}
	if queryTable.NumPoints() > 0 && refTable.NumPoints() > 0 &&
		queryTable.NumFeatures() != refTable.NumFeatures() {
		return nil, fmt.Errorf("localreg: queries have %d attributes, references have %d",
			queryTable.NumFeatures(), refTable.NumFeatures())
	}
	return fit(queryTable, refTable, cfg)
}

// FitSelf estimates the regression value at each reference point from all
// the other reference points: the run is monochromatic, so a point's own
// response never contributes to its prediction (leave-one-out evaluation).
func FitSelf(references [][]float64, responses []float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(responses) != len(references) {
		return nil, fmt.Errorf("localreg: got %d responses for %d references", len(responses), len(references))
	}

	table, err := NewTable(references, responses)
	if err != nil {
		return nil, err
	}
	return fit(table, table, cfg)
}

// fit runs the selected engine over already-validated tables. Monochromatic
// runs are detected by table identity.
func fit(queryTable, refTable *Table, cfg Config) (*Result, error) {
	g := NewGlobal(cfg.Kernel, cfg.Metric, cfg.RelativeError, cfg.AbsoluteError, queryTable, refTable)
	res := NewResult(dimsOf(queryTable, refTable), queryTable.NumPoints())
	if queryTable.NumPoints() == 0 {
		return res, nil
	}
	if refTable.NumPoints() == 0 {
		return nil, fmt.Errorf("localreg: no reference points")
	}

	switch selectAlgorithm(cfg, refTable.NumPoints()) {
	case AlgorithmBrute:
		runBruteParallel(g, res, cfg.Workers)
	default:
		rTree := NewTree(refTable, cfg.LeafSize)
		qTree := rTree
		if queryTable != refTable {
			qTree = NewTree(queryTable, cfg.LeafSize)
		}
		newDualTreeEngine(g, qTree, rTree, res).run()
	}

	if err := solvePredictions(g, res, cfg.Workers); err != nil {
		return nil, err
	}
	return res, nil
}

func dimsOf(queryTable, refTable *Table) int {
	if queryTable.NumPoints() > 0 {
		return queryTable.NumFeatures()
	}
	return refTable.NumFeatures()
}
