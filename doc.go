// Package localreg implements kernel-weighted local linear regression
// accelerated by a dual-tree approximation engine.
//
// For every query point the fitted coefficients are the solution of a
// weighted least-squares system whose moments are kernel-weighted sums over
// all reference points. Instead of evaluating every query/reference pair,
// both point sets are organized into KD-trees and node pairs whose
// contribution can be bounded tightly enough are pruned, subject to a
// user-specified (absolute error, relative error) contract. Pairs that
// cannot be pruned fall back to exact pairwise evaluation at the leaves.
//
// Basic usage:
//
//	cfg := localreg.DefaultConfig()
//	cfg.Bandwidth = 0.5
//	cfg.RelativeError = 0.05
//	result, err := localreg.Fit(refPoints, responses, queryPoints, cfg)
//	// result.Predictions[i] is the regression estimate at query i
//	// result.Coefficients[i] are the fitted local coefficients
//
// FitSelf runs a monochromatic computation: every reference point is also a
// query, and a point never counts its own response (leave-one-out).
//
// # Algorithm selection
//
// By default (Algorithm: "auto"), Fit picks between the exact brute-force
// path and the dual-tree path based on problem size. Set Config.Algorithm to
// force a specific strategy:
//
//	cfg.Algorithm = localreg.AlgorithmBrute    // exact O(Nq·Nr) moments
//	cfg.Algorithm = localreg.AlgorithmDualTree // tree-accelerated, bounded error
package localreg
