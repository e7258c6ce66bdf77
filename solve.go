package localreg

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// ErrIllConditioned reports that a query's local system could not be solved:
// the kernel-weighted neighborhood is degenerate (no in-support references,
// or collinear ones). Returned wrapped with the query index.
var ErrIllConditioned = errors.New("localreg: ill-conditioned local system")

// solvePredictions turns each query's accumulated moments into fitted
// coefficients and a prediction by solving the kernel-weighted normal
// equations. Queries are independent, so the solves run on a bounded worker
// group. A near-singular system that gonum still solves (mat.Condition) is
// accepted; a hard failure surfaces ErrIllConditioned rather than NaN
// coefficients.
func solvePredictions(g *Global, res *Result, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := g.QueryTable().NumFeatures() + 1

	grp := new(errgroup.Group)
	grp.SetLimit(workers)
	for q := range res.Predictions {
		q := q
		grp.Go(func() error {
			lhs, rhs := res.Moments(g, q)
			beta, err := solveOne(rows, lhs, rhs)
			if err != nil {
				return fmt.Errorf("%w (query %d)", err, q)
			}
			res.Coefficients[q] = beta

			point := g.QueryTable().Point(q)
			prediction := beta[0]
			for j, x := range point {
				prediction += beta[j+1] * x
			}
			res.Predictions[q] = prediction
			return nil
		})
	}
	return grp.Wait()
}

func solveOne(rows int, lhs, rhs []float64) ([]float64, error) {
	a := mat.NewDense(rows, rows, lhs)
	b := mat.NewVecDense(rows, rhs)

	beta := make([]float64, rows)
	betaVec := mat.NewVecDense(rows, beta)
	if err := betaVec.SolveVec(a, b); err != nil {
		// A finite solution of a merely ill-conditioned system is still
		// usable; an exactly singular one is not. gonum reports the latter
		// as mat.Condition(+Inf) alongside a meaningless solution.
		c, nearSingular := err.(mat.Condition)
		if !nearSingular || math.IsInf(float64(c), 1) {
			return nil, ErrIllConditioned
		}
	}
	for _, v := range beta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrIllConditioned
		}
	}
	return beta, nil
}
