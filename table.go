package localreg

import "fmt"

// Table holds a point set in flat row-major form with optional per-point
// weights. Reference tables carry weights (the regressand values); query
// tables do not need them.
type Table struct {
	data    []float64 // flat row-major point data (n * dims)
	weights []float64 // nil means every weight is 1
	n       int
	dims    int
}

// NewTable builds a Table from per-point slices. All points must have the
// same dimensionality. weights may be nil (all weights 1) or have exactly one
// entry per point.
func NewTable(points [][]float64, weights []float64) (*Table, error) {
	n := len(points)
	if n == 0 {
		return &Table{}, nil
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, fmt.Errorf("localreg: points must have at least one attribute")
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("localreg: got %d weights for %d points", len(weights), n)
	}
	data := make([]float64, n*dims)
	for i, row := range points {
		if len(row) != dims {
			return nil, fmt.Errorf("localreg: point %d has %d attributes, want %d", i, len(row), dims)
		}
		copy(data[i*dims:], row)
	}
	var w []float64
	if weights != nil {
		w = make([]float64, n)
		copy(w, weights)
	}
	return &Table{data: data, weights: w, n: n, dims: dims}, nil
}

// NewTableFlat builds a Table from flat row-major data with n points of
// dimensionality dims. The data and weight slices are copied.
func NewTableFlat(data []float64, n, dims int, weights []float64) *Table {
	d := make([]float64, len(data))
	copy(d, data)
	var w []float64
	if weights != nil {
		w = make([]float64, len(weights))
		copy(w, weights)
	}
	return &Table{data: d, weights: w, n: n, dims: dims}
}

// NumPoints returns the number of points in the table.
func (t *Table) NumPoints() int { return t.n }

// NumFeatures returns the dimensionality of each point.
func (t *Table) NumFeatures() int { return t.dims }

// Point returns the coordinate slice of point i. The slice aliases the
// table's storage and must not be modified.
func (t *Table) Point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// Weight returns the weight of point i (1 if the table carries no weights).
func (t *Table) Weight(i int) float64 {
	if t.weights == nil {
		return 1
	}
	return t.weights[i]
}
