package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler linearly maps values into [0,1] using per-column
// minimum and maximum observed at fit time. Values outside the fitted
// range scale to values outside [0,1]; there is deliberately no
// clamping, matching min-max semantics.
type MinMaxScaler struct {
	Columns []string  `json:"columns"`
	Min     []float64 `json:"min"`
	Max     []float64 `json:"max"`
}

// FitMinMaxScaler computes per-column extrema on the training data.
// The input is expected to be imputed already (no NaNs).
func FitMinMaxScaler(columns []string, X [][]float64) (*MinMaxScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty data")
	}
	if len(columns) != len(X[0]) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(columns), len(X[0]))
	}

	mins := make([]float64, len(columns))
	maxs := make([]float64, len(columns))
	col := make([]float64, len(X))
	for j := range columns {
		for i := range X {
			col[i] = X[i][j]
		}
		mins[j] = floats.Min(col)
		maxs[j] = floats.Max(col)
	}

	return &MinMaxScaler{Columns: columns, Min: mins, Max: maxs}, nil
}

// Transform scales X using the fitted extrema. A constant column
// (min == max) scales to 0.
func (sc *MinMaxScaler) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range X {
		if len(X[i]) != len(sc.Columns) {
			return nil, fmt.Errorf("row %d has %d values, scaler fitted on %d columns", i, len(X[i]), len(sc.Columns))
		}
		row := make([]float64, len(X[i]))
		for j, v := range X[i] {
			span := sc.Max[j] - sc.Min[j]
			if span == 0 {
				row[j] = 0
			} else {
				row[j] = (v - sc.Min[j]) / span
			}
		}
		out[i] = row
	}
	return out, nil
}
