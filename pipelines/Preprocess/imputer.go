package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanImputer fills missing numeric values with per-column means
// computed at fit time. Missing values are represented as NaN.
type MeanImputer struct {
	Columns []string  `json:"columns"`
	Means   []float64 `json:"means"`
}

// FitMeanImputer computes the mean of each column over its non-missing
// values. Every column stays eligible for imputation even when the
// training data has no missing values in it.
func FitMeanImputer(columns []string, X [][]float64) (*MeanImputer, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit imputer on empty data")
	}
	if len(columns) != len(X[0]) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(columns), len(X[0]))
	}

	means := make([]float64, len(columns))
	for j := range columns {
		observed := make([]float64, 0, len(X))
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				observed = append(observed, X[i][j])
			}
		}
		if len(observed) == 0 {
			return nil, fmt.Errorf("column %q has no observed values to impute from", columns[j])
		}
		means[j] = stat.Mean(observed, nil)
	}

	return &MeanImputer{Columns: columns, Means: means}, nil
}

// Transform returns a copy of X with every NaN replaced by the fitted
// column mean. Calling it repeatedly with the same input yields the
// same output; the imputer is never refit.
func (im *MeanImputer) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range X {
		if len(X[i]) != len(im.Columns) {
			return nil, fmt.Errorf("row %d has %d values, imputer fitted on %d columns", i, len(X[i]), len(im.Columns))
		}
		row := make([]float64, len(X[i]))
		for j, v := range X[i] {
			if math.IsNaN(v) {
				row[j] = im.Means[j]
			} else {
				row[j] = v
			}
		}
		out[i] = row
	}
	return out, nil
}
