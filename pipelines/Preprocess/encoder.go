package preprocess

import (
	"fmt"
	"sort"
)

// OneHotEncoder expands categorical columns into binary indicator
// columns over the vocabulary of levels observed at fit time. Levels
// never seen during fitting encode as an all-zero indicator block
// rather than an error, so inference-time inputs cannot crash the
// pipeline.
type OneHotEncoder struct {
	Columns    []string   `json:"columns"`
	Categories [][]string `json:"categories"` // sorted levels, one slice per column
}

// FitOneHotEncoder records the sorted vocabulary of each categorical
// column from training rows.
func FitOneHotEncoder(columns []string, rows [][]string) (*OneHotEncoder, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit encoder on empty data")
	}
	if len(columns) != len(rows[0]) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(columns), len(rows[0]))
	}

	categories := make([][]string, len(columns))
	for j := range columns {
		seen := make(map[string]bool)
		for i := range rows {
			seen[rows[i][j]] = true
		}
		levels := make([]string, 0, len(seen))
		for level := range seen {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		categories[j] = levels
	}

	return &OneHotEncoder{Columns: columns, Categories: categories}, nil
}

// FeatureNames returns the encoded column names in their fixed output
// order: for each source column, one name per fitted level, as
// "<column>_<level>".
func (e *OneHotEncoder) FeatureNames() []string {
	var names []string
	for j, col := range e.Columns {
		for _, level := range e.Categories[j] {
			names = append(names, col+"_"+level)
		}
	}
	return names
}

// Levels returns the fitted vocabulary of a named column
func (e *OneHotEncoder) Levels(column string) ([]string, bool) {
	for j, col := range e.Columns {
		if col == column {
			return e.Categories[j], true
		}
	}
	return nil, false
}

// NumFeatures returns the width of the encoded output
func (e *OneHotEncoder) NumFeatures() int {
	n := 0
	for _, levels := range e.Categories {
		n += len(levels)
	}
	return n
}

// Transform encodes rows of categorical values into indicator vectors
// using the fitted vocabularies.
func (e *OneHotEncoder) Transform(rows [][]string) ([][]float64, error) {
	width := e.NumFeatures()
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(e.Columns) {
			return nil, fmt.Errorf("row %d has %d values, encoder fitted on %d columns", i, len(row), len(e.Columns))
		}
		encoded := make([]float64, width)
		offset := 0
		for j := range e.Columns {
			for k, level := range e.Categories[j] {
				if row[j] == level {
					encoded[offset+k] = 1
					break
				}
			}
			offset += len(e.Categories[j])
		}
		out[i] = encoded
	}
	return out, nil
}
