package preprocess

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	dataset "github.com/FarmSight/FarmSight-Go/pipelines/Dataset"
)

// Pipeline bundles the fitted imputer, scaler and encoder together
// with the column metadata that fixes the output feature order:
// numeric columns in source order, then one-hot columns in fitted
// per-category order. A Pipeline is only produced by Fit (or Restore
// from persisted artifacts) and all its transform methods are
// read-only, which is what guarantees the fit-once/transform-many
// discipline.
type Pipeline struct {
	InputColumns       []string       `json:"input_columns"`
	NumericColumns     []string       `json:"numeric_columns"`
	CategoricalColumns []string       `json:"categorical_columns"`
	Imputer            *MeanImputer   `json:"imputer"`
	Scaler             *MinMaxScaler  `json:"scaler"`
	Encoder            *OneHotEncoder `json:"encoder"`
}

// Fit learns imputation means, scaling extrema and categorical
// vocabularies from the training table only. Scaling extrema are
// computed on imputed values, mirroring the impute-then-scale order
// used at transform time.
func Fit(train *dataset.Table, inputColumns, numericColumns, categoricalColumns []string) (*Pipeline, error) {
	if train.NumRows() == 0 {
		return nil, fmt.Errorf("cannot fit pipeline on empty training table")
	}

	numericX, err := NumericMatrix(train, numericColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to extract numeric columns: %w", err)
	}
	imputer, err := FitMeanImputer(numericColumns, numericX)
	if err != nil {
		return nil, fmt.Errorf("failed to fit imputer: %w", err)
	}
	imputedX, err := imputer.Transform(numericX)
	if err != nil {
		return nil, fmt.Errorf("failed to impute training data: %w", err)
	}
	scaler, err := FitMinMaxScaler(numericColumns, imputedX)
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}

	categoricalRows, err := CategoricalMatrix(train, categoricalColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to extract categorical columns: %w", err)
	}
	encoder, err := FitOneHotEncoder(categoricalColumns, categoricalRows)
	if err != nil {
		return nil, fmt.Errorf("failed to fit encoder: %w", err)
	}

	return &Pipeline{
		InputColumns:       inputColumns,
		NumericColumns:     numericColumns,
		CategoricalColumns: categoricalColumns,
		Imputer:            imputer,
		Scaler:             scaler,
		Encoder:            encoder,
	}, nil
}

// Restore reassembles a fitted pipeline from persisted parts,
// validating that the parts agree on column metadata.
func Restore(inputColumns, numericColumns, categoricalColumns []string, imputer *MeanImputer, scaler *MinMaxScaler, encoder *OneHotEncoder) (*Pipeline, error) {
	if imputer == nil || scaler == nil || encoder == nil {
		return nil, fmt.Errorf("all fitted transformers are required")
	}
	if len(imputer.Columns) != len(numericColumns) || len(scaler.Columns) != len(numericColumns) {
		return nil, fmt.Errorf("numeric transformer columns do not match numeric column list")
	}
	for i, col := range numericColumns {
		if imputer.Columns[i] != col || scaler.Columns[i] != col {
			return nil, fmt.Errorf("numeric column order mismatch at %d: %q", i, col)
		}
	}
	if len(encoder.Columns) != len(categoricalColumns) {
		return nil, fmt.Errorf("encoder columns do not match categorical column list")
	}
	for i, col := range categoricalColumns {
		if encoder.Columns[i] != col {
			return nil, fmt.Errorf("categorical column order mismatch at %d: %q", i, col)
		}
	}
	return &Pipeline{
		InputColumns:       inputColumns,
		NumericColumns:     numericColumns,
		CategoricalColumns: categoricalColumns,
		Imputer:            imputer,
		Scaler:             scaler,
		Encoder:            encoder,
	}, nil
}

// FeatureNames returns the fixed output column order every transform
// reproduces: numeric columns first, then encoded indicator columns.
func (p *Pipeline) FeatureNames() []string {
	names := make([]string, 0, len(p.NumericColumns)+p.Encoder.NumFeatures())
	names = append(names, p.NumericColumns...)
	names = append(names, p.Encoder.FeatureNames()...)
	return names
}

// NumFeatures returns the width of the transformed feature vector
func (p *Pipeline) NumFeatures() int {
	return len(p.NumericColumns) + p.Encoder.NumFeatures()
}

// Transform applies the fitted transforms to every row of a table and
// returns the feature matrix. It can be called any number of times
// with identical results.
func (p *Pipeline) Transform(t *dataset.Table) ([][]float64, error) {
	numericX, err := NumericMatrix(t, p.NumericColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to extract numeric columns: %w", err)
	}
	imputed, err := p.Imputer.Transform(numericX)
	if err != nil {
		return nil, fmt.Errorf("imputation failed: %w", err)
	}
	scaled, err := p.Scaler.Transform(imputed)
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %w", err)
	}

	categoricalRows, err := CategoricalMatrix(t, p.CategoricalColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to extract categorical columns: %w", err)
	}
	encoded, err := p.Encoder.Transform(categoricalRows)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}

	X := make([][]float64, len(scaled))
	for i := range scaled {
		row := make([]float64, 0, len(scaled[i])+len(encoded[i]))
		row = append(row, scaled[i]...)
		row = append(row, encoded[i]...)
		X[i] = row
	}
	return X, nil
}

// TransformRow transforms a single raw record keyed by column name,
// mirroring the training schema. Missing numeric keys impute from the
// training mean; missing categorical keys encode as all zeros.
func (p *Pipeline) TransformRow(record map[string]string) ([]float64, error) {
	row := make([]string, 0, len(p.NumericColumns)+len(p.CategoricalColumns))
	columns := make([]string, 0, cap(row))
	columns = append(columns, p.NumericColumns...)
	columns = append(columns, p.CategoricalColumns...)
	for _, col := range columns {
		row = append(row, record[col])
	}
	t := &dataset.Table{Columns: columns, Rows: [][]string{row}}

	X, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	return X[0], nil
}

// NumericMatrix extracts the named columns from a table as floats.
// Empty or unparsable cells become NaN, the in-band marker the imputer
// fills.
func NumericMatrix(t *dataset.Table, columns []string) ([][]float64, error) {
	indices := make([]int, len(columns))
	for j, col := range columns {
		idx := t.ColumnIndex(col)
		if idx == -1 {
			return nil, fmt.Errorf("numeric column %q not found", col)
		}
		indices[j] = idx
	}

	X := make([][]float64, t.NumRows())
	for i, row := range t.Rows {
		values := make([]float64, len(columns))
		for j, idx := range indices {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				values[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				values[j] = math.NaN()
				continue
			}
			values[j] = v
		}
		X[i] = values
	}
	return X, nil
}

// CategoricalMatrix extracts the named columns from a table as strings
func CategoricalMatrix(t *dataset.Table, columns []string) ([][]string, error) {
	indices := make([]int, len(columns))
	for j, col := range columns {
		idx := t.ColumnIndex(col)
		if idx == -1 {
			return nil, fmt.Errorf("categorical column %q not found", col)
		}
		indices[j] = idx
	}

	rows := make([][]string, t.NumRows())
	for i, row := range t.Rows {
		values := make([]string, len(columns))
		for j, idx := range indices {
			values[j] = row[idx]
		}
		rows[i] = values
	}
	return rows, nil
}
