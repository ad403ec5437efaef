package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Table holds tabular data as raw string cells under an ordered header.
// Cells keep their source representation; typed views are derived on
// demand so that downstream transforms decide how to treat missing or
// malformed values.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the index of a named column, or -1 if absent
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of a named column
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx == -1 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Subset returns a new table containing the rows at the given indices.
// Row slices are shared with the source table; rows are never mutated
// after loading.
func (t *Table) Subset(indices []int) (*Table, error) {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(t.Rows) {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", idx, len(t.Rows))
		}
		rows[i] = t.Rows[idx]
	}
	return &Table{Columns: t.Columns, Rows: rows}, nil
}

// InputColumns returns all columns except the given targets, preserving
// the source column order. Missing targets are an error so that a typo
// in configuration fails loudly rather than leaking a label into the
// feature set.
func (t *Table) InputColumns(targets []string) ([]string, error) {
	for _, target := range targets {
		if t.ColumnIndex(target) == -1 {
			return nil, fmt.Errorf("target column %q not found in dataset", target)
		}
	}
	var inputs []string
	for _, col := range t.Columns {
		isTarget := false
		for _, target := range targets {
			if col == target {
				isTarget = true
				break
			}
		}
		if !isTarget {
			inputs = append(inputs, col)
		}
	}
	return inputs, nil
}

// SplitColumnTypes partitions the given columns into numeric and
// categorical. A column is numeric when every non-empty cell parses as
// a float and at least one cell is non-empty; everything else is
// categorical.
func (t *Table) SplitColumnTypes(columns []string) (numeric, categorical []string) {
	for _, col := range columns {
		idx := t.ColumnIndex(col)
		if idx == -1 {
			continue
		}
		nonEmpty := 0
		isNumeric := true
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isNumeric = false
				break
			}
		}
		if isNumeric && nonEmpty > 0 {
			numeric = append(numeric, col)
		} else {
			categorical = append(categorical, col)
		}
	}
	return numeric, categorical
}
