package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Load reads a delimited file with a header row into a Table. The
// pipeline cannot run without its source data, so a missing or
// unreadable file is an error the caller is expected to treat as fatal.
func Load(filePath string) (*Table, error) {
	return LoadWithDelimiter(filePath, ',')
}

// LoadWithDelimiter reads a delimited file using a custom delimiter
func LoadWithDelimiter(filePath string, delimiter rune) (*Table, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset file does not exist: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset must have a header row and at least one data row, got %d rows", len(records))
	}

	columns := make([]string, len(records[0]))
	for i, col := range records[0] {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(record), len(columns))
		}
		row := make([]string, len(record))
		for j, cell := range record {
			row[j] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}
