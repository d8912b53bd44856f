// Package dataset holds the read-only reference table of historical patients.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// Column names shared by the dataset, the form and the feature row.
const (
	ColumnAge           = "Age"
	ColumnHeight        = "Height"
	ColumnWeight        = "Weight"
	ColumnGender        = "Gender"
	ColumnFamilyHistory = "family_history"
	ColumnFAVC          = "FAVC"
	ColumnFCVC          = "FCVC"
	ColumnNCP           = "NCP"
	ColumnCAEC          = "CAEC"
	ColumnSMOKE         = "SMOKE"
	ColumnSCC           = "SCC"
	ColumnFAF           = "FAF"
	ColumnCALC          = "CALC"
	ColumnMTRANS        = "MTRANS"
	ColumnLabel         = "Obesity"
)

// RequiredColumns must be present in every reference dataset. The water and
// screen-time columns are checked by the feature assembler because their
// naming varies between datasets.
var RequiredColumns = []string{
	ColumnAge, ColumnHeight, ColumnWeight, ColumnGender, ColumnFamilyHistory,
	ColumnFAVC, ColumnFCVC, ColumnNCP, ColumnCAEC, ColumnSMOKE, ColumnSCC,
	ColumnFAF, ColumnCALC, ColumnMTRANS, ColumnLabel,
}

var ErrUnknownColumn = errors.New("unknown column")

// Table is immutable after Parse returns.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// DelimiterFor picks the separator from the file extension: .tsv files are
// tab separated, anything else is treated as comma separated.
func DelimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Parse reads a header row followed by data rows. Every row must have as
// many cells as the header.
func Parse(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty dataset")
	}

	header := make([]string, len(records[0]))
	index := make(map[string]int, len(header))
	for i, cell := range records[0] {
		name := cleanCell(cell)
		if name == "" {
			return nil, fmt.Errorf("empty header at column %d", i+1)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		header[i] = name
		index[name] = i
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(record))
		for i, cell := range record {
			row[i] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}

	return &Table{header: header, index: index, rows: rows}, nil
}

// Validate reports every required column missing from the table.
func (t *Table) Validate(required []string) error {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Strings returns a copy of one column.
func (t *Table) Strings(column string) ([]string, error) {
	idx, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats parses one column as numbers.
func (t *Table) Floats(column string) ([]float64, error) {
	values, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", column, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// Distinct lists the values of a column in order of first appearance.
func (t *Table) Distinct(column string) ([]string, error) {
	values, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func cleanCell(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	return strings.TrimSpace(cell)
}
