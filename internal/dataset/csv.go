package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column types inferred from cell contents.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
)

type Column struct {
	Name string
	Type string
}

// Table is an in-memory tabular value with named, typed columns. Cells are
// kept as raw text; numeric access parses on demand.
type Table struct {
	Columns []Column
	Rows    [][]string
}

var ErrNoHeader = errors.New("csv file has no header row")

// Load parses UTF-8 CSV with the first row as header and infers a type for
// each column from its non-missing cells.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := records[0]
	table := &Table{
		Columns: make([]Column, len(header)),
		Rows:    records[1:],
	}
	for i, name := range header {
		table.Columns[i] = Column{
			Name: strings.TrimSpace(name),
			Type: inferType(table.Rows, i),
		}
	}
	return table, nil
}

func (t *Table) NumRows() int { return len(t.Rows) }

func (t *Table) NumCols() int { return len(t.Columns) }

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the indexes of integer and float columns, in order.
func (t *Table) NumericColumns() []int {
	var idx []int
	for i, c := range t.Columns {
		if c.Type == TypeInteger || c.Type == TypeFloat {
			idx = append(idx, i)
		}
	}
	return idx
}

// MissingCount counts missing cells in the given column.
func (t *Table) MissingCount(col int) int {
	n := 0
	for _, row := range t.Rows {
		if col >= len(row) || isMissing(row[col]) {
			n++
		}
	}
	return n
}

// NumericValues returns the parsed non-missing values of a numeric column.
// Cells that fail to parse are treated as missing.
func (t *Table) NumericValues(col int) []float64 {
	var vals []float64
	for _, row := range t.Rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

// pairedValues returns the values of two numeric columns restricted to rows
// where both are present.
func (t *Table) pairedValues(a, b int) ([]float64, []float64) {
	var xs, ys []float64
	for _, row := range t.Rows {
		if a >= len(row) || b >= len(row) || isMissing(row[a]) || isMissing(row[b]) {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(row[a]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[b]), 64)
		if errX != nil || errY != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

func isMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "nan", "null":
		return true
	}
	return false
}

func inferType(rows [][]string, col int) string {
	sawValue := false
	allInt := true
	allFloat := true

	for _, row := range rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		sawValue = true

		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
	}

	switch {
	case !sawValue:
		return TypeString
	case allInt:
		return TypeInteger
	case allFloat:
		return TypeFloat
	default:
		return TypeString
	}
}
