package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// CorrelationPlaceholder is emitted verbatim when fewer than two numeric
	// columns exist.
	CorrelationPlaceholder = "Not enough numerical columns for correlation analysis."

	sampleRowLimit = 10
)

// Summarize renders a text digest of the table for inclusion in a prompt:
// shape, columns, types, missing counts, descriptive statistics, a sample of
// the first rows, a correlation matrix (or placeholder), and the topic. Any
// internal failure is converted to a single descriptive error string.
func Summarize(t *Table, topic string) string {
	out, err := summarize(t, topic)
	if err != nil {
		return fmt.Sprintf("Error analyzing data: %v", err)
	}
	return out
}

func summarize(t *Table, topic string) (string, error) {
	if t == nil {
		return "", errors.New("no dataset provided")
	}
	if t.NumCols() == 0 {
		return "", errors.New("dataset has no columns")
	}
	if t.NumRows() == 0 {
		return "", errors.New("dataset has no data rows")
	}

	var b strings.Builder

	b.WriteString("## Dataset Overview\n")
	fmt.Fprintf(&b, "Dataset shape: %d rows, %d columns\n", t.NumRows(), t.NumCols())
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(t.ColumnNames(), ", "))

	types := make([]string, len(t.Columns))
	missing := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		types[i] = fmt.Sprintf("%s: %s", c.Name, c.Type)
		missing[i] = fmt.Sprintf("%s: %d", c.Name, t.MissingCount(i))
	}
	fmt.Fprintf(&b, "Data types: %s\n", strings.Join(types, ", "))
	fmt.Fprintf(&b, "Missing values: %s\n", strings.Join(missing, ", "))

	b.WriteString("\n## Statistical Summary\n")
	b.WriteString(renderDescribe(t))

	fmt.Fprintf(&b, "\n## Sample Data (First %d rows)\n", sampleRowLimit)
	b.WriteString(renderSample(t, sampleRowLimit))

	b.WriteString("\n## Correlation Matrix\n")
	b.WriteString(renderCorrelation(t))

	b.WriteString("\n## Analysis Request\n")
	fmt.Fprintf(&b, "User wants to analyze: %s\n", topic)
	b.WriteString(`
Please provide comprehensive insights based on this data including:
- Key trends and patterns
- Statistical relationships
- Data quality assessment
- Anomalies or outliers
- Actionable recommendations
`)

	return b.String(), nil
}

var describeRows = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

func renderDescribe(t *Table) string {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return "No numeric columns to summarize.\n"
	}

	header := []string{""}
	stats := make([]Describe, len(numeric))
	for i, col := range numeric {
		header = append(header, t.Columns[col].Name)
		stats[i] = describe(t.NumericValues(col))
	}

	rows := [][]string{header}
	for _, stat := range describeRows {
		row := []string{stat}
		for _, d := range stats {
			row = append(row, formatStat(stat, d))
		}
		rows = append(rows, row)
	}
	return renderAligned(rows)
}

func formatStat(name string, d Describe) string {
	switch name {
	case "count":
		return strconv.Itoa(d.Count)
	case "mean":
		return formatFloat(d.Mean)
	case "std":
		return formatFloat(d.Std)
	case "min":
		return formatFloat(d.Min)
	case "25%":
		return formatFloat(d.Q25)
	case "50%":
		return formatFloat(d.Q50)
	case "75%":
		return formatFloat(d.Q75)
	case "max":
		return formatFloat(d.Max)
	}
	return ""
}

func renderSample(t *Table, limit int) string {
	n := t.NumRows()
	if n > limit {
		n = limit
	}

	rows := make([][]string, 0, n+1)
	rows = append(rows, t.ColumnNames())
	for i := 0; i < n; i++ {
		rows = append(rows, t.Rows[i])
	}
	return renderAligned(rows)
}

func renderCorrelation(t *Table) string {
	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return CorrelationPlaceholder + "\n"
	}

	header := []string{""}
	for _, col := range numeric {
		header = append(header, t.Columns[col].Name)
	}

	rows := [][]string{header}
	for _, a := range numeric {
		row := []string{t.Columns[a].Name}
		for _, b := range numeric {
			xs, ys := t.pairedValues(a, b)
			row = append(row, formatFloat(pearson(xs, ys)))
		}
		rows = append(rows, row)
	}
	return renderAligned(rows)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	// round to six decimals, then drop trailing zeros
	rounded := math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// renderAligned renders rows of cells as right-padded columns, one row per
// line. All rows should have the same length; short rows are padded.
func renderAligned(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	colWidths := make([]int, width)
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", colWidths[i]-len(cell)))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}
	return b.String()
}
