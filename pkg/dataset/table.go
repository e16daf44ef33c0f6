package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// SourceColumn holds the file a row was loaded from.
	SourceColumn = "__source_file"

	// CountryColumn holds the group a row belongs to.
	CountryColumn = "country"
)

// Table is a parsed CSV file: named columns and ordered rows. Every row has
// exactly len(Columns) cells.
type Table struct {
	Source  string     `json:"source,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}

	return slices.Index(t.Columns, col)
}

// HasColumn reports whether col is one of the table's columns.
func (t *Table) HasColumn(col string) bool {
	return t.Index(col) >= 0
}

// Column returns the cells of col in row order.
func (t *Table) Column(col string) ([]string, error) {
	i := t.Index(col)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}

	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}

	return out, nil
}

// Floats returns the numeric values of col along with the indexes of the
// rows they came from. Empty and non-numeric cells are skipped.
func (t *Table) Floats(col string) ([]float64, []int, error) {
	cells, err := t.Column(col)
	if err != nil {
		return nil, nil, err
	}

	values := make([]float64, 0, len(cells))
	rows := make([]int, 0, len(cells))

	for r, c := range cells {
		v, ok := ParseFloat(c)
		if !ok {
			continue
		}

		values = append(values, v)
		rows = append(rows, r)
	}

	return values, rows, nil
}

// NumericColumns returns the columns in which every non-empty cell is a
// number and at least one cell is non-empty. Metadata columns (those with a
// "__" prefix) are never numeric.
func (t *Table) NumericColumns() []string {
	if t == nil {
		return nil
	}

	cols := []string{}

	for i, col := range t.Columns {
		if strings.HasPrefix(col, "__") {
			continue
		}

		if numericAt(t.Rows, i) {
			cols = append(cols, col)
		}
	}

	return cols
}

func numericAt(rows [][]string, i int) bool {
	seen := false

	for _, row := range rows {
		c := strings.TrimSpace(row[i])
		if c == "" {
			continue
		}

		if _, ok := ParseFloat(c); !ok {
			return false
		}

		seen = true
	}

	return seen
}

// ParseFloat parses a trimmed cell as a float. NaN, infinite and empty cells
// are reported as missing.
func ParseFloat(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// Set assigns value to col in every row, appending the column if it does not
// exist yet.
func (t *Table) Set(col, value string) {
	i := t.Index(col)
	if i < 0 {
		t.Columns = append(t.Columns, col)
		for r := range t.Rows {
			t.Rows[r] = append(t.Rows[r], value)
		}

		return
	}

	for r := range t.Rows {
		t.Rows[r][i] = value
	}
}

// SetDefault is like [Table.Set], but leaves an existing column untouched.
func (t *Table) SetDefault(col, value string) {
	if !t.HasColumn(col) {
		t.Set(col, value)
	}
}

// Head returns a table holding at most the first n rows. A negative n keeps
// all rows. Rows are shared with t.
func (t *Table) Head(n int) *Table {
	rows := t.Rows
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}

	return &Table{
		Source:  t.Source,
		Columns: t.Columns,
		Rows:    rows,
	}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = slices.Clone(r)
	}

	return &Table{
		Source:  t.Source,
		Columns: slices.Clone(t.Columns),
		Rows:    rows,
	}
}

// WriteCSV writes the header and rows of t to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	return nil
}

// Concat stacks tables vertically. The result holds the union of all
// columns in first-seen order; cells missing from a table are left empty.
func Concat(tables ...*Table) *Table {
	out := &Table{Columns: []string{}, Rows: [][]string{}}

	sources := []string{}

	for _, t := range tables {
		if t == nil {
			continue
		}

		if t.Source != "" {
			sources = append(sources, t.Source)
		}

		for _, c := range t.Columns {
			if !slices.Contains(out.Columns, c) {
				out.Columns = append(out.Columns, c)
			}
		}
	}

	for _, t := range tables {
		if t == nil {
			continue
		}

		pos := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			pos[i] = slices.Index(out.Columns, c)
		}

		for _, row := range t.Rows {
			r := make([]string, len(out.Columns))
			for i, cell := range row {
				r[pos[i]] = cell
			}

			out.Rows = append(out.Rows, r)
		}
	}

	out.Source = strings.Join(sources, ", ")

	return out
}

// GroupColumn picks the column used to group rows for display: "region" if
// present, else "site", else [CountryColumn].
func GroupColumn(t *Table) string {
	for _, c := range []string{"region", "site"} {
		if t.HasColumn(c) {
			return c
		}
	}

	return CountryColumn
}
