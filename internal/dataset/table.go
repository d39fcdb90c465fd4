package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Column is a named column of raw cell values. Cells are kept as strings at
// the storage layer; typed extraction happens at read time so one table can
// serve both numeric and categorical consumers.
type Column struct {
	Name   string
	Values []string
}

// Floats parses the column as numeric, dropping missing, unparseable,
// NaN and infinite cells.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, raw := range c.Values {
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Labels returns the column as categorical labels, dropping missing cells.
func (c *Column) Labels() []string {
	out := make([]string, 0, len(c.Values))
	for _, raw := range c.Values {
		if raw == "" {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// Table is a column-oriented in-memory dataset. Columns keep their insertion
// order so CSV round-trips are stable.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends a column. All columns must have the same length.
func (t *Table) AddColumn(name string, values []string) error {
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(t.columns) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", name, len(values), t.rows)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, &Column{Name: name, Values: values})
	t.rows = len(values)
	return nil
}

// AddFloatColumn appends a numeric column, formatting values for storage.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return t.AddColumn(name, cells)
}

// Column returns the named column, or false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[idx], true
}

// ColumnNames returns column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Row returns the raw cells of one row in column order.
func (t *Table) Row(i int) ([]string, error) {
	if i < 0 || i >= t.rows {
		return nil, fmt.Errorf("row %d out of range [0,%d)", i, t.rows)
	}
	cells := make([]string, len(t.columns))
	for j, c := range t.columns {
		cells[j] = c.Values[i]
	}
	return cells, nil
}
