// Package table provides an append-only ordered-row table with a fixed
// column schema and CSV persistence.
//
// The collection store keeps its two datasets in tables: the repository
// summary (one row per repository) and one language matrix per repository
// (one row per sampled release). Rows are plain string records; typed
// encoding and decoding is the caller's concern. The schema is fixed at
// construction, appends are arity-checked, and a partial-row constructor
// zero-fills the columns a caller does not provide.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
)

// Table is an ordered collection of rows sharing a fixed column schema.
// It is append-only except for delete-by-predicate, mirroring how the
// collection store updates entries (remove old row, append new one).
type Table struct {
	columns []string
	index   map[string]int // column name -> position
	rows    [][]string
}

// New creates an empty table with the given column schema.
// Column names must be unique.
func New(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
	}
	return &Table{
		columns: slices.Clone(columns),
		index:   index,
	}, nil
}

// Columns returns the column schema in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a full row. The record length must match the schema.
func (t *Table) Append(record []string) error {
	if len(record) != len(t.columns) {
		return fmt.Errorf("record has %d values, schema has %d columns", len(record), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(record))
	return nil
}

// AppendPartial adds a row built from a partial column-to-value mapping.
// Columns absent from values are filled with fill; unknown column names are
// rejected. This is the contract for sparse rows (a language matrix row only
// names the extensions that actually appeared in a tree).
func (t *Table) AppendPartial(values map[string]string, fill string) error {
	record := make([]string, len(t.columns))
	for i := range record {
		record[i] = fill
	}
	for col, v := range values {
		i, ok := t.index[col]
		if !ok {
			return fmt.Errorf("unknown column %q", col)
		}
		record[i] = v
	}
	t.rows = append(t.rows, record)
	return nil
}

// Row returns a copy of the row at position i.
func (t *Table) Row(i int) []string { return slices.Clone(t.rows[i]) }

// Rows returns a copy of all rows in order.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = slices.Clone(r)
	}
	return rows
}

// Value returns the value of the named column in row i.
func (t *Table) Value(i int, column string) (string, error) {
	pos, ok := t.index[column]
	if !ok {
		return "", fmt.Errorf("unknown column %q", column)
	}
	return t.rows[i][pos], nil
}

// Column returns all values of the named column in row order.
func (t *Table) Column(column string) ([]string, error) {
	pos, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	values := make([]string, len(t.rows))
	for i, r := range t.rows {
		values[i] = r[pos]
	}
	return values, nil
}

// DeleteWhere removes all rows for which the named column equals value.
// It returns the number of rows removed.
func (t *Table) DeleteWhere(column, value string) (int, error) {
	pos, ok := t.index[column]
	if !ok {
		return 0, fmt.Errorf("unknown column %q", column)
	}
	kept := t.rows[:0]
	removed := 0
	for _, r := range t.rows {
		if r[pos] == value {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return removed, nil
}

// WriteFile writes the table as CSV: a header row followed by the data rows.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a CSV file written by [Table.WriteFile]. The first record
// becomes the schema; every following record must match its arity.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}

	t, err := New(records[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t.rows = records[1:]
	return t, nil
}
