package model

import (
	"fmt"
	"strings"
)

// RawTable is a header-resolved grid of untyped string cells.
type RawTable struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewRawTable builds a table from grid, taking column names from the row at
// header. Rows above the header are discarded. Column names are trimmed and
// kept unique: the first occurrence keeps the plain name and later repeats
// are suffixed ".1", ".2", ... (so "ИНН/КИО" twice yields "ИНН/КИО" and
// "ИНН/КИО.1"). Blank header cells become "Unnamed: <i>". Rows with only
// blank cells are skipped.
func NewRawTable(grid [][]string, header int) (*RawTable, error) {
	if header < 0 || header >= len(grid) {
		return nil, fmt.Errorf("header row %d out of range (grid has %d rows)", header, len(grid))
	}

	t := &RawTable{index: make(map[string]int)}
	repeats := make(map[string]int)
	for i, cell := range grid[header] {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for {
			if _, dup := t.index[name]; !dup {
				break
			}
			repeats[base]++
			name = fmt.Sprintf("%s.%d", base, repeats[base])
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, name)
	}

	for _, src := range grid[header+1:] {
		row := make([]string, len(t.columns))
		blank := true
		for i := range row {
			if i < len(src) {
				row[i] = src[i]
				if strings.TrimSpace(src[i]) != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Columns returns the unique column names in source order.
func (t *RawTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *RawTable) Len() int { return len(t.rows) }

// Has reports whether column exists, compared trimmed and case-insensitively.
func (t *RawTable) Has(column string) bool {
	_, ok := t.lookup(column)
	return ok
}

// Cell returns the value at row i in column. ok is false when the column does
// not exist or i is out of range.
func (t *RawTable) Cell(i int, column string) (string, bool) {
	if i < 0 || i >= len(t.rows) {
		return "", false
	}
	j, ok := t.lookup(column)
	if !ok {
		return "", false
	}
	return t.rows[i][j], true
}

func (t *RawTable) lookup(column string) (int, bool) {
	column = strings.TrimSpace(column)
	if j, ok := t.index[column]; ok {
		return j, true
	}
	for j, name := range t.columns {
		if strings.EqualFold(name, column) {
			return j, true
		}
	}
	return 0, false
}
