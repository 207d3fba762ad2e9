package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
)

// table is an ordered sequence of records with named fields, read from a
// delimited file. Row order is preserved; cell lookup is by column name.
type table struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// readTable loads a CSV file with a header row.
func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file, expected a header row", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	return &table{path: path, columns: cols, rows: records[1:]}, nil
}

func (t *table) has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// missing returns the subset of required columns absent from the header,
// in the order given.
func (t *table) missing(required ...string) []string {
	var out []string
	for _, c := range required {
		if !t.has(c) {
			out = append(out, c)
		}
	}
	return out
}

// cell returns the named column's value on a row, or "" when the column
// is absent or the row is short.
func (t *table) cell(row int, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

func (t *table) len() int { return len(t.rows) }

// sortedKeys returns the keys of set in sorted order, for stable error
// messages.
func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
