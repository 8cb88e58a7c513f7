package models

import (
	"encoding/json"
	"sort"
	"strconv"
)

// HistoryKey is the session entry the History view reads.
const HistoryKey = "history"

// HistoryEntry is one prediction record as a collaborator posted it. Its
// shape is not fixed.
type HistoryEntry map[string]any

// HistoryTable is the History view's table: one row per entry in insertion
// order, one column per key seen in any entry.
type HistoryTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func NewHistoryTable(entries []HistoryEntry) HistoryTable {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for k := range e {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	rows := make([][]string, len(entries))
	for i, e := range entries {
		row := make([]string, len(cols))
		for j, col := range cols {
			if v, ok := e[col]; ok {
				row[j] = FormatCell(v)
			}
		}
		rows[i] = row
	}
	return HistoryTable{Columns: cols, Rows: rows}
}

// FormatCell renders a decoded JSON value for a table cell.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
