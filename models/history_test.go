package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHistoryTable(t *testing.T) {
	tests := []struct {
		name    string
		entries []HistoryEntry
		cols    []string
		rows    [][]string
	}{
		{
			name:    "no entries",
			entries: nil,
			cols:    []string{},
			rows:    [][]string{},
		},
		{
			name: "keeps insertion order",
			entries: []HistoryEntry{
				{"customer": "C-3", "prediction": "Yes", "probability": 0.81},
				{"customer": "C-1", "prediction": "No", "probability": 0.12},
				{"customer": "C-2", "prediction": "No", "probability": 0.4},
			},
			cols: []string{"customer", "prediction", "probability"},
			rows: [][]string{
				{"C-3", "Yes", "0.81"},
				{"C-1", "No", "0.12"},
				{"C-2", "No", "0.4"},
			},
		},
		{
			name: "columns are the union of keys",
			entries: []HistoryEntry{
				{"model": "xgb"},
				{"tenure": float64(12), "churn": true},
			},
			cols: []string{"churn", "model", "tenure"},
			rows: [][]string{
				{"", "xgb", ""},
				{"true", "", "12"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewHistoryTable(tt.entries)
			assert.Equal(t, tt.cols, table.Columns)
			assert.Equal(t, tt.rows, table.Rows)
			assert.Len(t, table.Rows, len(tt.entries))
		})
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "3", FormatCell(3))
	assert.Equal(t, "2.5", FormatCell(2.5))
	assert.Equal(t, "false", FormatCell(false))
	assert.Equal(t, `["a","b"]`, FormatCell([]any{"a", "b"}))
	assert.Equal(t, `{"k":1}`, FormatCell(map[string]any{"k": 1}))
}
