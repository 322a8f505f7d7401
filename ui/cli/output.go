// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderRecords writes rows as a table, json or yaml. json and yaml emit a
// list of column->value objects.
func renderRecords(w io.Writer, format string, columns []string, records [][]any) error {
	switch format {
	case "", "table":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(columns...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for _, rec := range records {
			cells := make([]string, len(rec))
			for i, v := range rec {
				cells[i] = cellText(v)
			}
			t.Row(cells...)
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recordMaps(columns, records))
	case "yaml":
		b, err := yaml.Marshal(recordMaps(columns, records))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func recordMaps(columns []string, records [][]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		m := make(map[string]any, len(columns))
		for i, c := range columns {
			if i < len(rec) {
				v := rec[i]
				if b, ok := v.([]byte); ok {
					v = string(b)
				}
				m[c] = v
			}
		}
		out = append(out, m)
	}
	return out
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
