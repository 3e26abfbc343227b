package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// BuildTable projects object rows onto columns. With an allow-list, missing
// cells are empty; without one, columns are the union of row keys in first-seen
// order. Nested values are shown as JSON.
func BuildTable(rows []jsonval.Value, allow []string) *Table {
	columns := allow
	if len(columns) == 0 {
		columns = unionKeys(rows)
	}

	table := &Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row.Get(col); ok {
				cells[i] = Cell(v)
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// Cell formats a value for a table cell
func Cell(v jsonval.Value) string {
	switch v.Kind() {
	case jsonval.Array, jsonval.Object:
		return v.JSON()
	}
	return v.Display()
}

func unionKeys(rows []jsonval.Value) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, row := range rows {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// ChartFor picks the chart series of a table. The first column is the
// category axis. An explicit hint wins, then a rejection-rate column (values
// like "20.0%"), then the first column whose every value is a JSON number.
func ChartFor(rows []jsonval.Value, columns []string, hint string) *Chart {
	if len(columns) < 2 || len(rows) == 0 {
		return nil
	}
	category := columns[0]

	if hint != "" && hint != category && contains(columns, hint) {
		if chart := lenientSeries(rows, category, hint); chart != nil {
			return chart
		}
	}

	for _, col := range columns[1:] {
		if isRejectionRate(col) {
			if chart := lenientSeries(rows, category, col); chart != nil {
				return chart
			}
		}
	}

	for _, col := range columns[1:] {
		if chart := strictSeries(rows, category, col); chart != nil {
			return chart
		}
	}
	return nil
}

func isRejectionRate(column string) bool {
	lower := strings.ToLower(column)
	return strings.Contains(lower, "rejection") && strings.Contains(lower, "rate")
}

// lenientSeries accepts numbers and numeric strings with an optional trailing
// %; rows whose value does not parse are left out of the chart.
func lenientSeries(rows []jsonval.Value, category, column string) *Chart {
	chart := &Chart{Column: column}
	for _, row := range rows {
		v, ok := row.Get(column)
		if !ok {
			continue
		}
		f, ok := ParseNumber(v)
		if !ok {
			continue
		}
		cat, _ := row.Get(category)
		chart.Categories = append(chart.Categories, cat.Display())
		chart.Values = append(chart.Values, f)
	}
	if len(chart.Values) == 0 {
		return nil
	}
	return chart
}

// strictSeries requires every row to carry a JSON number in column
func strictSeries(rows []jsonval.Value, category, column string) *Chart {
	chart := &Chart{Column: column}
	for _, row := range rows {
		v, ok := row.Get(column)
		if !ok || !v.IsNumber() {
			return nil
		}
		f, ok := v.Float()
		if !ok || !finite(f) {
			return nil
		}
		cat, _ := row.Get(category)
		chart.Categories = append(chart.Categories, cat.Display())
		chart.Values = append(chart.Values, f)
	}
	return chart
}

// ParseNumber reads a number or a numeric string such as "16.7%" or " 42 ".
// Only finite values are accepted.
func ParseNumber(v jsonval.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, finite(f)
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
