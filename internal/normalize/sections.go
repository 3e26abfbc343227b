package normalize

import (
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// ParseSections converts decoded section objects into typed sections
func ParseSections(items []jsonval.Value) []models.Section {
	sections := make([]models.Section, 0, len(items))
	for _, item := range items {
		sections = append(sections, ParseSection(item))
	}
	return sections
}

// ParseSection converts one decoded section object. Anything that is not an
// object, or whose type is not known, becomes an unknown section carrying
// the original payload.
func ParseSection(item jsonval.Value) models.Section {
	if !item.IsObject() {
		return models.Section{Type: models.SectionUnknown, Payload: item}
	}

	rawType, _ := item.GetString("type")
	title, _ := item.GetString("title")
	section := models.Section{
		RawType: rawType,
		Title:   strings.TrimSpace(title),
	}

	switch models.SectionType(strings.ToLower(strings.TrimSpace(rawType))) {
	case models.SectionMetrics:
		section.Type = models.SectionMetrics
		section.Metrics = parseMetrics(first(item, "data", "metrics"))
	case models.SectionTable:
		section.Type = models.SectionTable
		section.Rows = parseRows(first(item, "rows", "data"))
		section.Columns = parseColumns(item)
		section.ChartColumn, _ = item.GetString("chart_column")
	case models.SectionInsights:
		section.Type = models.SectionInsights
		section.Entries = parseEntries(first(item, "data", "items", "entries"))
	case models.SectionRecommendations:
		section.Type = models.SectionRecommendations
		section.Entries = parseEntries(first(item, "data", "items", "entries"))
	default:
		section.Type = models.SectionUnknown
		section.Payload = item
	}
	return section
}

// first returns the first member of obj present under one of keys
func first(obj jsonval.Value, keys ...string) jsonval.Value {
	for _, key := range keys {
		if v, ok := obj.Get(key); ok {
			return v
		}
	}
	return jsonval.NullValue()
}

// parseMetrics accepts a label->value object or a list of {label|name, value} objects
func parseMetrics(data jsonval.Value) []models.Metric {
	var metrics []models.Metric
	for _, m := range data.Members() {
		metrics = append(metrics, models.Metric{Label: m.Key, Value: m.Value})
	}
	for _, item := range data.Items() {
		label, ok := item.GetString("label")
		if !ok {
			label, ok = item.GetString("name")
		}
		if !ok {
			continue
		}
		value, _ := item.Get("value")
		metrics = append(metrics, models.Metric{Label: label, Value: value})
	}
	return metrics
}

func parseRows(data jsonval.Value) []jsonval.Value {
	if data.IsObject() {
		return []jsonval.Value{data}
	}
	rows := make([]jsonval.Value, 0, data.Len())
	for _, item := range data.Items() {
		if item.IsObject() {
			rows = append(rows, item)
		}
	}
	return rows
}

func parseColumns(item jsonval.Value) []string {
	cols, ok := item.Get("columns")
	if !ok {
		return nil
	}
	var out []string
	for _, c := range cols.Items() {
		if name := c.Display(); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func parseEntries(data jsonval.Value) []jsonval.Value {
	switch data.Kind() {
	case jsonval.Null:
		return nil
	case jsonval.Array:
		return data.Items()
	}
	return []jsonval.Value{data}
}
