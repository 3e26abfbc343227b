package render

import (
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
	"github.com/fmuoria/hiring-agent/internal/normalize"
)

// artifactMarker is what an upstream serializer emits for an object it could not print
const artifactMarker = "[object Object]"

const defaultTitle = "Agent Analysis"

// Options carry per-agent rendering hints
type Options struct {
	// Title is used when the response has no display_title
	Title string
	// ChartColumn names the table column to chart when the section has no hint of its own
	ChartColumn string
}

// Render builds the view of a standardized response. It returns false when
// there are no sections, in which case callers fall back to RenderRecords.
func Render(resp *models.StandardizedResponse, opts Options) (*View, bool) {
	if resp == nil || len(resp.Sections) == 0 {
		return nil, false
	}

	view := &View{Title: firstNonEmpty(resp.DisplayTitle, opts.Title, resp.AgentName, defaultTitle)}
	for _, section := range resp.Sections {
		switch section.Type {
		case models.SectionMetrics:
			renderMetrics(view, section)
		case models.SectionTable:
			renderTable(view, section, opts)
		case models.SectionInsights, models.SectionRecommendations:
			renderList(view, section)
		default:
			renderUnknown(view, section)
		}
	}
	return view, true
}

func renderMetrics(view *View, section models.Section) {
	if len(section.Metrics) == 0 {
		return
	}
	tiles := make([]Tile, 0, len(section.Metrics))
	for _, m := range section.Metrics {
		tiles = append(tiles, Tile{Label: m.Label, Value: m.Value.Display()})
	}
	view.add(Block{Kind: MetricsBlock, Title: section.Title, Tiles: chunkTiles(tiles)})
}

func chunkTiles(tiles []Tile) [][]Tile {
	var rows [][]Tile
	for start := 0; start < len(tiles); start += TilesPerRow {
		end := start + TilesPerRow
		if end > len(tiles) {
			end = len(tiles)
		}
		rows = append(rows, tiles[start:end])
	}
	return rows
}

func renderTable(view *View, section models.Section, opts Options) {
	if len(section.Rows) == 0 {
		return
	}
	table := BuildTable(section.Rows, section.Columns)
	if n := len(table.Rows); n > 0 && n <= MaxChartRows {
		table.Chart = ChartFor(section.Rows, table.Columns, firstNonEmpty(section.ChartColumn, opts.ChartColumn))
	}
	view.add(Block{Kind: TableBlock, Title: section.Title, Table: table})
}

func renderList(view *View, section models.Section) {
	var items []string
	for _, entry := range normalize.Expand(section.Entries) {
		text := normalize.Clean(entry)
		if section.Type == models.SectionRecommendations {
			text = strings.TrimSpace(normalize.StripNumbering(text))
		}
		if text == "" || text == artifactMarker {
			continue
		}
		items = append(items, text)
	}
	if len(items) == 0 {
		return
	}
	view.add(Block{Kind: ListBlock, Title: section.Title, ListKind: section.Type, Items: items})
}

func renderUnknown(view *View, section models.Section) {
	view.add(Block{
		Kind:  RawBlock,
		Title: firstNonEmpty(section.Title, section.RawType),
		Text:  section.Payload.Indent(),
	})
}

// RenderRecords shows legacy row records as a single table
func RenderRecords(records []jsonval.Value, title string) *View {
	view := &View{Title: firstNonEmpty(title, defaultTitle)}

	rows := make([]jsonval.Value, 0, len(records))
	for _, r := range records {
		if r.IsObject() {
			rows = append(rows, r)
			continue
		}
		rows = append(rows, jsonval.ObjectValue(jsonval.Member{Key: "value", Value: r}))
	}

	if len(rows) == 0 {
		view.notice(LevelWarning, "No rows to display.")
		return view
	}
	view.add(Block{Kind: TableBlock, Table: BuildTable(rows, nil)})
	return view
}

// RenderOpaque shows text that could not be interpreted, with the reason if any
func RenderOpaque(text string, err error, title string) *View {
	view := &View{Title: firstNonEmpty(title, defaultTitle)}
	if err != nil {
		view.notice(LevelError, err.Error())
	}
	view.add(Block{Kind: RawBlock, Text: text})
	return view
}

// RenderResult draws a normalized response, falling back from sections to
// records to raw text.
func RenderResult(res normalize.Result, opts Options) *View {
	switch res.Kind {
	case normalize.Standardized:
		if view, ok := Render(res.Response, opts); ok {
			return view
		}
		if records := normalize.ExtractRecords(res.Value); len(records) > 0 {
			return RenderRecords(records, opts.Title)
		}
	case normalize.Records:
		return RenderRecords(res.Records, opts.Title)
	case normalize.Opaque:
		return RenderOpaque(res.Text, res.Err, opts.Title)
	}

	view := &View{Title: firstNonEmpty(opts.Title, defaultTitle)}
	view.notice(LevelWarning, "No data returned for this agent.")
	if !res.Value.IsNull() {
		view.add(Block{Kind: RawBlock, Text: res.Value.Indent()})
	}
	return view
}

// Error renders an inline failure for a (file, agent) pair
func Error(title string, err error) *View {
	view := &View{Title: firstNonEmpty(title, defaultTitle)}
	view.notice(LevelError, err.Error())
	return view
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
