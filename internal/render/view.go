// Package render maps normalized agent responses onto a toolkit-neutral view
// model. The fyne dashboard, the CLI text writer, the Excel exporter and the
// JSON API all draw the same View.
package render

import (
	"github.com/fmuoria/hiring-agent/internal/models"
)

// TilesPerRow is the width of a metrics row
const TilesPerRow = 4

// MaxChartRows is the largest table that still gets a bar chart
const MaxChartRows = 20

// BlockKind tags a Block
type BlockKind string

const (
	MetricsBlock BlockKind = "metrics"
	TableBlock   BlockKind = "table"
	ListBlock    BlockKind = "list"
	RawBlock     BlockKind = "raw"
	NoticeBlock  BlockKind = "notice"
)

// Level is the severity of a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Tile is one metric
type Tile struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
}

// Chart is a bar chart of one numeric column keyed by the table's first column
type Chart struct {
	Column     string    `json:"column"`
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
}

// Table is a projected, stringified table
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Chart   *Chart     `json:"chart,omitempty"`
}

// Block is one visual element. Only the fields of its Kind are set.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Title string    `json:"title,omitempty"`

	Tiles [][]Tile `json:"tiles,omitempty"` // metrics, rows of at most TilesPerRow

	Table *Table `json:"table,omitempty"`

	ListKind models.SectionType `json:"list_kind,omitempty"` // insights or recommendations
	Items    []string           `json:"items,omitempty"`     // numbered from 1

	Text  string `json:"text,omitempty"` // raw, notice
	Level Level  `json:"level,omitempty"`
}

// View is everything rendered for one (file, agent) pair
type View struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// ListItems returns the insight and recommendation items in display order
func (v *View) ListItems() []string {
	if v == nil {
		return nil
	}
	var items []string
	for _, b := range v.Blocks {
		if b.Kind == ListBlock {
			items = append(items, b.Items...)
		}
	}
	return items
}

// Tables returns the table blocks of the view
func (v *View) Tables() []Block {
	if v == nil {
		return nil
	}
	var tables []Block
	for _, b := range v.Blocks {
		if b.Kind == TableBlock {
			tables = append(tables, b)
		}
	}
	return tables
}

func (v *View) add(b Block) {
	v.Blocks = append(v.Blocks, b)
}

func (v *View) notice(level Level, text string) {
	v.add(Block{Kind: NoticeBlock, Level: level, Text: text})
}
