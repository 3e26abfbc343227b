package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/hiring-agent/internal/render"
)

const (
	columnWidth  = 160
	rowHeight    = 32
	maxTableRows = 12
	chartWidth   = 360
	chartLabel   = 180
	barHeight    = 18
)

// buildView turns a rendered view into fyne widgets
func buildView(v *render.View) fyne.CanvasObject {
	box := container.NewVBox()
	if v == nil {
		return box
	}

	for _, b := range v.Blocks {
		if b.Title != "" {
			box.Add(widget.NewLabelWithStyle(b.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		}

		switch b.Kind {
		case render.MetricsBlock:
			for _, row := range b.Tiles {
				box.Add(metricsRow(row))
			}
		case render.TableBlock:
			if b.Table == nil {
				continue
			}
			box.Add(tableWidget(b.Table))
			if b.Table.Chart != nil {
				box.Add(barChart(b.Table.Chart))
			}
		case render.ListBlock:
			box.Add(numberedList(b.Items))
		case render.RawBlock:
			raw := widget.NewLabelWithStyle(b.Text, fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
			raw.Wrapping = fyne.TextWrapBreak
			box.Add(raw)
		case render.NoticeBlock:
			box.Add(noticeLabel(b.Level, b.Text))
		}
	}
	return box
}

func metricsRow(tiles []render.Tile) fyne.CanvasObject {
	row := container.NewGridWithColumns(render.TilesPerRow)
	for _, t := range tiles {
		value := widget.NewLabelWithStyle(t.Value, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
		value.SizeName = theme.SizeNameSubHeadingText

		tile := container.NewVBox(widget.NewLabel(t.Label), value)
		if t.Delta != "" {
			delta := widget.NewLabel(t.Delta)
			delta.Importance = deltaImportance(t.Delta)
			tile.Add(delta)
		}
		row.Add(tile)
	}
	return row
}

func deltaImportance(delta string) widget.Importance {
	switch {
	case len(delta) > 0 && delta[0] == '-':
		return widget.DangerImportance
	case len(delta) > 0 && delta[0] == '+':
		return widget.SuccessImportance
	}
	return widget.MediumImportance
}

func tableWidget(t *render.Table) fyne.CanvasObject {
	table := widget.NewTable(
		func() (int, int) { return len(t.Rows) + 1, len(t.Columns) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			text, header := tableCell(t, id.Row, id.Col)
			label.TextStyle = fyne.TextStyle{Bold: header}
			label.SetText(text)
		},
	)
	for i := range t.Columns {
		table.SetColumnWidth(i, columnWidth)
	}

	rows := min(len(t.Rows)+1, maxTableRows)
	width := min(len(t.Columns), 6) * columnWidth
	return container.NewGridWrap(fyne.NewSize(float32(width), float32(rows*rowHeight)), table)
}

// tableCell returns the text of a cell, row 0 being the header
func tableCell(t *render.Table, row, col int) (string, bool) {
	if row == 0 {
		if col < len(t.Columns) {
			return t.Columns[col], true
		}
		return "", true
	}
	if row-1 < len(t.Rows) && col < len(t.Rows[row-1]) {
		return t.Rows[row-1][col], false
	}
	return "", false
}

func barChart(c *render.Chart) fyne.CanvasObject {
	chart := container.NewVBox(widget.NewLabelWithStyle(c.Column, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))

	lengths := barLengths(c.Values, chartWidth)
	for i, category := range c.Categories {
		bar := canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))
		bar.SetMinSize(fyne.NewSize(lengths[i], barHeight))

		label := widget.NewLabel(category)
		label.Truncation = fyne.TextTruncateEllipsis

		chart.Add(container.NewHBox(
			container.NewGridWrap(fyne.NewSize(chartLabel, barHeight+12), label),
			container.NewCenter(bar),
			widget.NewLabel(strconv.FormatFloat(c.Values[i], 'f', -1, 64)),
		))
	}
	return chart
}

// barLengths scales values so the largest is width long. Negative values
// draw as empty bars.
func barLengths(values []float64, width float32) []float32 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	out := make([]float32, len(values))
	if peak <= 0 {
		return out
	}
	for i, v := range values {
		if v > 0 {
			out[i] = float32(v/peak) * width
		}
	}
	return out
}

func numberedList(items []string) fyne.CanvasObject {
	box := container.NewVBox()
	for i, item := range items {
		label := widget.NewLabel(fmt.Sprintf("%d. %s", i+1, item))
		label.Wrapping = fyne.TextWrapWord
		box.Add(label)
	}
	return box
}

func noticeLabel(level render.Level, text string) fyne.CanvasObject {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	switch level {
	case render.LevelError:
		label.Importance = widget.DangerImportance
	case render.LevelWarning:
		label.Importance = widget.WarningImportance
	default:
		label.Importance = widget.HighImportance
	}
	return label
}
