package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/hiring-agent/internal/agent"
	"github.com/fmuoria/hiring-agent/internal/render"
)

const (
	summarySheet  = "Summary"
	insightsSheet = "Insights"

	// excel rejects longer sheet names
	maxSheetName = 31
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type styles struct {
	title   int
	header  int
	label   int
	wrap    int
	failure int
}

// ExportToExcel writes a run report as an Excel workbook
func ExportToExcel(report *agent.RunReport, outputPath string) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to writing the buffer ourselves
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}
	return nil
}

// WriteExcel streams the workbook of a run report to w
func WriteExcel(w io.Writer, report *agent.RunReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}
	return nil
}

func buildWorkbook(report *agent.RunReport) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := createSummarySheet(f, st, report); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	used := map[string]bool{summarySheet: true, insightsSheet: true}
	for i, pair := range report.Pairs() {
		name := sheetName(fmt.Sprintf("%d %s", i+1, pair.Title), used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		createPairSheet(f, st, name, pair)
	}

	if _, err := f.NewSheet(insightsSheet); err != nil {
		f.Close()
		return nil, err
	}
	createInsightsSheet(f, st, report.Insights)

	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return st, err
	}

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return st, err
	}

	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, err
	}

	st.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
	if err != nil {
		return st, err
	}

	st.failure, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: thinBorder,
	})
	return st, err
}

// createSummarySheet lists the run details and one row per (file, agent) pair
func createSummarySheet(f *excelize.File, st styles, report *agent.RunReport) error {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "D", 24)
	f.SetColWidth(sheet, "E", "E", 60)

	f.SetCellValue(sheet, "A1", "Hiring Agent Report")
	f.SetCellStyle(sheet, "A1", "E1", st.title)
	f.MergeCell(sheet, "A1", "E1")

	details := [][2]any{
		{"Run ID:", report.ID},
		{"Started:", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"Finished:", report.FinishedAt.Format("2006-01-02 15:04:05")},
		{"n8n Base URL:", report.BaseURL},
		{"Files:", len(report.Files)},
		{"Insights:", len(report.Insights)},
	}
	row := 3
	for _, d := range details {
		f.SetCellValue(sheet, cell("A", row), d[0])
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.label)
		f.SetCellValue(sheet, cell("B", row), d[1])
		row++
	}
	row++

	headerRow := row
	writeHeader(f, st, sheet, row, []string{"File", "Agent", "Group", "Outcome", "Error"})
	row++

	for _, file := range report.Files {
		if len(file.Pairs) == 0 {
			f.SetCellValue(sheet, cell("A", row), file.File)
			f.SetCellValue(sheet, cell("D", row), "unmatched")
			row++
			continue
		}
		for _, pair := range file.Pairs {
			f.SetCellValue(sheet, cell("A", row), pair.File)
			f.SetCellValue(sheet, cell("B", row), pair.Heading())
			f.SetCellValue(sheet, cell("C", row), pair.Group)
			f.SetCellValue(sheet, cell("D", row), pair.Outcome)
			f.SetCellValue(sheet, cell("E", row), pair.Error)
			if pair.Error != "" {
				f.SetCellStyle(sheet, cell("A", row), cell("E", row), st.failure)
			}
			row++
		}
	}

	if row-1 > headerRow {
		f.AutoFilter(sheet, fmt.Sprintf("A%d:E%d", headerRow, row-1), []excelize.AutoFilterOptions{})
	}
	return nil
}

// createPairSheet lays out the blocks of one rendered view top to bottom
func createPairSheet(f *excelize.File, st styles, sheet string, pair agent.PairResult) {
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "H", 18)

	f.SetCellValue(sheet, "A1", pair.Heading())
	f.SetCellStyle(sheet, "A1", "D1", st.title)
	f.MergeCell(sheet, "A1", "D1")
	f.SetCellValue(sheet, "A2", "File:")
	f.SetCellStyle(sheet, "A2", "A2", st.label)
	f.SetCellValue(sheet, "B2", pair.File)

	if pair.View == nil {
		return
	}

	row := 4
	for _, b := range pair.View.Blocks {
		if b.Title != "" {
			f.SetCellValue(sheet, cell("A", row), b.Title)
			f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.label)
			row++
		}

		switch b.Kind {
		case render.MetricsBlock:
			writeHeader(f, st, sheet, row, []string{"Metric", "Value", "Change"})
			row++
			for _, tiles := range b.Tiles {
				for _, t := range tiles {
					f.SetCellValue(sheet, cell("A", row), t.Label)
					f.SetCellValue(sheet, cell("B", row), cellValue(t.Value))
					f.SetCellValue(sheet, cell("C", row), t.Delta)
					row++
				}
			}
		case render.TableBlock:
			if b.Table == nil {
				continue
			}
			writeHeader(f, st, sheet, row, b.Table.Columns)
			row++
			for _, r := range b.Table.Rows {
				for c, v := range r {
					name, _ := excelize.CoordinatesToCellName(c+1, row)
					f.SetCellValue(sheet, name, cellValue(v))
				}
				row++
			}
		case render.ListBlock:
			for i, item := range b.Items {
				f.SetCellValue(sheet, cell("A", row), i+1)
				f.SetCellValue(sheet, cell("B", row), item)
				f.SetCellStyle(sheet, cell("B", row), cell("B", row), st.wrap)
				row++
			}
		case render.RawBlock:
			f.SetCellValue(sheet, cell("A", row), b.Text)
			f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.wrap)
			row++
		case render.NoticeBlock:
			f.SetCellValue(sheet, cell("A", row), strings.ToUpper(string(b.Level)))
			f.SetCellValue(sheet, cell("B", row), b.Text)
			if b.Level == render.LevelError {
				f.SetCellStyle(sheet, cell("A", row), cell("B", row), st.failure)
			}
			row++
		}
		row++
	}
}

// createInsightsSheet lists consolidated insights, one per row
func createInsightsSheet(f *excelize.File, st styles, items []string) {
	sheet := insightsSheet
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 100)

	writeHeader(f, st, sheet, 1, []string{"#", "Insight"})
	for i, item := range items {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), i+1)
		f.SetCellValue(sheet, cell("B", row), item)
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), st.wrap)
	}

	// Freeze top row
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeHeader(f *excelize.File, st styles, sheet string, row int, headers []string) {
	for col, header := range headers {
		name, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheet, name, header)
		f.SetCellStyle(sheet, name, name, st.header)
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// decimalPattern matches plain decimals; leading zeros mark identifiers
var decimalPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// cellValue stores plain numbers as numbers so they can be summed in Excel
func cellValue(s string) any {
	if !decimalPattern.MatchString(s) {
		return s
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

// sheetName makes a valid, unused sheet name
func sheetName(title string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, title)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Result"
	}

	candidate := truncate(name, maxSheetName)
	for i := 2; used[candidate]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
