package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const barWidth = 30

// WriteText prints a view as plain text for terminals
func WriteText(w io.Writer, v *View) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "== %s ==\n", v.Title)

	for _, b := range v.Blocks {
		if b.Title != "" {
			fmt.Fprintf(bw, "\n-- %s --\n", b.Title)
		}
		switch b.Kind {
		case MetricsBlock:
			for _, row := range b.Tiles {
				parts := make([]string, 0, len(row))
				for _, t := range row {
					part := fmt.Sprintf("%s: %s", t.Label, t.Value)
					if t.Delta != "" {
						part += fmt.Sprintf(" (%s)", t.Delta)
					}
					parts = append(parts, part)
				}
				fmt.Fprintln(bw, strings.Join(parts, " | "))
			}
		case TableBlock:
			if err := writeTable(bw, b.Table); err != nil {
				return err
			}
		case ListBlock:
			for i, item := range b.Items {
				fmt.Fprintf(bw, "%d. %s\n", i+1, item)
			}
		case RawBlock:
			fmt.Fprintln(bw, b.Text)
		case NoticeBlock:
			fmt.Fprintf(bw, "[%s] %s\n", strings.ToUpper(string(b.Level)), b.Text)
		}
	}

	fmt.Fprintln(bw)
	return bw.Flush()
}

func writeTable(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	if t.Chart == nil {
		return nil
	}
	peak := 0.0
	for _, v := range t.Chart.Values {
		if v > peak {
			peak = v
		}
	}
	fmt.Fprintf(w, "\n%s:\n", t.Chart.Column)
	cw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, cat := range t.Chart.Categories {
		n := 0
		if peak > 0 && t.Chart.Values[i] > 0 {
			n = max(0, min(barWidth, int(t.Chart.Values[i]/peak*barWidth)))
		}
		fmt.Fprintf(cw, "%s\t%s %g\n", cat, strings.Repeat("#", n), t.Chart.Values[i])
	}
	return cw.Flush()
}
