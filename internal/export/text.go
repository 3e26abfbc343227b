// Package export writes run results to files: the consolidated insights as
// plain text and the whole run as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/fmuoria/hiring-agent/internal/insights"
)

// InsightsFileName is the suggested name for the downloaded insights
const InsightsFileName = "consolidated_insights.txt"

// WriteInsightsText writes consolidated insights, one per line
func WriteInsightsText(w io.Writer, items []string) error {
	text := insights.Text(items)
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return fmt.Errorf("failed to write insights: %w", err)
	}
	return nil
}

// SaveInsightsText writes consolidated insights to path
func SaveInsightsText(items []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create insights file: %w", err)
	}
	if err := WriteInsightsText(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
