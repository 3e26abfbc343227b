package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
)

// Clean normalizes text for display: code fences and backticks removed,
// wrapping quotes stripped, whitespace runs collapsed.
func Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = strings.Trim(cleaned, `"`)
	cleaned = strings.Trim(cleaned, "'")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// StripNumbering drops a leading "N. " list marker
func StripNumbering(text string) string {
	return numberPrefix.ReplaceAllString(text, "")
}
