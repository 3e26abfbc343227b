// Package insights gathers insight and recommendation strings across a run.
package insights

import (
	"regexp"
	"strings"
	"sync"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/normalize"
)

// Consolidate keeps the first occurrence of each string. Matching is exact:
// case and whitespace variants stay distinct.
func Consolidate(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Text joins consolidated items one per line
func Text(items []string) string {
	return strings.Join(Consolidate(items), "\n")
}

// legacyColumn matches record fields that carry advice in legacy responses
var legacyColumn = regexp.MustCompile(`(?i)recommend|action|insight`)

// FromRecords harvests advice from legacy row records: every string (or list
// of strings) under a field whose name mentions recommend, action or insight.
func FromRecords(records []jsonval.Value) []string {
	var out []string
	for _, rec := range records {
		for _, m := range rec.Members() {
			if !legacyColumn.MatchString(m.Key) {
				continue
			}
			for _, entry := range normalize.Expand([]jsonval.Value{m.Value}) {
				if text := normalize.Clean(entry); text != "" {
					out = append(out, text)
				}
			}
		}
	}
	return out
}

// Collector accumulates items across a run; safe for concurrent use
type Collector struct {
	mu    sync.Mutex
	items []string
}

// Add appends items in order
func (c *Collector) Add(items ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
}

// Items returns the consolidated items collected so far
func (c *Collector) Items() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Consolidate(c.items)
}

// Text returns the consolidated items joined by newlines
func (c *Collector) Text() string {
	return strings.Join(c.Items(), "\n")
}

// Len is the number of distinct items
func (c *Collector) Len() int {
	return len(c.Items())
}
