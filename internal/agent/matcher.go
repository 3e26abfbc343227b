package agent

import (
	"strings"

	"github.com/fmuoria/hiring-agent/internal/config"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// Match returns the agents that should process filename, in registry order.
//
// An agent matches when one of its keywords is a case-insensitive substring
// of the filename, or when its identifier without '_' and '-' is a substring
// of the filename stripped the same way. Enabled agents are tried first, then
// the whole registry. With no match at all the default agent is returned,
// unless it is empty or "none", in which case the result is empty.
func Match(filename string, agents []models.AgentDescriptor, defaultAgent string) []string {
	var enabled []models.AgentDescriptor
	for _, a := range agents {
		if a.Enabled {
			enabled = append(enabled, a)
		}
	}

	if matched := matchPool(filename, enabled); len(matched) > 0 {
		return matched
	}
	if matched := matchPool(filename, agents); len(matched) > 0 {
		return matched
	}

	fallback := strings.TrimSpace(defaultAgent)
	if fallback == "" || strings.EqualFold(fallback, config.NoDefaultAgent) {
		return []string{}
	}
	return []string{fallback}
}

func matchPool(filename string, pool []models.AgentDescriptor) []string {
	lower := strings.ToLower(filename)
	stripped := stripSeparators(lower)

	matched := []string{}
	seen := make(map[string]bool)
	for _, a := range pool {
		if seen[a.ID] {
			continue
		}
		if len(keywordHits(lower, a)) > 0 || nameMatches(stripped, a) {
			seen[a.ID] = true
			matched = append(matched, a.ID)
		}
	}
	return matched
}

func keywordHits(lowerName string, a models.AgentDescriptor) []string {
	var hits []string
	for _, kw := range a.Keywords() {
		kw = strings.TrimSpace(kw)
		if kw != "" && strings.Contains(lowerName, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func nameMatches(strippedName string, a models.AgentDescriptor) bool {
	id := stripSeparators(strings.ToLower(a.ID))
	return id != "" && strings.Contains(strippedName, id)
}

func stripSeparators(s string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(s)
}

// Explanation describes how one agent relates to a filename
type Explanation struct {
	AgentID   string   `json:"agent_id"`
	Enabled   bool     `json:"enabled"`
	Keywords  []string `json:"keywords"`
	Hits      []string `json:"hits"`
	NameMatch bool     `json:"name_match"`
}

// Explain reports keyword hits per agent, for the file matching debug panel
func Explain(filename string, agents []models.AgentDescriptor) []Explanation {
	lower := strings.ToLower(filename)
	stripped := stripSeparators(lower)

	out := make([]Explanation, 0, len(agents))
	for _, a := range agents {
		out = append(out, Explanation{
			AgentID:   a.ID,
			Enabled:   a.Enabled,
			Keywords:  a.Keywords(),
			Hits:      keywordHits(lower, a),
			NameMatch: nameMatches(stripped, a),
		})
	}
	return out
}

// OrderByGroups puts matched agents in configured group order; agents not in
// any group follow in match order.
func OrderByGroups(matched []string, groups []config.AgentGroup) []string {
	inMatch := make(map[string]bool, len(matched))
	for _, id := range matched {
		inMatch[id] = true
	}

	ordered := make([]string, 0, len(matched))
	placed := make(map[string]bool, len(matched))
	for _, g := range groups {
		for _, id := range g.Agents {
			if inMatch[id] && !placed[id] {
				ordered = append(ordered, id)
				placed[id] = true
			}
		}
	}
	for _, id := range matched {
		if !placed[id] {
			ordered = append(ordered, id)
			placed[id] = true
		}
	}
	return ordered
}
