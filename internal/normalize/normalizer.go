// Package normalize turns whatever an n8n workflow returned into a shape the
// renderer understands: a standardized section list, a list of row records, or
// opaque text.
package normalize

import (
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// maxDepth bounds how many times a string may be re-parsed into JSON
const maxDepth = 4

// Kind is the outcome of normalization
type Kind int

const (
	Unrecognized Kind = iota
	Standardized
	Records
	Opaque
)

func (k Kind) String() string {
	switch k {
	case Standardized:
		return "standardized"
	case Records:
		return "records"
	case Opaque:
		return "opaque"
	}
	return "unrecognized"
}

// Result is the normalized form of one webhook response.
// Err is set for Opaque results that failed to parse and for Unrecognized ones.
type Result struct {
	Kind     Kind
	Response *models.StandardizedResponse
	Records  []jsonval.Value
	Text     string
	Value    jsonval.Value
	Err      error
}

// Normalize classifies a raw webhook response
func Normalize(raw jsonval.Value) Result {
	return normalize(raw, 0)
}

func normalize(v jsonval.Value, depth int) Result {
	if s, ok := v.Str(); ok {
		return normalizeText(s, depth)
	}

	if obj, found := findStandardized(v); found {
		resp, err := standardize(obj)
		if err != nil {
			return Result{Kind: Opaque, Text: obj.Indent(), Value: v, Err: err}
		}
		return Result{Kind: Standardized, Response: resp, Value: v}
	}

	if isSectionList(v) {
		return Result{
			Kind:     Standardized,
			Response: &models.StandardizedResponse{Sections: ParseSections(v.Items())},
			Value:    v,
		}
	}

	records := ExtractRecords(v)
	if len(records) == 0 {
		return Result{Kind: Unrecognized, Value: v, Err: &UnrecognizedShapeError{Kind: v.Kind()}}
	}
	return Result{Kind: Records, Records: records, Value: v}
}

func normalizeText(s string, depth int) Result {
	if depth < maxDepth {
		if parsed, ok := FirstOf(s, textAttempts...); ok {
			return normalize(parsed, depth+1)
		}
	}

	res := Result{Kind: Opaque, Text: s, Value: jsonval.StringValue(s)}
	if looksLikeJSON(s) {
		res.Err = &ParseError{Text: s}
	}
	if strings.TrimSpace(s) == "" {
		res.Kind = Unrecognized
		res.Err = &UnrecognizedShapeError{Kind: jsonval.String}
	}
	return res
}

// candidates lists the objects that may carry a payload: the value itself,
// each array item, and each item's n8n "json" envelope.
func candidates(v jsonval.Value) []jsonval.Value {
	var out []jsonval.Value
	if v.IsObject() {
		out = append(out, v)
	}
	for _, item := range v.Items() {
		if !item.IsObject() {
			continue
		}
		out = append(out, item)
		if inner, ok := item.Get("json"); ok && inner.IsObject() {
			out = append(out, inner)
		}
	}
	return out
}

// findStandardized returns the first candidate with an agent_name and a
// sections list. Sections of any other kind than a list, a string-encoded
// list or null leave the object to record extraction.
func findStandardized(v jsonval.Value) (jsonval.Value, bool) {
	for _, obj := range candidates(v) {
		if !obj.Has("agent_name") {
			continue
		}
		sections, ok := obj.Get("sections")
		if !ok {
			continue
		}
		switch sections.Kind() {
		case jsonval.Array, jsonval.String, jsonval.Null:
			return obj, true
		}
	}
	return jsonval.Value{}, false
}

func isSectionList(v jsonval.Value) bool {
	items := v.Items()
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Has("type") {
			return false
		}
	}
	return true
}

func standardize(obj jsonval.Value) (*models.StandardizedResponse, error) {
	sections, _ := obj.Get("sections")
	list, err := sectionList(sections)
	if err != nil {
		return nil, err
	}

	resp := &models.StandardizedResponse{Sections: ParseSections(list)}
	if name, ok := obj.Get("agent_name"); ok {
		resp.AgentName = name.Display()
	}
	if title, ok := obj.GetString("display_title"); ok {
		resp.DisplayTitle = strings.TrimSpace(title)
	}
	return resp, nil
}

// sectionList returns the section items of a sections field, decoding a
// string-encoded list when necessary.
func sectionList(sections jsonval.Value) ([]jsonval.Value, error) {
	switch sections.Kind() {
	case jsonval.Array:
		return sections.Items(), nil
	case jsonval.String:
		text, _ := sections.Str()
		if parsed, ok := FirstOf(text, sectionAttempts...); ok {
			return parsed.Items(), nil
		}
		return nil, &ParseError{Field: "sections", Text: text}
	}
	return nil, nil
}
