package normalize

import (
	"regexp"
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// PriorityKeys are searched, in order, when an insight entry is an object
var PriorityKeys = []string{
	"actionable_insights",
	"recommendations",
	"insights",
	"items",
	"data",
	"text",
	"content",
	"message",
}

const maxExpandDepth = 8

var lineBreaks = regexp.MustCompile(`(\r?\n)+`)

// Expand flattens insight or recommendation entries into display strings.
//
// Objects contribute every list under a priority key, else their first
// priority string, else any list member, else their only string member, else
// their JSON. Strings holding JSON (fenced or with unescaped quotes) are
// decoded and expanded; other strings are split into lines with bullet
// markers trimmed. Nulls are skipped; nothing else is dropped.
func Expand(entries []jsonval.Value) []string {
	var out []string
	for _, entry := range entries {
		out = expandValue(out, entry, 0)
	}
	return out
}

// ExpandStrings is Expand over plain strings
func ExpandStrings(entries ...string) []string {
	values := make([]jsonval.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, jsonval.StringValue(e))
	}
	return Expand(values)
}

func expandValue(out []string, v jsonval.Value, depth int) []string {
	if depth > maxExpandDepth {
		return append(out, v.Display())
	}

	switch v.Kind() {
	case jsonval.Null:
		return out
	case jsonval.Array:
		for _, item := range v.Items() {
			out = expandValue(out, item, depth+1)
		}
		return out
	case jsonval.Object:
		return expandObject(out, v, depth)
	case jsonval.String:
		s, _ := v.Str()
		return expandString(out, s, depth)
	}
	return append(out, v.Display())
}

func expandObject(out []string, obj jsonval.Value, depth int) []string {
	spliced := false
	for _, key := range PriorityKeys {
		if v, ok := obj.Get(key); ok && v.IsArray() {
			out = expandValue(out, v, depth+1)
			spliced = true
		}
	}
	if spliced {
		return out
	}

	for _, key := range PriorityKeys {
		if s, ok := obj.GetString(key); ok {
			return expandString(out, s, depth+1)
		}
	}

	for _, m := range obj.Members() {
		if m.Value.IsArray() {
			out = expandValue(out, m.Value, depth+1)
			spliced = true
		}
	}
	if spliced {
		return out
	}

	if members := obj.Members(); len(members) == 1 {
		if s, ok := members[0].Value.Str(); ok {
			return expandString(out, s, depth+1)
		}
	}

	return append(out, obj.JSON())
}

func expandString(out []string, s string, depth int) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return out
	}

	if v, ok := FirstOf(trimmed, textAttempts...); ok && (v.IsObject() || v.IsArray()) {
		return expandValue(out, v, depth+1)
	}

	for _, line := range lineBreaks.Split(trimmed, -1) {
		if fragment := strings.Trim(line, " \t-•*"); fragment != "" {
			out = append(out, fragment)
		}
	}
	return out
}
