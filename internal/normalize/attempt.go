package normalize

import (
	"regexp"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// Attempt is one parsing strategy over text. ok is false when the strategy
// does not apply or fails; attempts never panic.
type Attempt func(text string) (v jsonval.Value, ok bool)

// FirstOf runs attempts in order and returns the first success
func FirstOf(text string, attempts ...Attempt) (jsonval.Value, bool) {
	for _, attempt := range attempts {
		if v, ok := attempt(text); ok {
			return v, true
		}
	}
	return jsonval.Value{}, false
}

// ArraysOnly restricts an attempt to results that are JSON arrays
func ArraysOnly(attempt Attempt) Attempt {
	return func(text string) (jsonval.Value, bool) {
		v, ok := attempt(text)
		if !ok || !v.IsArray() {
			return jsonval.Value{}, false
		}
		return v, true
	}
}

var fencePattern = regexp.MustCompile("```(?:json|JSON)?\\s*")

// StripFences removes markdown code fences and surrounding whitespace
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// ParseDirect parses text as JSON after trimming whitespace
func ParseDirect(text string) (jsonval.Value, bool) {
	v, err := jsonval.ParseString(strings.TrimSpace(text))
	return v, err == nil
}

// ParseFenced parses text after removing markdown code fences
func ParseFenced(text string) (jsonval.Value, bool) {
	return ParseDirect(StripFences(text))
}

// Repair parses an object-shaped text whose interior quotes were not escaped.
//
// Walking the text, a quote that opens a string is kept. Inside a string, a
// quote closes it only when the next non-space character is one of , ] }
// or :, otherwise it is escaped. Text that is not wrapped in braces is rejected.
func Repair(text string) (jsonval.Value, bool) {
	candidate := strings.TrimSpace(text)
	if !strings.HasPrefix(candidate, "{") || !strings.HasSuffix(candidate, "}") {
		return jsonval.Value{}, false
	}

	var b strings.Builder
	b.Grow(len(candidate) + 16)
	inString := false
	for i := 0; i < len(candidate); i++ {
		ch := candidate[i]
		if ch != '"' || (i > 0 && candidate[i-1] == '\\') {
			b.WriteByte(ch)
			continue
		}
		if !inString {
			inString = true
			b.WriteByte('"')
			continue
		}
		j := i + 1
		for j < len(candidate) && isSpace(candidate[j]) {
			j++
		}
		if j < len(candidate) && strings.IndexByte(",]}:", candidate[j]) >= 0 {
			inString = false
			b.WriteByte('"')
		} else {
			b.WriteString(`\"`)
		}
	}

	return ParseDirect(b.String())
}

// UndoDoubledQuotes parses text whose quotes were doubled by a CSV-style
// encoder, e.g. [{""type"": ""metrics""}].
func UndoDoubledQuotes(text string) (jsonval.Value, bool) {
	if !strings.Contains(text, `""`) {
		return jsonval.Value{}, false
	}
	return ParseDirect(strings.ReplaceAll(text, `""`, `"`))
}

// StripSurroundingQuotes parses text after removing one pair of wrapping quotes
func StripSurroundingQuotes(text string) (jsonval.Value, bool) {
	t := strings.TrimSpace(text)
	if len(t) < 2 {
		return jsonval.Value{}, false
	}
	first, last := t[0], t[len(t)-1]
	if first != last || (first != '"' && first != '\'') {
		return jsonval.Value{}, false
	}
	return ParseDirect(t[1 : len(t)-1])
}

// DecodeEscapes resolves backslash escapes (\" \n \uXXXX ...) and parses the result
func DecodeEscapes(text string) (jsonval.Value, bool) {
	if !strings.Contains(text, `\`) {
		return jsonval.Value{}, false
	}
	decoded, err := jsonparser.Unescape([]byte(strings.TrimSpace(text)), nil)
	if err != nil {
		return jsonval.Value{}, false
	}
	return ParseDirect(string(decoded))
}

// sectionAttempts decode a sections field delivered as a string
var sectionAttempts = []Attempt{
	ArraysOnly(UndoDoubledQuotes),
	ArraysOnly(StripSurroundingQuotes),
	ArraysOnly(ParseFenced),
	ArraysOnly(DecodeEscapes),
}

// textAttempts decode a whole response or entry delivered as a string
var textAttempts = []Attempt{ParseFenced, Repair}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func looksLikeJSON(text string) bool {
	t := StripFences(text)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
}
