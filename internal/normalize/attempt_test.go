package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

func TestAttempts(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
		input   string
		want    string // compact JSON, empty when the attempt must fail
	}{
		{"Direct object", ParseDirect, ` {"key": "value"} `, `{"key":"value"}`},
		{"Direct invalid", ParseDirect, `not valid json {`, ``},
		{"Fenced", ParseFenced, "```json\n{\"key\": \"value\"}\n```", `{"key":"value"}`},
		{"Fenced bare", ParseFenced, "```\n[\"item1\", \"item2\"]\n```", `["item1","item2"]`},
		{"Fenced empty", ParseFenced, ``, ``},
		{"Repair valid", Repair, `{"key": "value"}`, `{"key":"value"}`},
		{"Repair interior quotes", Repair, `{"summary": "Candidates call it "slow" often", "n": 2}`, `{"summary":"Candidates call it \"slow\" often","n":2}`},
		{"Repair non object", Repair, `not json`, ``},
		{"Repair incomplete", Repair, `{"key": "value"`, ``},
		{"Doubled quotes", UndoDoubledQuotes, `[{""type"": ""metrics""}]`, `[{"type":"metrics"}]`},
		{"Doubled quotes absent", UndoDoubledQuotes, `[{"type": "metrics"}]`, ``},
		{"Surrounding quotes", StripSurroundingQuotes, `"[1, 2]"`, `[1,2]`},
		{"Mismatched quotes", StripSurroundingQuotes, `"[1, 2]'`, ``},
		{"Escapes", DecodeEscapes, `[{\"title\": \"Café\"}]`, `[{"title":"Café"}]`},
		{"No escapes", DecodeEscapes, `[1]`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.attempt(tt.input)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, v.JSON())
		})
	}
}

func TestFirstOfOrder(t *testing.T) {
	calls := []string{}
	record := func(name string, ok bool) Attempt {
		return func(string) (jsonval.Value, bool) {
			calls = append(calls, name)
			return jsonval.StringValue(name), ok
		}
	}

	v, ok := FirstOf("x", record("a", false), record("b", true), record("c", true))
	require.True(t, ok)
	s, _ := v.Str()
	assert.Equal(t, "b", s)
	assert.Equal(t, []string{"a", "b"}, calls)

	_, ok = FirstOf("x")
	assert.False(t, ok)
}

func TestArraysOnly(t *testing.T) {
	_, ok := ArraysOnly(ParseDirect)(`{"a": 1}`)
	assert.False(t, ok)

	v, ok := ArraysOnly(ParseDirect)(`[{"a": 1}]`)
	require.True(t, ok)
	assert.Equal(t, 1, v.Len())
}

func TestExtractOfferRejection(t *testing.T) {
	tests := []struct {
		name  string
		raw   jsonval.Value
		found bool
	}{
		{"Wrapped", jsonval.MustParse(`{"offer_rejection_summary": {"totalOffers": 4}}`), true},
		{"List", jsonval.MustParse(`[{"offer_rejection_summary": {"totalOffers": 4}}]`), true},
		{"Envelope", jsonval.MustParse(`[{"json": {"offer_rejection_summary": {"totalOffers": 4}}}]`), true},
		{"Bare fields", jsonval.MustParse(`{"totalOffers": 4, "reasons": []}`), true},
		{"Old field names", jsonval.MustParse(`{"totalRejected": 1}`), true},
		{"Fenced string", jsonval.StringValue("```json\n{\"offer_rejection_summary\": {\"totalOffers\": 4}}\n```"), true},
		{"Unrelated", jsonval.MustParse(`{"agent_name": "x", "sections": []}`), false},
		{"Plain text", jsonval.StringValue("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, ok := ExtractOfferRejection(tt.raw)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.True(t, summary.IsObject())
				assert.True(t, summary.Has("totalOffers") || summary.Has("totalRejected"))
			}
		})
	}
}
