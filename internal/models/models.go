package models

import (
	"strings"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// Renderer names accepted in an agent's configuration.
const (
	RendererStandard       = "standard"
	RendererOfferRejection = "offer_rejection"
)

// AgentDescriptor is one configured n8n workflow endpoint
type AgentDescriptor struct {
	ID               string   `yaml:"-" json:"id"`
	WebhookPath      string   `yaml:"webhook_path,omitempty" json:"webhook_path,omitempty"`
	Endpoint         string   `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Description      string   `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	FilenameKeywords []string `yaml:"filename_keywords,omitempty" json:"filename_keywords,omitempty" validate:"dive,required"`
	FilePatterns     []string `yaml:"file_patterns,omitempty" json:"file_patterns,omitempty" validate:"dive,required"`
	ChartColumn      string   `yaml:"chart_column,omitempty" json:"chart_column,omitempty"`
	Renderer         string   `yaml:"renderer,omitempty" json:"renderer,omitempty" validate:"omitempty,oneof=standard offer_rejection"`
}

// Path returns the webhook path, preferring webhook_path over endpoint
func (a AgentDescriptor) Path() string {
	if a.WebhookPath != "" {
		return a.WebhookPath
	}
	return a.Endpoint
}

// Keywords returns the filename keywords, preferring filename_keywords over file_patterns
func (a AgentDescriptor) Keywords() []string {
	if len(a.FilenameKeywords) > 0 {
		return a.FilenameKeywords
	}
	return a.FilePatterns
}

// DisplayName is the description if set, otherwise a title-cased identifier
func (a AgentDescriptor) DisplayName() string {
	if a.Description != "" {
		return a.Description
	}
	words := strings.FieldsFunc(a.ID, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SectionType tags a Section
type SectionType string

const (
	SectionMetrics         SectionType = "metrics"
	SectionTable           SectionType = "table"
	SectionInsights        SectionType = "insights"
	SectionRecommendations SectionType = "recommendations"
	SectionUnknown         SectionType = "unknown"
)

// Metric is one label/value tile
type Metric struct {
	Label string
	Value jsonval.Value
}

// Section is one typed block of a standardized response.
// Only the fields belonging to Type are populated.
type Section struct {
	Type    SectionType
	RawType string // type as sent by the workflow, kept for unknown sections
	Title   string

	Metrics []Metric // metrics

	Rows        []jsonval.Value // table, each row an object
	Columns     []string        // table column allow-list, optional
	ChartColumn string          // table chart hint, optional

	Entries []jsonval.Value // insights, recommendations

	Payload jsonval.Value // unknown
}

// StandardizedResponse is the preferred response shape of an agent
type StandardizedResponse struct {
	AgentName    string
	DisplayTitle string
	Sections     []Section
}

// Upload is one CSV file chosen by the user
type Upload struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
}
