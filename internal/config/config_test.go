package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/hiring-agent/internal/models"
)

const sampleYAML = `
n8n:
  base_url: http://n8n.local:5678
  timeout_seconds: 30
  groups:
    - label: A. Hiring Tracker Agents
      agents: [sourcing_quality_agent, rejection_pattern_agent]
  agents:
    sourcing_quality_agent:
      webhook_path: /webhook/sourcing-quality
      description: Sourcing Quality
      enabled: true
      filename_keywords: [summary]
      chart_column: RejectionRate
    rejection_pattern_agent:
      endpoint: webhook/rejection-pattern
      enabled: true
      file_patterns: [funnel]
    panel_load_balancer:
      webhook_path: /webhook/panel-load
      enabled: false
      filename_keywords: [feedback]
default_agent: none
`

func TestParseKeepsAgentOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"sourcing_quality_agent", "rejection_pattern_agent", "panel_load_balancer"}, cfg.N8N.Agents.IDs())
	assert.Equal(t, "http://n8n.local:5678", cfg.N8N.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())

	sourcing, ok := cfg.N8N.Agents.Get("sourcing_quality_agent")
	require.True(t, ok)
	assert.Equal(t, "sourcing_quality_agent", sourcing.ID)
	assert.Equal(t, "/webhook/sourcing-quality", sourcing.Path())
	assert.Equal(t, []string{"summary"}, sourcing.Keywords())
	assert.Equal(t, "RejectionRate", sourcing.ChartColumn)

	rejection, _ := cfg.N8N.Agents.Get("rejection_pattern_agent")
	assert.Equal(t, "webhook/rejection-pattern", rejection.Path())
	assert.Equal(t, []string{"funnel"}, rejection.Keywords())
	assert.Equal(t, "Rejection Pattern Agent", rejection.DisplayName())

	enabled := cfg.N8N.Agents.Enabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "rejection_pattern_agent", enabled[1].ID)

	assert.Equal(t, "", cfg.FallbackAgent())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.N8N.Agents.Len())
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.Timeout())
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n8n: [unclosed"), 0600))

	cfg, err := LoadFrom(path)
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.N8N.Agents.Len())
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.N8N.Agents.IDs(), loaded.N8N.Agents.IDs())
	assert.Equal(t, cfg.N8N.Agents.All(), loaded.N8N.Agents.All())
	assert.Equal(t, cfg.N8N.Groups, loaded.N8N.Groups)
	assert.Equal(t, cfg.DefaultAgent, loaded.DefaultAgent)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "Defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "Bad base URL",
			mutate:  func(c *Config) { c.N8N.BaseURL = "not a url" },
			wantErr: true,
		},
		{
			name: "Unknown renderer",
			mutate: func(c *Config) {
				c.N8N.Agents = NewRegistry(models.AgentDescriptor{ID: "a", Renderer: "pie"})
			},
			wantErr: true,
		},
		{
			name: "Offer rejection renderer",
			mutate: func(c *Config) {
				c.N8N.Agents = NewRegistry(models.AgentDescriptor{ID: "a", Renderer: models.RendererOfferRejection})
			},
		},
		{
			name: "Group references unknown agent",
			mutate: func(c *Config) {
				c.N8N.Groups = []AgentGroup{{Label: "A", Agents: []string{"ghost"}}}
			},
			wantErr: true,
		},
		{
			name:    "Negative timeout",
			mutate:  func(c *Config) { c.N8N.TimeoutSeconds = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFallbackAgent(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", ""},
		{"none", ""},
		{"None", ""},
		{" NONE ", ""},
		{"sourcing_quality_agent", "sourcing_quality_agent"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := &Config{DefaultAgent: tt.value}
			assert.Equal(t, tt.want, cfg.FallbackAgent())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("N8N_BASE_URL", "https://flows.example.com")
	t.Setenv("N8N_TIMEOUT_SECONDS", "15")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "https://flows.example.com", cfg.N8N.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout())

	t.Setenv("N8N_TIMEOUT_SECONDS", "soon")
	assert.Error(t, cfg.ApplyEnv())
}

func TestGetConfigPathFromEnv(t *testing.T) {
	t.Setenv("HIRING_AGENT_CONFIG", "/tmp/custom.yaml")
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)
}

func TestGroupOf(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	label, idx, ok := cfg.GroupOf("rejection_pattern_agent")
	assert.True(t, ok)
	assert.Equal(t, "A. Hiring Tracker Agents", label)
	assert.Equal(t, 0, idx)

	_, _, ok = cfg.GroupOf("panel_load_balancer")
	assert.False(t, ok)
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{
		"sourcing_quality_agent",
		"rejection_pattern_agent",
		"panel_load_balancer",
		"offer_rejection_agent",
		"pipeline_health_agent",
	}, cfg.N8N.Agents.IDs())
	assert.Empty(t, cfg.FallbackAgent())

	offer, ok := cfg.N8N.Agents.Get("offer_rejection_agent")
	require.True(t, ok)
	assert.Equal(t, models.RendererOfferRejection, offer.Renderer)
}
