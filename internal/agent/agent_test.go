package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/hiring-agent/internal/config"
	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
	"github.com/fmuoria/hiring-agent/internal/n8n"
	"github.com/fmuoria/hiring-agent/internal/render"
)

func testConfig(baseURL string, agents ...models.AgentDescriptor) *config.Config {
	cfg := config.DefaultConfig()
	cfg.N8N.BaseURL = baseURL
	cfg.N8N.Agents = config.NewRegistry(agents...)
	cfg.DefaultAgent = "none"
	return cfg
}

// fakeInvoker answers by agent identifier
type fakeInvoker struct {
	responses map[string]jsonval.Value
	errs      map[string]error
	calls     []n8n.Request
}

func (f *fakeInvoker) Invoke(_ context.Context, req n8n.Request) (jsonval.Value, error) {
	f.calls = append(f.calls, req)
	if err := f.errs[req.AgentID]; err != nil {
		return jsonval.Value{}, err
	}
	return f.responses[req.AgentID], nil
}

func TestSummaryScenarioEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/sourcing", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"agent_name":"x","sections":[{"type":"metrics","data":{"Total":10}}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL, models.AgentDescriptor{
		ID:               "sourcing_quality_agent",
		WebhookPath:      "/webhook/sourcing",
		Enabled:          true,
		FilenameKeywords: []string{"summary"},
	})
	a := NewHiringAgent(cfg, nil)

	report, err := a.Process(context.Background(), []models.Upload{{Name: "Summary.csv", Content: []byte("a,b\n1,2\n")}}, RunOptions{})
	require.NoError(t, err)

	pairs := report.Pairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, "standardized", pairs[0].Outcome)
	assert.NoError(t, pairs[0].Err)

	view := pairs[0].View
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, render.MetricsBlock, view.Blocks[0].Kind)
	assert.Equal(t, [][]render.Tile{{{Label: "Total", Value: "10"}}}, view.Blocks[0].Tiles)

	last, err := a.GetReport()
	require.NoError(t, err)
	assert.Equal(t, report.ID, last.ID)
}

func TestProcessErrorsStayInline(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"summary"}},
		models.AgentDescriptor{ID: "panel_load_balancer", WebhookPath: "/p", Enabled: true, FilenameKeywords: []string{"summary"}},
	)
	invoker := &fakeInvoker{
		responses: map[string]jsonval.Value{
			"panel_load_balancer": jsonval.MustParse(`{"agent_name":"p","sections":[{"type":"recommendations","data":["Rec 1","Rec 2"]}]}`),
		},
		errs: map[string]error{
			"sourcing_quality_agent": &n8n.TransportError{URL: "http://n8n.local/s", StatusCode: 500},
		},
	}
	a := NewHiringAgent(cfg, invoker)

	report, err := a.Process(context.Background(), []models.Upload{
		{Name: "Summary.csv"},
		{Name: "Summary_2.csv"},
	}, RunOptions{BaseURL: "http://override:5678"})
	require.NoError(t, err)

	assert.Len(t, invoker.calls, 4)
	assert.Equal(t, "http://override:5678", invoker.calls[0].BaseURL)

	pairs := report.Pairs()
	require.Len(t, pairs, 4)
	assert.Equal(t, "error", pairs[0].Outcome)
	var terr *n8n.TransportError
	assert.True(t, errors.As(pairs[0].Err, &terr))
	assert.Equal(t, render.LevelError, pairs[0].View.Blocks[0].Level)
	assert.Contains(t, pairs[0].Error, "http://n8n.local/s")

	assert.Equal(t, "standardized", pairs[1].Outcome)
	assert.Equal(t, []string{"Rec 1", "Rec 2"}, report.Insights)
	assert.Equal(t, "Rec 1\nRec 2", report.InsightsText())
}

func TestProcessGroupsAndNumbering(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "panel_load_balancer", WebhookPath: "/p", Enabled: true, FilenameKeywords: []string{"tracker"}},
		models.AgentDescriptor{ID: "custom_agent", WebhookPath: "/c", Enabled: true, FilenameKeywords: []string{"tracker"}},
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"tracker"}, Description: "Sourcing Quality"},
		models.AgentDescriptor{ID: "pipeline_health_agent", WebhookPath: "/h", Enabled: true, FilenameKeywords: []string{"tracker"}},
	)
	cfg.N8N.Groups = []config.AgentGroup{
		{Label: "A. Hiring Tracker Agents", Agents: []string{"sourcing_quality_agent", "rejection_pattern_agent", "panel_load_balancer"}},
		{Label: "B. Offer & Funnel Agents", Agents: []string{"offer_rejection_agent", "pipeline_health_agent"}},
	}
	invoker := &fakeInvoker{responses: map[string]jsonval.Value{}}
	a := NewHiringAgent(cfg, invoker)

	report, err := a.Process(context.Background(), []models.Upload{{Name: "tracker.csv"}}, RunOptions{})
	require.NoError(t, err)

	pairs := report.Pairs()
	require.Len(t, pairs, 4)

	headings := make([]string, 0, len(pairs))
	for _, p := range pairs {
		headings = append(headings, p.Group+"|"+p.Heading())
	}
	assert.Equal(t, []string{
		"A. Hiring Tracker Agents|1. Sourcing Quality",
		"A. Hiring Tracker Agents|2. Panel Load Balancer",
		"B. Offer & Funnel Agents|1. Pipeline Health Agent",
		"|Custom Agent",
	}, headings)
}

func TestProcessLegacyAndOfferRejection(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"summary"}},
		models.AgentDescriptor{ID: "offer_rejection_agent", WebhookPath: "/o", Enabled: true, FilenameKeywords: []string{"summary"}, Renderer: models.RendererOfferRejection},
	)
	invoker := &fakeInvoker{responses: map[string]jsonval.Value{
		"sourcing_quality_agent": jsonval.MustParse(`[{"json":{"sources":[{"Source":"A","Recommendation":"Post earlier"},{"Source":"B"}]}}]`),
		"offer_rejection_agent":  jsonval.MustParse(`[{"json":{"offer_rejection_summary":{"totalOffers":3,"reasons":[{"reason":"Pay","count":2}]}}}]`),
	}}
	a := NewHiringAgent(cfg, invoker)

	report, err := a.Process(context.Background(), []models.Upload{{Name: "Summary.csv"}}, RunOptions{})
	require.NoError(t, err)

	pairs := report.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "records", pairs[0].Outcome)
	assert.Equal(t, [][]string{{"A", "Post earlier"}, {"B", ""}}, pairs[0].View.Tables()[0].Table.Rows)
	assert.Equal(t, "offer_rejection", pairs[1].Outcome)
	assert.Equal(t, []string{"Post earlier"}, report.Insights)
}

func TestProcessUnmatchedAndDefault(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"summary"}},
	)
	invoker := &fakeInvoker{}
	a := NewHiringAgent(cfg, invoker)

	report, err := a.Process(context.Background(), []models.Upload{{Name: "other.csv"}}, RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, invoker.calls)
	require.Len(t, report.Files, 1)
	assert.Empty(t, report.Files[0].Matched)

	cfg.DefaultAgent = "missing_agent"
	a = NewHiringAgent(cfg, nil)
	report, err = a.Process(context.Background(), []models.Upload{{Name: "other.csv"}}, RunOptions{})
	require.NoError(t, err)

	pairs := report.Pairs()
	require.Len(t, pairs, 1)
	var cerr *n8n.ConfigurationError
	assert.True(t, errors.As(pairs[0].Err, &cerr))
}

func TestProcessNoAgents(t *testing.T) {
	cfg := testConfig("http://n8n.local", models.AgentDescriptor{ID: "off", Enabled: false})
	_, err := NewHiringAgent(cfg, &fakeInvoker{}).Process(context.Background(), []models.Upload{{Name: "a.csv"}}, RunOptions{})
	assert.ErrorIs(t, err, ErrNoAgents)

	_, err = NewHiringAgent(config.DefaultConfig(), nil).GetReport()
	assert.Error(t, err)
}

func TestProcessCancelled(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"summary"}},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	invoker := &fakeInvoker{}
	report, err := NewHiringAgent(cfg, invoker).Process(ctx, []models.Upload{{Name: "Summary.csv"}}, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, invoker.calls)
}

func TestProgressCallback(t *testing.T) {
	cfg := testConfig("http://n8n.local",
		models.AgentDescriptor{ID: "sourcing_quality_agent", WebhookPath: "/s", Enabled: true, FilenameKeywords: []string{"summary"}},
	)
	a := NewHiringAgent(cfg, &fakeInvoker{})

	var messages []string
	a.SetProgressCallback(func(current, total int, message string) {
		assert.LessOrEqual(t, current, total)
		messages = append(messages, message)
	})

	_, err := a.Process(context.Background(), []models.Upload{{Name: "Summary.csv"}, {Name: "summary-2.csv"}}, RunOptions{})
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.True(t, strings.HasPrefix(messages[0], "Processing 2 files"))
	assert.Equal(t, "Processing complete!", messages[3])
}
