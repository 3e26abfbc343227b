package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/fmuoria/hiring-agent/internal/config"
	"github.com/fmuoria/hiring-agent/internal/insights"
	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
	"github.com/fmuoria/hiring-agent/internal/n8n"
	"github.com/fmuoria/hiring-agent/internal/normalize"
	"github.com/fmuoria/hiring-agent/internal/render"
)

// ErrNoAgents is returned when the configuration enables no agent
var ErrNoAgents = errors.New("no agents are enabled in the configuration")

// ProgressCallback is called to report progress during processing
type ProgressCallback func(current, total int, message string)

// Invoker calls one agent webhook
type Invoker interface {
	Invoke(ctx context.Context, req n8n.Request) (jsonval.Value, error)
}

// RunOptions tune a single run
type RunOptions struct {
	// BaseURL overrides the configured n8n base URL when set
	BaseURL string
}

// PairResult is the outcome of one (file, agent) call
type PairResult struct {
	File     string        `json:"file"`
	AgentID  string        `json:"agent_id"`
	Title    string        `json:"title"`
	Group    string        `json:"group,omitempty"`
	Position int           `json:"position,omitempty"`
	Outcome  string        `json:"outcome"`
	View     *render.View  `json:"view"`
	Raw      jsonval.Value `json:"raw"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// Heading is the title shown above the result, numbered within its group
func (p PairResult) Heading() string {
	if p.Position > 0 {
		return fmt.Sprintf("%d. %s", p.Position, p.Title)
	}
	return p.Title
}

// FileResult groups the pairs of one uploaded file
type FileResult struct {
	File    string       `json:"file"`
	Matched []string     `json:"matched"`
	Pairs   []PairResult `json:"pairs"`
}

// RunReport is everything produced by one run
type RunReport struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	BaseURL    string       `json:"base_url"`
	Files      []FileResult `json:"files"`
	Insights   []string     `json:"insights"`
}

// Pairs returns all pair results in processing order
func (r *RunReport) Pairs() []PairResult {
	var out []PairResult
	for _, f := range r.Files {
		out = append(out, f.Pairs...)
	}
	return out
}

// InsightsText is the downloadable insights file content
func (r *RunReport) InsightsText() string {
	return insights.Text(r.Insights)
}

// HiringAgent runs uploaded files through their matching n8n agents
type HiringAgent struct {
	cfg        *config.Config
	invoker    Invoker
	last       *RunReport
	mu         sync.RWMutex
	progressCb ProgressCallback
}

// NewHiringAgent creates the orchestrator. A nil invoker means a webhook
// client built from cfg.
func NewHiringAgent(cfg *config.Config, invoker Invoker) *HiringAgent {
	if invoker == nil {
		invoker = n8n.NewClient(cfg.N8N.Agents, cfg.Timeout())
	}
	return &HiringAgent{
		cfg:     cfg,
		invoker: invoker,
	}
}

// Config returns the configuration the agent was built with
func (a *HiringAgent) Config() *config.Config {
	return a.cfg
}

// SetProgressCallback sets the progress callback function
func (a *HiringAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

// reportProgress calls the progress callback if set
func (a *HiringAgent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

type plannedFile struct {
	upload  models.Upload
	matched []string
	ordered []string
}

// Process runs every upload through its matching agents, one call at a time.
//
// Failures are recorded on the pair they belong to and never stop the run.
// Cancelling ctx stops before the next call; the partial report is returned
// together with the context error.
func (a *HiringAgent) Process(ctx context.Context, uploads []models.Upload, opts RunOptions) (*RunReport, error) {
	if len(a.cfg.N8N.Agents.Enabled()) == 0 {
		return nil, ErrNoAgents
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = a.cfg.N8N.BaseURL
	}

	report := &RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		BaseURL:   baseURL,
	}

	plan := make([]plannedFile, 0, len(uploads))
	total := 0
	for _, up := range uploads {
		matched := Match(up.Name, a.cfg.N8N.Agents.All(), a.cfg.DefaultAgent)
		ordered := OrderByGroups(matched, a.cfg.N8N.Groups)
		plan = append(plan, plannedFile{upload: up, matched: matched, ordered: ordered})
		total += len(ordered)
	}

	log.Info().Str("run", report.ID).Int("files", len(uploads)).Int("calls", total).Msg("Starting run")
	a.reportProgress(0, total, fmt.Sprintf("Processing %d files...", len(uploads)))

	var collected insights.Collector
	done := 0
	for _, pf := range plan {
		fileResult := FileResult{File: pf.upload.Name, Matched: pf.matched}
		if len(pf.ordered) == 0 {
			log.Warn().Str("file", pf.upload.Name).Msg("No agent matched file")
		}

		groupCounters := make(map[string]int)
		for _, agentID := range pf.ordered {
			select {
			case <-ctx.Done():
				report.Files = append(report.Files, fileResult)
				a.finish(report, &collected)
				return report, ctx.Err()
			default:
			}

			pair := a.processPair(ctx, pf.upload, agentID, baseURL, &collected)
			if label, _, ok := a.cfg.GroupOf(agentID); ok {
				groupCounters[label]++
				pair.Group = label
				pair.Position = groupCounters[label]
			}
			fileResult.Pairs = append(fileResult.Pairs, pair)

			done++
			a.reportProgress(done, total, fmt.Sprintf("Processed %s with %s (%d/%d)", pf.upload.Name, pair.Title, done, total))
		}
		report.Files = append(report.Files, fileResult)
	}

	a.finish(report, &collected)
	a.reportProgress(total, total, "Processing complete!")
	return report, nil
}

func (a *HiringAgent) finish(report *RunReport, collected *insights.Collector) {
	report.Insights = collected.Items()
	report.FinishedAt = time.Now()

	log.Info().
		Str("run", report.ID).
		Int("insights", len(report.Insights)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Run finished")

	a.mu.Lock()
	a.last = report
	a.mu.Unlock()
}

func (a *HiringAgent) processPair(ctx context.Context, up models.Upload, agentID, baseURL string, collected *insights.Collector) PairResult {
	descriptor, known := a.cfg.N8N.Agents.Get(agentID)
	title := agentID
	if known {
		title = descriptor.DisplayName()
	}
	pair := PairResult{File: up.Name, AgentID: agentID, Title: title}

	raw, err := a.invoker.Invoke(ctx, n8n.Request{
		AgentID:  agentID,
		BaseURL:  baseURL,
		FileName: up.Name,
		Content:  up.Content,
	})
	if err != nil {
		log.Error().Err(err).Str("file", up.Name).Str("agent", agentID).Msg("Agent call failed")
		pair.Outcome = "error"
		pair.Err = fmt.Errorf("error processing %s with %s: %w", up.Name, agentID, err)
		pair.Error = pair.Err.Error()
		pair.View = render.Error(title, pair.Err)
		return pair
	}
	pair.Raw = raw

	if descriptor.Renderer == models.RendererOfferRejection {
		if summary, ok := normalize.ExtractOfferRejection(raw); ok {
			pair.Outcome = "offer_rejection"
			pair.View = render.RenderOfferRejection(summary, title)
			return pair
		}
	}

	res := normalize.Normalize(raw)
	pair.Outcome = res.Kind.String()
	if res.Err != nil {
		pair.Err = res.Err
		pair.Error = res.Err.Error()
	}
	pair.View = render.RenderResult(res, render.Options{Title: title, ChartColumn: descriptor.ChartColumn})

	collected.Add(pair.View.ListItems()...)
	if res.Kind == normalize.Records {
		collected.Add(insights.FromRecords(res.Records)...)
	}
	return pair
}

// GetReport returns the report of the last run
func (a *HiringAgent) GetReport() (*RunReport, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.last == nil {
		return nil, fmt.Errorf("no results available, run an analysis first")
	}
	return a.last, nil
}
