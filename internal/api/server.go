package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/fmuoria/hiring-agent/internal/agent"
	"github.com/fmuoria/hiring-agent/internal/export"
	"github.com/fmuoria/hiring-agent/internal/ingestion"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// maxRuns is how many recent reports are kept for download
const maxRuns = 20

// Server handles HTTP requests
type Server struct {
	agent     *agent.HiringAgent
	uploadDir string

	mu    sync.Mutex
	runs  map[string]*agent.RunReport
	order []string
}

// NewServer creates a new API server
func NewServer(a *agent.HiringAgent) *Server {
	return &Server{
		agent: a,
		runs:  make(map[string]*agent.RunReport),
	}
}

// SetUploadDir keeps a copy of every analyzed upload under dir/<run id>.
// An empty dir disables it.
func (s *Server) SetUploadDir(dir string) {
	s.uploadDir = dir
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("GET /agents", s.handleAgents)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	mux.HandleFunc("GET /runs/{id}/insights.txt", s.handleInsights)
	mux.HandleFunc("GET /runs/{id}/export.xlsx", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "Hiring Agent",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /analyze":               "Upload CSV files and run them through the matching n8n agents",
			"POST /match":                 "Show which agents a filename would be sent to",
			"GET /agents":                 "List configured agents",
			"GET /runs/{id}":              "Get a run report",
			"GET /runs/{id}/insights.txt": "Download consolidated insights",
			"GET /runs/{id}/export.xlsx":  "Download the run as an Excel workbook",
			"GET /health":                 "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleAgents lists the configured agents and groups
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	cfg := s.agent.Config()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"base_url":      cfg.N8N.BaseURL,
		"default_agent": cfg.DefaultAgent,
		"groups":        cfg.N8N.Groups,
		"agents":        cfg.N8N.Agents.All(),
	})
}

// handleAnalyze runs the uploaded files and stores the report
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingestion.MaxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	uploads, skipped, err := ingestion.FromMultipart(r.MultipartForm.File["files"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(uploads) == 0 {
		s.respondError(w, http.StatusBadRequest, "no CSV files uploaded")
		return
	}

	report, err := s.agent.Process(r.Context(), uploads, agent.RunOptions{BaseURL: r.FormValue("base_url")})
	switch {
	case errors.Is(err, agent.ErrNoAgents):
		s.respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil && report == nil:
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		log.Warn().Err(err).Str("run", report.ID).Msg("Run stopped early")
	}

	s.store(report)
	s.keepUploads(report.ID, uploads)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"run":     report,
		"skipped": skipped,
	})
}

// handleMatch explains agent selection for a filename
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "filename is required")
		return
	}

	cfg := s.agent.Config()
	agents := cfg.N8N.Agents.All()
	matched := agent.OrderByGroups(agent.Match(req.Filename, agents, cfg.DefaultAgent), cfg.N8N.Groups)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"filename": req.Filename,
		"matched":  matched,
		"agents":   agent.Explain(req.Filename, agents),
	})
}

// handleRun returns a stored report
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleInsights downloads the consolidated insights of a run
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.InsightsFileName))
	if err := export.WriteInsightsText(w, report.Insights); err != nil {
		log.Error().Err(err).Str("run", report.ID).Msg("Failed to write insights")
	}
}

// handleExport downloads a run as an Excel workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "hiring_report_"+report.ID+".xlsx"))
	if err := export.WriteExcel(w, report); err != nil {
		log.Error().Err(err).Str("run", report.ID).Msg("Failed to write workbook")
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*agent.RunReport, bool) {
	id := r.PathValue("id")

	s.mu.Lock()
	report, ok := s.runs[id]
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", id))
	}
	return report, ok
}

// keepUploads writes the uploads of a run to the upload directory
func (s *Server) keepUploads(runID string, uploads []models.Upload) {
	if s.uploadDir == "" {
		return
	}
	dir := filepath.Join(s.uploadDir, runID)
	for _, up := range uploads {
		if _, err := ingestion.SaveUpload(dir, up); err != nil {
			log.Warn().Err(err).Str("run", runID).Str("file", up.Name).Msg("Failed to keep upload")
		}
	}
}

// store keeps the report, evicting the oldest beyond maxRuns
func (s *Server) store(report *agent.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[report.ID] = report
	s.order = append(s.order, report.ID)
	for len(s.order) > maxRuns {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}
