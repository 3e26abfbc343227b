// Package n8n posts hiring-tracker CSVs to n8n workflow webhooks.
package n8n

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// FileField is the multipart field the workflows read the upload from
const FileField = "file"

// DefaultTimeout applies when NewClient is given a non-positive timeout
const DefaultTimeout = 90 * time.Second

// maxErrorBody caps how much of a failed response is kept for the error message
const maxErrorBody = 4 << 10

// AgentLookup resolves an agent identifier to its descriptor
type AgentLookup interface {
	Get(id string) (models.AgentDescriptor, bool)
}

// Request is one (file, agent) call
type Request struct {
	AgentID  string
	BaseURL  string
	FileName string
	Content  []byte
}

// Client invokes agent webhooks. Each call is a single attempt.
type Client struct {
	agents     AgentLookup
	httpClient *http.Client
}

// NewClient creates a webhook client
func NewClient(agents AgentLookup, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		agents:     agents,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WebhookURL joins base and path with exactly one slash
func WebhookURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Invoke uploads the file to the agent's webhook. A JSON body is decoded;
// any other body is returned verbatim as a string value.
func (c *Client) Invoke(ctx context.Context, req Request) (jsonval.Value, error) {
	if req.AgentID == "" {
		return jsonval.Value{}, &ConfigurationError{Reason: "no agent identifier given"}
	}
	agent, ok := c.agents.Get(req.AgentID)
	if !ok {
		return jsonval.Value{}, &ConfigurationError{AgentID: req.AgentID, Reason: "agent is not configured"}
	}
	path := strings.TrimSpace(agent.Path())
	if path == "" {
		return jsonval.Value{}, &ConfigurationError{AgentID: req.AgentID, Reason: "webhook path not set"}
	}
	if strings.TrimSpace(req.BaseURL) == "" {
		return jsonval.Value{}, &ConfigurationError{AgentID: req.AgentID, Reason: "n8n base URL not set"}
	}

	url := WebhookURL(req.BaseURL, path)
	body, contentType, err := encodeUpload(req.FileName, req.Content)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("failed to encode upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return jsonval.Value{}, &ConfigurationError{AgentID: req.AgentID, Reason: fmt.Sprintf("invalid webhook URL %s: %v", url, err)}
	}
	httpReq.Header.Set("Content-Type", contentType)

	start := time.Now()
	log.Info().Str("agent", req.AgentID).Str("file", req.FileName).Str("url", url).Msg("Calling webhook")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return jsonval.Value{}, &TransportError{URL: url, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return jsonval.Value{}, &TransportError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return jsonval.Value{}, &TransportError{URL: url, Timeout: isTimeout(err), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.Info().
		Str("agent", req.AgentID).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("Webhook responded")

	if v, err := jsonval.Parse(data); err == nil {
		return v, nil
	}
	log.Debug().Str("agent", req.AgentID).Msg("Webhook returned a non-JSON body")
	return jsonval.StringValue(string(data)), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeUpload builds the multipart body with the CSV under FileField
func encodeUpload(fileName string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", "text/csv")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
