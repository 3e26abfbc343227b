package n8n

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
	"github.com/fmuoria/hiring-agent/internal/models"
)

type registry map[string]models.AgentDescriptor

func (r registry) Get(id string) (models.AgentDescriptor, bool) {
	a, ok := r[id]
	return a, ok
}

func TestWebhookURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://n8n:5678", "/webhook/a", "http://n8n:5678/webhook/a"},
		{"http://n8n:5678/", "webhook/a", "http://n8n:5678/webhook/a"},
		{"http://n8n:5678//", "//webhook/a", "http://n8n:5678/webhook/a"},
		{"http://n8n:5678", "webhook/a", "http://n8n:5678/webhook/a"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WebhookURL(tt.base, tt.path))
	}
}

func TestInvokeSendsMultipartCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webhook/sourcing", r.URL.Path)

		file, header, err := r.FormFile(FileField)
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		assert.Equal(t, "Summary.csv", header.Filename)
		assert.Equal(t, "text/csv", header.Header.Get("Content-Type"))
		content, _ := io.ReadAll(file)
		assert.Equal(t, "Source,Hires\nLinkedIn,4\n", string(content))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"agent_name":"x","sections":[]}`))
	}))
	defer server.Close()

	client := NewClient(registry{"sourcing": {ID: "sourcing", WebhookPath: "/webhook/sourcing"}}, time.Second)
	v, err := client.Invoke(context.Background(), Request{
		AgentID:  "sourcing",
		BaseURL:  server.URL + "/",
		FileName: "Summary.csv",
		Content:  []byte("Source,Hires\nLinkedIn,4\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, jsonval.Object, v.Kind())
	assert.Equal(t, []string{"agent_name", "sections"}, v.Keys())
}

func TestInvokeEndpointFallbackAndText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/funnel", r.URL.Path)
		w.Write([]byte("Workflow was started"))
	}))
	defer server.Close()

	client := NewClient(registry{"funnel": {ID: "funnel", Endpoint: "webhook/funnel"}}, time.Second)
	v, err := client.Invoke(context.Background(), Request{AgentID: "funnel", BaseURL: server.URL, FileName: "Funnel.csv"})
	require.NoError(t, err)

	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, "Workflow was started", s)
}

func TestInvokeConfigurationErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(registry{"nopath": {ID: "nopath"}, "ok": {ID: "ok", WebhookPath: "/x"}}, time.Second)

	tests := []struct {
		name string
		req  Request
	}{
		{"Empty agent", Request{BaseURL: server.URL}},
		{"Unknown agent", Request{AgentID: "ghost", BaseURL: server.URL}},
		{"Missing path", Request{AgentID: "nopath", BaseURL: server.URL}},
		{"Missing base URL", Request{AgentID: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Invoke(context.Background(), tt.req)
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %v", err)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestInvokeNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow not active", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(registry{"a": {ID: "a", WebhookPath: "/webhook/a"}}, time.Second)
	_, err := client.Invoke(context.Background(), Request{AgentID: "a", BaseURL: server.URL, FileName: "a.csv"})

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	assert.Equal(t, server.URL+"/webhook/a", terr.URL)
	assert.Equal(t, "workflow not active", terr.Body)
	assert.Contains(t, err.Error(), server.URL+"/webhook/a")
}

func TestInvokeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(registry{"a": {ID: "a", WebhookPath: "/a"}}, 50*time.Millisecond)
	_, err := client.Invoke(context.Background(), Request{AgentID: "a", BaseURL: server.URL, FileName: "a.csv"})

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Timeout)
	assert.Zero(t, terr.StatusCode)
}

func TestInvokeConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(registry{"a": {ID: "a", WebhookPath: "/a"}}, time.Second)
	_, err := client.Invoke(context.Background(), Request{AgentID: "a", BaseURL: url, FileName: "a.csv"})

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, url+"/a", terr.URL)
	assert.Error(t, terr.Unwrap())
}
