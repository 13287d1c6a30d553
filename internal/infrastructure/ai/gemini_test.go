package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedRequest struct {
	Path string
	Body map[string]any
}

func fakeGemini(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var seen []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		seen = append(seen, capturedRequest{Path: r.URL.Path, Body: body})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newCompleter(t *testing.T, srv *httptest.Server) *GeminiCompleter {
	t.Helper()
	c, err := NewGeminiCompleter(context.Background(), Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

const groundedReply = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Occupancy in Dubai is up 4%."}]},
    "groundingMetadata": {
      "groundingChunks": [
        {"web": {"uri": "https://news.example/dubai", "title": "Dubai hotels"}},
        {"web": {"uri": "https://str.example/report"}}
      ]
    }
  }]
}`

func TestGeminiCompleter_Grounded(t *testing.T) {
	srv, seen := fakeGemini(t, http.StatusOK, groundedReply)
	c := newCompleter(t, srv)

	res, err := c.Complete(context.Background(), "market news?", assistant.CompletionOptions{GroundingEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, "Occupancy in Dubai is up 4%.", res.Text)
	assert.Equal(t, []assistant.Citation{
		{Title: "Dubai hotels", URL: "https://news.example/dubai"},
		{URL: "https://str.example/report"},
	}, res.Citations)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.True(t, strings.HasSuffix(req.Path, "/models/"+DefaultModel+":generateContent"), req.Path)
	assert.Contains(t, req.Body, "tools")
}

func TestGeminiEnhancer(t *testing.T) {
	srv, seen := fakeGemini(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Seaside calm."}]}}]}`)
	e := NewGeminiEnhancer(newCompleter(t, srv))

	text, err := e.Enhance(context.Background(), &property.Record{Name: "W Muscat"})
	require.NoError(t, err)
	assert.Equal(t, "Seaside calm.", text)
	require.Len(t, *seen, 1)
	assert.NotContains(t, (*seen)[0].Body, "tools")
}

func TestGeminiCompleter_Errors(t *testing.T) {
	t.Run("service error", func(t *testing.T) {
		srv, _ := fakeGemini(t, http.StatusBadRequest, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`)
		_, err := newCompleter(t, srv).Complete(context.Background(), "hi", assistant.CompletionOptions{})
		assert.Error(t, err)
	})

	t.Run("no api key", func(t *testing.T) {
		c, err := NewGeminiCompleter(context.Background(), Config{}, nil)
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), "hi", assistant.CompletionOptions{})
		assert.ErrorIs(t, err, ErrNotConfigured)

		text, ok := assistant.Enhance(context.Background(), NewGeminiEnhancer(c), &property.Record{Name: "x"})
		assert.False(t, ok)
		assert.Equal(t, assistant.ErrorEnhanceFallback, text)
	})
}
