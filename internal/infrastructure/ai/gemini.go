// Package ai adapts the Gemini API to the assistant's text service contracts.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/britrip/hotelier/internal/domain/assistant"
	"github.com/britrip/hotelier/internal/domain/property"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for chat and enhancement
const DefaultModel = "gemini-3-flash-preview"

// ErrNotConfigured is returned by the completer when no API key was provided
var ErrNotConfigured = errors.New("gemini API key is not configured")

// Config configures the Gemini client
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiCompleter implements assistant.TextCompleter on the Gemini API.
// Grounded completions enable the Google Search tool and surface the web
// sources of the answer as citations.
type GeminiCompleter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiCompleter creates a completer. Without an API key it returns a
// completer whose calls fail with ErrNotConfigured, which the assistant turns
// into its fallback replies.
func NewGeminiCompleter(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiCompleter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c := &GeminiCompleter{model: cfg.Model, timeout: cfg.Timeout, logger: logger}
	if cfg.APIKey == "" {
		logger.Warn("gemini API key not set, assistant will answer with fallbacks")
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Complete implements assistant.TextCompleter
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, opts assistant.CompletionOptions) (*assistant.Completion, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var gc *genai.GenerateContentConfig
	if opts.GroundingEnabled {
		gc = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), gc)
	if err != nil {
		c.logger.Warn("gemini request failed",
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	c.logger.Debug("gemini request completed",
		zap.String("model", c.model),
		zap.Bool("grounded", opts.GroundingEnabled),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &assistant.Completion{
		Text:      resp.Text(),
		Citations: citationsOf(resp),
	}, nil
}

// citationsOf collects the web grounding chunks of the first candidate
func citationsOf(resp *genai.GenerateContentResponse) []assistant.Citation {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	var out []assistant.Citation
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, assistant.Citation{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return out
}

// GeminiEnhancer implements assistant.DescriptionEnhancer with an ungrounded completion
type GeminiEnhancer struct {
	completer *GeminiCompleter
}

// NewGeminiEnhancer wraps a completer
func NewGeminiEnhancer(c *GeminiCompleter) *GeminiEnhancer {
	return &GeminiEnhancer{completer: c}
}

// Enhance implements assistant.DescriptionEnhancer
func (e *GeminiEnhancer) Enhance(ctx context.Context, rec *property.Record) (string, error) {
	return assistant.CompleterEnhancer{Completer: e.completer}.Enhance(ctx, rec)
}

var (
	_ assistant.TextCompleter       = (*GeminiCompleter)(nil)
	_ assistant.DescriptionEnhancer = (*GeminiEnhancer)(nil)
)
