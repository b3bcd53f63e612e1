/*
client.go - Text-generation collaborator

PURPOSE:
  Wraps the Gemini generateContent REST endpoint behind a one-method
  Client interface. The engine only ever hands it a prompt and consumes
  the result as an opaque string or failure; any transport or API error
  surfaces as pto.ErrExternalService, never as a panic.

SEE ALSO:
  - outlook.go: the only prompt builder in the system
*/
package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flcc/pto-engine/pto"
)

// Model names accepted by the generateContent endpoint.
const (
	ModelFlash = "gemini-3-flash-preview"
	ModelPro   = "gemini-3-pro-preview"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Client generates text from a prompt. Implementations may fail; callers
// must treat failures as reportable conditions, not crashes.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini calls the Google generative language API.
type Gemini struct {
	APIKey string
	Model  string

	// HTTPClient defaults to one with a 30s timeout.
	HTTPClient *http.Client
}

// NewGemini builds a client for the flash model.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		APIKey:     apiKey,
		Model:      ModelFlash,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt to the model and returns the first candidate's
// text. Every failure path wraps pto.ErrExternalService.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", pto.ErrExternalService)
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", pto.ErrExternalService, err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", pto.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := g.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pto.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", pto.ErrExternalService, err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", pto.ErrExternalService, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: %s", pto.ErrExternalService, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", pto.ErrExternalService)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
