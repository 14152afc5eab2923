package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// Google adapts provider.Request/Response to the Gemini generateContent
// API, whose wire shape and auth convention (API key as a query
// parameter, not a header) differ from the OpenAI-compatible family.
type Google struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogle constructs a Google adapter. baseURL is trimmed of any
// trailing slash, e.g. "https://generativelanguage.googleapis.com/v1beta".
func NewGoogle(apiKey, baseURL string, httpClient *http.Client) (*Google, error) {
	if apiKey == "" {
		return nil, gatewayerr.NewConfigError("google: API key cannot be empty")
	}
	if baseURL == "" {
		return nil, gatewayerr.NewConfigError("google: base URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Google{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}, nil
}

type googleRequest struct {
	Contents []googleContent `json:"contents"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleResponse struct {
	Candidates []googleCandidate `json:"candidates"`
}

type googleCandidate struct {
	Content googleContent `json:"content"`
}

// Generate sends req.ResolvedPrompt() as the sole content part of a
// generateContent request for the given model.
func (g *Google) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if req.Model == "" {
		return provider.Response{}, gatewayerr.NewConfigError("google: request carries no model")
	}

	body := googleRequest{
		Contents: []googleContent{
			{Parts: []googlePart{{Text: req.ResolvedPrompt()}}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("google: marshal request: %v", err)
	}

	endpoint := g.baseURL + "/models/" + req.Model + ":generateContent?key=" + g.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("google: create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, gatewayerr.NewNetworkError("google: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return provider.Response{}, gatewayerr.NewApiError("google gemini request failed with status %d: %s", resp.StatusCode, errBody)
	}

	var parsed googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.Response{}, gatewayerr.NewApiError("google: decode response: %v", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return provider.Response{}, gatewayerr.NewApiError("google: response contained no candidates")
	}

	return provider.Response{
		Content:  parsed.Candidates[0].Content.Parts[0].Text,
		Provider: provider.Google.String(),
	}, nil
}

var _ provider.Adapter = (*Google)(nil)
