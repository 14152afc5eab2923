package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// anthropicAPIVersion is the Messages API version this adapter speaks.
const anthropicAPIVersion = "2023-06-01"

// anthropicDefaultMaxTokens bounds the response when a request carries
// no explicit limit; Anthropic requires max_tokens on every call.
const anthropicDefaultMaxTokens = 4096

// Anthropic adapts provider.Request/Response to the Claude Messages API.
// Unlike the OpenAI-compatible family it authenticates via an x-api-key
// header plus a required anthropic-version header, and nests reply text
// under content[0].text rather than choices[0].message.content.
type Anthropic struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAnthropic constructs an Anthropic adapter. baseURL defaults callers
// should pass as "https://api.anthropic.com".
func NewAnthropic(apiKey, baseURL string, httpClient *http.Client) (*Anthropic, error) {
	if apiKey == "" {
		return nil, gatewayerr.NewConfigError("anthropic: API key cannot be empty")
	}
	if baseURL == "" {
		return nil, gatewayerr.NewConfigError("anthropic: base URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Anthropic{apiKey: apiKey, baseURL: baseURL, client: httpClient}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const anthropicDefaultModel = "claude-3-5-haiku-20241022"

// Generate sends req.ResolvedPrompt() as a single user message to the
// Messages API and returns the first text content block of the reply.
func (a *Anthropic) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	model := req.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	body := anthropicRequest{
		Model:     model,
		MaxTokens: anthropicDefaultMaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.ResolvedPrompt()},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("anthropic: marshal request: %v", err)
	}

	endpoint := a.baseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("anthropic: create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, gatewayerr.NewNetworkError("anthropic: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return provider.Response{}, gatewayerr.NewApiError("anthropic request failed with status %d: %s", resp.StatusCode, errBody)
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.Response{}, gatewayerr.NewApiError("anthropic: decode response: %v", err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return provider.Response{Content: block.Text, Provider: provider.Anthropic.String()}, nil
		}
	}
	return provider.Response{}, gatewayerr.NewApiError("anthropic: response contained no text content block")
}

var _ provider.Adapter = (*Anthropic)(nil)
