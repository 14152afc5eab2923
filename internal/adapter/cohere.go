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

const cohereDefaultModel = "command-r"

// Cohere adapts provider.Request/Response to Cohere's v2 chat API, whose
// reply nests text content blocks under message.content rather than a
// choices array.
type Cohere struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewCohere constructs a Cohere adapter. baseURL defaults callers should
// pass as "https://api.cohere.com".
func NewCohere(apiKey, baseURL string, httpClient *http.Client) (*Cohere, error) {
	if apiKey == "" {
		return nil, gatewayerr.NewConfigError("cohere: API key cannot be empty")
	}
	if baseURL == "" {
		return nil, gatewayerr.NewConfigError("cohere: base URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Cohere{apiKey: apiKey, baseURL: baseURL, client: httpClient}, nil
}

type cohereRequest struct {
	Model    string          `json:"model"`
	Messages []cohereMessage `json:"messages"`
}

type cohereMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cohereResponse struct {
	Message cohereResponseMessage `json:"message"`
}

type cohereResponseMessage struct {
	Content []cohereContentBlock `json:"content"`
}

type cohereContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate sends req.ResolvedPrompt() as a single user message to the
// chat endpoint and returns the first text content block of the reply.
func (c *Cohere) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	model := req.Model
	if model == "" {
		model = cohereDefaultModel
	}

	body := cohereRequest{
		Model: model,
		Messages: []cohereMessage{
			{Role: "user", Content: req.ResolvedPrompt()},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("cohere: marshal request: %v", err)
	}

	endpoint := c.baseURL + "/v2/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("cohere: create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, gatewayerr.NewNetworkError("cohere: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return provider.Response{}, gatewayerr.NewApiError("cohere request failed with status %d: %s", resp.StatusCode, errBody)
	}

	var parsed cohereResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.Response{}, gatewayerr.NewApiError("cohere: decode response: %v", err)
	}

	for _, block := range parsed.Message.Content {
		if block.Type == "text" {
			return provider.Response{Content: block.Text, Provider: provider.Cohere.String()}, nil
		}
	}
	return provider.Response{}, gatewayerr.NewApiError("cohere: response contained no text content block")
}

var _ provider.Adapter = (*Cohere)(nil)
