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

// HuggingFace adapts provider.Request/Response to the Inference API's
// text-generation task, whose response shape varies by model: some
// return an array of {generated_text}, others an array of
// {generated_texts: [{text}]}, and some a single {generated_text} object.
type HuggingFace struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHuggingFace constructs a HuggingFace adapter.
func NewHuggingFace(apiKey, baseURL string, httpClient *http.Client) (*HuggingFace, error) {
	if apiKey == "" {
		return nil, gatewayerr.NewConfigError("huggingface: API key cannot be empty")
	}
	if baseURL == "" {
		return nil, gatewayerr.NewConfigError("huggingface: base URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HuggingFace{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}, nil
}

type huggingFaceRequest struct {
	Inputs     string                     `json:"inputs"`
	Parameters *huggingFaceRequestOptions `json:"parameters,omitempty"`
}

type huggingFaceRequestOptions struct {
	ReturnFullText bool `json:"return_full_text"`
}

// Generate sends req.ResolvedPrompt() to the model's text-generation
// endpoint and extracts the generated text from whichever response shape
// the model returns.
func (h *HuggingFace) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if req.Model == "" {
		return provider.Response{}, gatewayerr.NewConfigError("huggingface: request carries no model")
	}

	body := huggingFaceRequest{
		Inputs:     req.ResolvedPrompt(),
		Parameters: &huggingFaceRequestOptions{ReturnFullText: false},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("huggingface: marshal request: %v", err)
	}

	endpoint := h.baseURL + "/models/" + req.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("huggingface: create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, gatewayerr.NewNetworkError("huggingface: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return provider.Response{}, gatewayerr.NewApiError("hugging face request failed with status %d: %s", resp.StatusCode, errBody)
	}

	var value any
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return provider.Response{}, gatewayerr.NewApiError("huggingface: decode response: %v", err)
	}

	return provider.Response{
		Content:  extractGeneratedText(value),
		Provider: provider.HuggingFace.String(),
	}, nil
}

// extractGeneratedText pulls the generated text out of a Hugging Face
// text-generation response, which may be an array of {generated_text},
// an array of {generated_texts: [{text}]}, or a single {generated_text}
// object. Returns "" if none of those shapes match.
func extractGeneratedText(value any) string {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := obj["generated_text"].(string); ok {
				return text
			}
			if children, ok := obj["generated_texts"].([]any); ok && len(children) > 0 {
				if first, ok := children[0].(map[string]any); ok {
					if text, ok := first["text"].(string); ok {
						return text
					}
				}
			}
		}
		return ""
	case map[string]any:
		text, _ := v["generated_text"].(string)
		return text
	default:
		return ""
	}
}

var _ provider.Adapter = (*HuggingFace)(nil)
