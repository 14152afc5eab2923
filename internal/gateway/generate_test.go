package gateway

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/security"
)

func TestGenerate_NoRouter(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", nil, nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"prompt":"hi"}`))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", &fakeRouter{resp: provider.Response{Content: "x"}}, nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"prompt":""}`))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGenerate_WhitespaceOnlyPrompt(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", &fakeRouter{resp: provider.Response{Content: "x"}}, nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"prompt":"   \t\n  "}`))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", &fakeRouter{resp: provider.Response{Content: "hello", Provider: "openai"}}, nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"prompt":"hi there"}`))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", &fakeRouter{resp: provider.Response{Content: "x"}}, nil, nil, nil, nil, nil)

	oversized := bytes.Repeat([]byte("a"), security.DefaultMaxMessageSize+2)
	body := `{"prompt":"` + string(oversized) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestGenerate_JSONTooDeep(t *testing.T) {
	t.Parallel()
	g := New(Config{}, "", &fakeRouter{resp: provider.Response{Content: "x"}}, nil, nil, nil, nil, nil)

	depth := security.DefaultMaxJSONDepth + 5
	body := strings.Repeat(`{"a":`, depth) + "1" + strings.Repeat("}", depth)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	g.handleGenerate().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
