package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientChat(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"你好呀[FAVOR:+2:开心]"},"finish_reason":"stop"}],"usage":{"prompt_tokens":120,"completion_tokens":30,"total_tokens":150}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "key", "test-model", time.Second, nil)
	resp, err := c.Chat(context.Background(), ChatRequest{
		Messages:    []ChatMessage{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hola"}},
		Temperature: 0.7,
		MaxTokens:   64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "你好呀[FAVOR:+2:开心]" || resp.FinishReason != "stop" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Usage.PromptTokens != 120 || resp.Usage.CompletionTokens != 30 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "test-model" || len(gotBody.Messages) != 2 || gotBody.MaxTokens == nil || *gotBody.MaxTokens != 64 {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
}

func TestHTTPClientErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrBackendAuth},
		{http.StatusForbidden, ErrBackendAuth},
		{http.StatusTooManyRequests, ErrBackendRateLimited},
		{http.StatusInternalServerError, ErrBackendServer},
		{http.StatusBadGateway, ErrBackendServer},
		{http.StatusGatewayTimeout, ErrBackendTimeout},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
			_, err := c.Chat(context.Background(), ChatRequest{Messages: []ChatMessage{{Role: RoleUser, Content: "x"}}})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tc.status {
				t.Fatalf("expected APIError with status %d, got %v", tc.status, err)
			}
			if !IsRetryable(err) {
				t.Fatalf("expected %d to be retryable", tc.status)
			}
		})
	}

	t.Run("bad request no se reintenta", func(t *testing.T) {
		err := error(&APIError{StatusCode: http.StatusBadRequest})
		if IsRetryable(err) {
			t.Fatalf("did not expect 400 to be retryable")
		}
	})
}

func TestHTTPClientWithoutKey(t *testing.T) {
	c := NewHTTPClient("", "", "m", 0, nil)
	if _, err := c.Chat(context.Background(), ChatRequest{}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestHTTPClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "m", time.Second, nil)
	if _, err := c.Chat(context.Background(), ChatRequest{}); !errors.Is(err, ErrBackendEmpty) {
		t.Fatalf("expected ErrBackendEmpty, got %v", err)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "m", 20*time.Millisecond, nil)
	_, err := c.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrBackendTimeout) {
		t.Fatalf("expected ErrBackendTimeout, got %v", err)
	}
}

func TestCostRatesEstimate(t *testing.T) {
	got := DefaultCostRates().Estimate(Usage{PromptTokens: 2000, CompletionTokens: 1000})
	want := 2*DefaultInputRatePer1K + DefaultOutputRatePer1K
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMockClientConsumesInOrder(t *testing.T) {
	m := &MockClient{
		Errs:     []error{ErrBackendServer},
		Response: ChatResponse{Content: "ok"},
	}
	if _, err := m.Chat(context.Background(), ChatRequest{}); !errors.Is(err, ErrBackendServer) {
		t.Fatalf("expected first call to fail, got %v", err)
	}
	resp, err := m.Chat(context.Background(), ChatRequest{})
	if err != nil || resp.Content != "ok" {
		t.Fatalf("expected second call ok, got %v %v", resp, err)
	}
	if m.Calls != 2 {
		t.Fatalf("expected 2 calls, got %d", m.Calls)
	}
}

func TestNewClientProvider(t *testing.T) {
	if c := NewClient(ProviderHTTP, "", "", "m", 0, nil); c != nil {
		t.Fatalf("expected nil client without key")
	}
	if _, ok := NewClient(ProviderOpenAI, "", "key", "m", 0, nil).(*OpenAIClient); !ok {
		t.Fatalf("expected openai client")
	}
	if _, ok := NewClient("", "", "key", "m", 0, nil).(*HTTPClient); !ok {
		t.Fatalf("expected http client by default")
	}
}
