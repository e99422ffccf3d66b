package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest es la lista ordenada de entradas con rol, mas temperatura y tope opcional.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// LLMClient define la interfaz del backend generador de respuestas.
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// HTTPClient implementa LLMClient contra una API de chat completions compatible con OpenAI.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye el cliente; un apiKey vacio deja el backend como no disponible.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Chat(ctx context.Context, in ChatRequest) (ChatResponse, error) {
	if c == nil || strings.TrimSpace(c.apiKey) == "" {
		return ChatResponse{}, ErrBackendUnavailable
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    in.Messages,
		Temperature: in.Temperature,
	}
	if in.MaxTokens > 0 {
		reqBody.MaxTokens = &in.MaxTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("do request: %w", classifyTransportError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("read response: %w", classifyTransportError(err))
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error status", zap.Int("status", resp.StatusCode), zap.String("body", string(respBody)))
		return ChatResponse{}, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return ChatResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return ChatResponse{}, fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return ChatResponse{}, ErrBackendEmpty
	}

	return ChatResponse{
		Content:      cr.Choices[0].Message.Content,
		Usage:        cr.Usage,
		FinishReason: cr.Choices[0].FinishReason,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
