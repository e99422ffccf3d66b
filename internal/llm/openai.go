package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// OpenAIClient implementa LLMClient con el SDK oficial de OpenAI.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient devuelve nil si no hay apiKey; ConversationService lo trata como backend ausente.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// ConversationService ya reintenta con backoff.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client, model: model, logger: logger}
}

func (c *OpenAIClient) Chat(ctx context.Context, in ChatRequest) (ChatResponse, error) {
	if c == nil || c.client == nil {
		return ChatResponse{}, ErrBackendUnavailable
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toOpenAIMessages(in.Messages),
		Temperature: openai.Float(in.Temperature),
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(in.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn("openai error status", zap.Int("status", apiErr.StatusCode), zap.Error(err))
			return ChatResponse{}, &APIError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
		}
		return ChatResponse{}, fmt.Errorf("openai chat: %w", classifyTransportError(err))
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ChatResponse{}, ErrBackendEmpty
	}

	choice := resp.Choices[0]
	return ChatResponse{
		Content: choice.Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishReason: string(choice.FinishReason),
	}, nil
}

func toOpenAIMessages(msgs []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
