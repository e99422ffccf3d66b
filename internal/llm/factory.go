package llm

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// NewClient elige la implementacion segun el proveedor. Sin apiKey devuelve nil:
// el orquestador usa entonces solo el motor de reglas.
func NewClient(provider, baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) LLMClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return NewOpenAIClient(baseURL, apiKey, model, timeout, logger)
	default:
		return NewHTTPClient(baseURL, apiKey, model, timeout, logger)
	}
}
