package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"affinity-chat/internal/llm"
	"affinity-chat/internal/service"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	JWTSecret     string `env:"JWT_SECRET"`

	LLMProvider    string  `env:"LLM_PROVIDER" envDefault:"http"`
	LLMAPIKey      string  `env:"LLM_API_KEY"`
	LLMBaseURL     string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeoutSec  int     `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.8"`
	LLMMaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"512"`
	LLMInputRate   float64 `env:"LLM_INPUT_RATE" envDefault:"0.0015"`
	LLMOutputRate  float64 `env:"LLM_OUTPUT_RATE" envDefault:"0.002"`
	LLMMaxAttempts int     `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	LLMRetryBaseMS int     `env:"LLM_RETRY_BASE_MS" envDefault:"500"`

	MaxContextTokens int `env:"MAX_CONTEXT_TOKENS" envDefault:"6000"`
	MaxHistory       int `env:"MAX_HISTORY" envDefault:"20"`
	MemoryInterval   int `env:"MEMORY_INTERVAL" envDefault:"20"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineConfig traduce la configuración al objeto explícito del orquestador.
func (c *Config) EngineConfig() service.EngineConfig {
	ec := service.DefaultEngineConfig()
	ec.Temperature = c.LLMTemperature
	ec.MaxTokens = c.LLMMaxTokens
	ec.MaxAttempts = c.LLMMaxAttempts
	ec.RetryBase = time.Duration(c.LLMRetryBaseMS) * time.Millisecond
	ec.MaxContextTokens = c.MaxContextTokens
	ec.MaxHistory = c.MaxHistory
	ec.MemoryInterval = c.MemoryInterval
	ec.CostRates = llm.CostRates{InputPer1K: c.LLMInputRate, OutputPer1K: c.LLMOutputRate}
	return ec
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}
