package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"affinity-chat/internal/domain"
	"affinity-chat/internal/llm"
)

const (
	DefaultTemperature      = 0.8
	DefaultMaxTokens        = 512
	DefaultMaxAttempts      = 3
	DefaultRetryBase        = 500 * time.Millisecond
	DefaultMaxContextTokens = 6000
	DefaultMaxHistory       = 20
)

// EngineConfig reune los parametros del orquestador. No hay estado global: todo entra por aca.
type EngineConfig struct {
	// Temperature 0 es valida; un valor negativo usa DefaultTemperature.
	Temperature      float64
	MaxTokens        int
	MaxAttempts      int
	RetryBase        time.Duration
	MaxContextTokens int
	MaxHistory       int
	MemoryInterval   int
	CostRates        llm.CostRates

	// Inyectables para tests.
	Rand  domain.RandSource
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	NewID func() string
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Temperature:      DefaultTemperature,
		MaxTokens:        DefaultMaxTokens,
		MaxAttempts:      DefaultMaxAttempts,
		RetryBase:        DefaultRetryBase,
		MaxContextTokens: DefaultMaxContextTokens,
		MaxHistory:       DefaultMaxHistory,
		MemoryInterval:   DefaultMemoryInterval,
		CostRates:        llm.DefaultCostRates(),
	}
}

// withDefaults completa los campos en cero.
func (c EngineConfig) withDefaults() EngineConfig {
	d := DefaultEngineConfig()
	if c.Temperature < 0 {
		c.Temperature = d.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RetryBase <= 0 {
		c.RetryBase = d.RetryBase
	}
	if c.MaxContextTokens <= 0 {
		c.MaxContextTokens = d.MaxContextTokens
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = d.MaxHistory
	}
	if c.MemoryInterval <= 0 {
		c.MemoryInterval = d.MemoryInterval
	}
	if c.CostRates == (llm.CostRates{}) {
		c.CostRates = d.CostRates
	}
	if c.Rand == nil {
		c.Rand = &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	return c
}

// backoff devuelve base * 2^(attempt-1).
func (c EngineConfig) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return c.RetryBase * time.Duration(1<<(attempt-1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// *rand.Rand no es seguro entre goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
