package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisTurnAcquireScript = `
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
  return 1
end
return 0
`

// Solo borra la clave si sigue siendo nuestra.
const redisTurnReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultTurnLockTTL  = 90 * time.Second
	defaultTurnLockPoll = 50 * time.Millisecond
)

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisTurnLock serializa turnos entre procesos con SET NX PX y un token de propiedad.
type RedisTurnLock struct {
	client redisEvaler
	ttl    time.Duration
	poll   time.Duration
	prefix string
	logger *zap.Logger
}

func NewRedisTurnLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTurnLock {
	if client == nil {
		return nil
	}
	return newRedisTurnLock(client, ttl, logger)
}

func newRedisTurnLock(client redisEvaler, ttl time.Duration, logger *zap.Logger) *RedisTurnLock {
	if ttl <= 0 {
		ttl = defaultTurnLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTurnLock{
		client: client,
		ttl:    ttl,
		poll:   defaultTurnLockPoll,
		prefix: "conv:turn:",
		logger: logger,
	}
}

func (l *RedisTurnLock) Acquire(ctx context.Context, conversationID string) (func(), error) {
	if conversationID == "" {
		return nil, errors.New("turn lock: empty conversation id")
	}
	key := l.prefix + conversationID
	token := uuid.NewString()

	for {
		ok, err := l.client.Eval(ctx, redisTurnAcquireScript, []string{key}, token, l.ttl.Milliseconds()).Int()
		if err != nil {
			return nil, fmt.Errorf("turn lock acquire: %w", err)
		}
		if ok == 1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}

	return func() {
		// El contexto del turno puede estar cancelado; liberar igual.
		rctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := l.client.Eval(rctx, redisTurnReleaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("turn lock release failed", zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}, nil
}
