package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLocalTurnLock(t *testing.T) {
	t.Run("serializa la misma conversacion", func(t *testing.T) {
		l := NewLocalTurnLock()
		release, err := l.Acquire(context.Background(), "c1")
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		if _, err := l.Acquire(ctx, "c1"); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded while held, got %v", err)
		}

		release()
		release()
		release2, err := l.Acquire(context.Background(), "c1")
		if err != nil {
			t.Fatalf("expected lock free after release, got %v", err)
		}
		release2()
		if len(l.slots) != 0 {
			t.Fatalf("expected slots cleaned up, got %d", len(l.slots))
		}
	})

	t.Run("conversaciones independientes", func(t *testing.T) {
		l := NewLocalTurnLock()
		r1, err := l.Acquire(context.Background(), "c1")
		if err != nil {
			t.Fatalf("acquire c1: %v", err)
		}
		defer r1()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r2, err := l.Acquire(ctx, "c2")
		if err != nil {
			t.Fatalf("expected c2 independent of c1, got %v", err)
		}
		r2()
	})

	t.Run("exclusion mutua bajo concurrencia", func(t *testing.T) {
		l := NewLocalTurnLock()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := l.Acquire(context.Background(), "c1")
				if err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				release()
			}()
		}
		wg.Wait()
		if maxSeen != 1 {
			t.Fatalf("expected at most one holder, saw %d", maxSeen)
		}
	})
}

type mockTurnEvaler struct {
	mu      sync.Mutex
	results []int64
	err     error
	scripts []string
	args    [][]interface{}
}

func (m *mockTurnEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, script)
	m.args = append(m.args, args)
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	var v int64 = 1
	if len(m.results) > 0 {
		v = m.results[0]
		m.results = m.results[1:]
	}
	cmd.SetVal(v)
	return cmd
}

func TestRedisTurnLock(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		if NewRedisTurnLock(nil, 0, nil) != nil {
			t.Fatalf("expected nil lock without client")
		}
	})

	t.Run("adquiere tras reintentar y libera con el mismo token", func(t *testing.T) {
		mock := &mockTurnEvaler{results: []int64{0, 0, 1, 1}}
		l := newRedisTurnLock(mock, time.Minute, nil)
		l.poll = time.Millisecond

		release, err := l.Acquire(context.Background(), "c1")
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		release()

		if len(mock.scripts) != 4 || mock.scripts[3] != redisTurnReleaseScript {
			t.Fatalf("expected 3 acquire attempts and a release, got %d calls", len(mock.scripts))
		}
		if mock.args[0][0] != mock.args[3][0] {
			t.Fatalf("expected release with the acquire token")
		}
		if ms, ok := mock.args[0][1].(int64); !ok || ms != time.Minute.Milliseconds() {
			t.Fatalf("expected ttl in ms, got %v", mock.args[0][1])
		}
	})

	t.Run("error de redis", func(t *testing.T) {
		boom := errors.New("boom")
		l := newRedisTurnLock(&mockTurnEvaler{err: boom}, 0, nil)
		if _, err := l.Acquire(context.Background(), "c1"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped redis error, got %v", err)
		}
	})

	t.Run("contexto vencido mientras espera", func(t *testing.T) {
		mock := &mockTurnEvaler{results: make([]int64, 200)}
		l := newRedisTurnLock(mock, 0, nil)
		l.poll = 5 * time.Millisecond
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Millisecond)
		defer cancel()
		if _, err := l.Acquire(ctx, "c1"); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("id vacio", func(t *testing.T) {
		l := newRedisTurnLock(&mockTurnEvaler{}, 0, nil)
		if _, err := l.Acquire(context.Background(), ""); err == nil {
			t.Fatalf("expected error for empty id")
		}
	})
}
