package service

import (
	"context"
	"sync"
)

// TurnLock serializa los turnos de una misma conversacion.
type TurnLock interface {
	Acquire(ctx context.Context, conversationID string) (release func(), err error)
}

// LocalTurnLock es el candado en proceso: un semaforo de capacidad 1 por conversacion.
type LocalTurnLock struct {
	mu    sync.Mutex
	slots map[string]*turnSlot
}

type turnSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalTurnLock() *LocalTurnLock {
	return &LocalTurnLock{slots: make(map[string]*turnSlot)}
}

func (l *LocalTurnLock) Acquire(ctx context.Context, conversationID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[conversationID]
	if !ok {
		slot = &turnSlot{ch: make(chan struct{}, 1)}
		l.slots[conversationID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(conversationID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.unref(conversationID, slot)
		})
	}, nil
}

func (l *LocalTurnLock) unref(id string, slot *turnSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, id)
	}
}
