package repository

import (
	"context"
	"sync"

	"affinity-chat/internal/domain"
)

// Stores en memoria para la CLI y los tests; mismas interfaces que las de Postgres.

type InMemoryConversationRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Conversation
}

func NewInMemoryConversationRepository() *InMemoryConversationRepository {
	return &InMemoryConversationRepository{items: make(map[string]domain.Conversation)}
}

func (r *InMemoryConversationRepository) Create(_ context.Context, conv domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conv.ID] = conv
	return nil
}

func (r *InMemoryConversationRepository) Update(_ context.Context, conv domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[conv.ID]; !ok {
		return ErrNotFound
	}
	r.items[conv.ID] = conv
	return nil
}

func (r *InMemoryConversationRepository) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.items[id]
	if !ok {
		return domain.Conversation{}, ErrNotFound
	}
	return conv, nil
}

type InMemoryMessageRepository struct {
	mu    sync.RWMutex
	items map[string][]domain.Message
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{items: make(map[string][]domain.Message)}
}

func (r *InMemoryMessageRepository) Create(_ context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[message.ConversationID] = append(r.items[message.ConversationID], message)
	return nil
}

func (r *InMemoryMessageRepository) ListByConversationID(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Message(nil), r.items[conversationID]...), nil
}

type InMemoryPersonaRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Persona
}

func NewInMemoryPersonaRepository() *InMemoryPersonaRepository {
	return &InMemoryPersonaRepository{items: make(map[string]domain.Persona)}
}

func (r *InMemoryPersonaRepository) Upsert(_ context.Context, persona domain.Persona) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[persona.ID] = persona
	return nil
}

func (r *InMemoryPersonaRepository) GetByID(_ context.Context, id string) (domain.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return domain.Persona{}, ErrNotFound
	}
	return p, nil
}
