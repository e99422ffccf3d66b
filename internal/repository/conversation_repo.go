package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"affinity-chat/internal/domain"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv domain.Conversation) error
	Update(ctx context.Context, conv domain.Conversation) error
	GetByID(ctx context.Context, id string) (domain.Conversation, error)
}

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

func (r *PgConversationRepository) Create(ctx context.Context, conv domain.Conversation) error {
	const query = `
		INSERT INTO conversations (id, user_id, persona_id, affinity, round, status, scene_id, memory, token_estimate, affinity_points, end_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	points, memory, err := encodeConversationJSON(conv)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		conv.ID,
		conv.UserID,
		conv.PersonaID,
		conv.Affinity,
		conv.Round,
		conv.Status,
		conv.SceneID,
		memory,
		conv.TokenEstimate,
		points,
		conv.EndReason,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	return err
}

func (r *PgConversationRepository) Update(ctx context.Context, conv domain.Conversation) error {
	const query = `
		UPDATE conversations
		SET affinity = $1, round = $2, status = $3, memory = $4, token_estimate = $5, affinity_points = $6, end_reason = $7, updated_at = $8
		WHERE id = $9
	`
	points, memory, err := encodeConversationJSON(conv)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query,
		conv.Affinity,
		conv.Round,
		conv.Status,
		memory,
		conv.TokenEstimate,
		points,
		conv.EndReason,
		conv.UpdatedAt,
		conv.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgConversationRepository) GetByID(ctx context.Context, id string) (domain.Conversation, error) {
	const query = `
		SELECT id, user_id, persona_id, affinity, round, status, scene_id, memory, token_estimate, affinity_points, end_reason, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	var (
		conv   domain.Conversation
		memory []byte
		points []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.PersonaID,
		&conv.Affinity,
		&conv.Round,
		&conv.Status,
		&conv.SceneID,
		&memory,
		&conv.TokenEstimate,
		&points,
		&conv.EndReason,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conversation{}, ErrNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	if err := json.Unmarshal(points, &conv.AffinityPoints); err != nil {
		return domain.Conversation{}, fmt.Errorf("decode affinity_points: %w", err)
	}
	if len(memory) > 0 && string(memory) != "null" {
		var m domain.MemorySummary
		if err := json.Unmarshal(memory, &m); err != nil {
			return domain.Conversation{}, fmt.Errorf("decode memory: %w", err)
		}
		conv.Memory = &m
	}
	return conv, nil
}

// La linea de afinidad y la memoria se guardan como JSONB.
func encodeConversationJSON(conv domain.Conversation) ([]byte, []byte, error) {
	points := conv.AffinityPoints
	if points == nil {
		points = []domain.AffinityPoint{}
	}
	pointsJSON, err := json.Marshal(points)
	if err != nil {
		return nil, nil, fmt.Errorf("encode affinity_points: %w", err)
	}
	var memoryJSON []byte
	if conv.Memory != nil {
		if memoryJSON, err = json.Marshal(conv.Memory); err != nil {
			return nil, nil, fmt.Errorf("encode memory: %w", err)
		}
	}
	return pointsJSON, memoryJSON, nil
}
