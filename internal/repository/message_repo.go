package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"affinity-chat/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, content, sender, affinity_delta, quoted_content, selected_option, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		message.Content,
		message.Sender,
		message.AffinityDelta,
		message.QuotedContent,
		message.SelectedOption,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = `
		SELECT id, conversation_id, content, sender, affinity_delta, quoted_content, selected_option, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Content,
			&msg.Sender,
			&msg.AffinityDelta,
			&msg.QuotedContent,
			&msg.SelectedOption,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
