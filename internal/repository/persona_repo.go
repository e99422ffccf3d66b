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

// PersonaRepository guarda el personaje para poder retomar la conversacion por id.
type PersonaRepository interface {
	Upsert(ctx context.Context, persona domain.Persona) error
	GetByID(ctx context.Context, id string) (domain.Persona, error)
}

type PgPersonaRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonaRepository(pool *pgxpool.Pool) *PgPersonaRepository {
	return &PgPersonaRepository{pool: pool}
}

func (r *PgPersonaRepository) Upsert(ctx context.Context, persona domain.Persona) error {
	const query = `
		INSERT INTO personas (id, name, traits)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, traits = EXCLUDED.traits
	`
	traits, err := json.Marshal(persona.Traits)
	if err != nil {
		return fmt.Errorf("encode traits: %w", err)
	}
	_, err = r.pool.Exec(ctx, query, persona.ID, persona.Name, traits)
	return err
}

func (r *PgPersonaRepository) GetByID(ctx context.Context, id string) (domain.Persona, error) {
	const query = `SELECT id, name, traits FROM personas WHERE id = $1`
	var (
		p      domain.Persona
		traits []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &traits)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Persona{}, ErrNotFound
	}
	if err != nil {
		return domain.Persona{}, err
	}
	if err := json.Unmarshal(traits, &p.Traits); err != nil {
		return domain.Persona{}, fmt.Errorf("decode traits: %w", err)
	}
	return p, nil
}
