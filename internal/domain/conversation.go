package domain

import "time"

// RoundCeiling es la cantidad maxima de rondas por conversacion.
const RoundCeiling = 45

type ConversationStatus string

const (
	ConversationActive ConversationStatus = "active"
	ConversationEnded  ConversationStatus = "ended"
)

const (
	EndReasonUser    = "user"
	EndReasonCeiling = "round_ceiling"
	EndReasonBreakup = "breakup"
)

// MemorySummary reemplaza el historial crudo comprimido en los prompts siguientes.
type MemorySummary struct {
	DurationDays int       `json:"duration_days"`
	Topics       []string  `json:"topics"`
	Affinity     int       `json:"affinity"`
	Narrative    string    `json:"narrative"`
	Round        int       `json:"round"`
	CoveredUntil time.Time `json:"covered_until"`
}

// Conversation es una foto inmutable; los cambios devuelven una copia nueva.
type Conversation struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	PersonaID      string             `json:"persona_id"`
	Affinity       int                `json:"affinity"`
	Round          int                `json:"round"`
	Status         ConversationStatus `json:"status"`
	SceneID        string             `json:"scene_id,omitempty"`
	Memory         *MemorySummary     `json:"memory,omitempty"`
	TokenEstimate  int                `json:"token_estimate"`
	AffinityPoints []AffinityPoint    `json:"affinity_points"`
	EndReason      string             `json:"end_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewConversation arma la conversacion con el punto semilla de ronda 0.
func NewConversation(id, userID, personaID, sceneID string, seedAffinity int, now time.Time) Conversation {
	tl := NewAffinityTimeline(seedAffinity, now)
	return Conversation{
		ID:             id,
		UserID:         userID,
		PersonaID:      personaID,
		Affinity:       tl.Last().Value,
		Round:          0,
		Status:         ConversationActive,
		SceneID:        sceneID,
		AffinityPoints: tl.Points(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (c Conversation) Timeline() AffinityTimeline {
	return TimelineFromPoints(c.AffinityPoints)
}

func (c Conversation) IsActive() bool {
	return c.Status == ConversationActive
}

// TurnUpdate describe el efecto de una ronda completa.
type TurnUpdate struct {
	Delta       int
	Reason      string
	MessageID   string
	IsPeak      bool
	TokensAdded int
	At          time.Time
}

// ApplyTurn agrega el punto de la ronda y devuelve la conversacion nueva junto al punto.
// Al llegar al techo de rondas la conversacion queda terminada.
func (c Conversation) ApplyTurn(u TurnUpdate) (Conversation, AffinityPoint) {
	tl, p := c.Timeline().Append(u.Delta, u.Reason, u.MessageID, u.IsPeak, u.At)
	next := c.clone()
	next.AffinityPoints = tl.Points()
	next.Affinity = p.Value
	next.Round = p.Round
	next.TokenEstimate = c.TokenEstimate + u.TokensAdded
	next.UpdatedAt = u.At
	if next.Round >= RoundCeiling {
		next.Status = ConversationEnded
		next.EndReason = EndReasonCeiling
	}
	return next, p
}

// WithMemory guarda el resumen y reinicia el contador de tokens.
func (c Conversation) WithMemory(summary MemorySummary, tokens int) Conversation {
	next := c.clone()
	s := summary
	s.Topics = append([]string(nil), summary.Topics...)
	next.Memory = &s
	next.TokenEstimate = tokens
	return next
}

func (c Conversation) End(reason string, at time.Time) Conversation {
	next := c.clone()
	next.Status = ConversationEnded
	next.EndReason = reason
	next.UpdatedAt = at
	return next
}

func (c Conversation) clone() Conversation {
	next := c
	next.AffinityPoints = append([]AffinityPoint(nil), c.AffinityPoints...)
	if c.Memory != nil {
		m := *c.Memory
		m.Topics = append([]string(nil), c.Memory.Topics...)
		next.Memory = &m
	}
	return next
}
