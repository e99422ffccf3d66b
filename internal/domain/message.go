package domain

import "time"

type Sender string

const (
	SenderUser    Sender = "user"
	SenderPersona Sender = "persona"
)

// Message se crea una vez por turno y no se modifica.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	Sender         Sender    `json:"sender"`
	CreatedAt      time.Time `json:"created_at"`
	AffinityDelta  *int      `json:"affinity_delta,omitempty"`
	QuotedContent  *string   `json:"quoted_content,omitempty"`
	SelectedOption *int      `json:"selected_option,omitempty"` // modo practica
}

func (m Message) FromUser() bool {
	return m.Sender == SenderUser
}
