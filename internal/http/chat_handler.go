package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affinity-chat/internal/domain"
	"affinity-chat/internal/service"
)

// ChatHandler expone el orquestador de conversaciones por HTTP.
type ChatHandler struct {
	logger *zap.Logger
	convs  *service.ConversationService
}

func NewChatHandler(logger *zap.Logger, convs *service.ConversationService) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{logger: logger, convs: convs}
}

type startConversationRequest struct {
	Persona      domain.Persona `json:"persona"`
	SceneID      string         `json:"scene_id"`
	SeedAffinity *int           `json:"seed_affinity"`
}

const defaultSeedAffinity = 30

// StartConversation maneja POST /conversations.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	userID, ok := ParticipantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start conversation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	seed := defaultSeedAffinity
	if req.SeedAffinity != nil {
		seed = *req.SeedAffinity
	}

	conv, err := h.convs.Start(c.Request.Context(), userID, req.Persona, req.SceneID, seed)
	if err != nil {
		h.writeError(c, "start conversation failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

// GetConversation maneja GET /conversations/:id.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// ListMessages maneja GET /conversations/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}
	msgs, err := h.convs.History(c.Request.Context(), conv.ID)
	if err != nil {
		h.writeError(c, "list messages failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type postTurnRequest struct {
	Content        string  `json:"content" binding:"required"`
	QuotedContent  *string `json:"quoted_content"`
	SelectedOption *int    `json:"selected_option"`
}

// PostTurn maneja POST /conversations/:id/turns.
func (h *ChatHandler) PostTurn(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}
	var req postTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid turn request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.convs.Turn(c.Request.Context(), conv.ID, req.Content, service.TurnOptions{
		QuotedContent:  req.QuotedContent,
		SelectedOption: req.SelectedOption,
	})
	if err != nil {
		h.writeError(c, "turn failed", err)
		return
	}

	c.JSON(http.StatusOK, turnPayload(res))
}

func turnPayload(res service.TurnResult) gin.H {
	return gin.H{
		"reply":          res.Reply,
		"point":          res.Point,
		"affinity":       res.Conversation.Affinity,
		"round":          res.Conversation.Round,
		"status":         res.Conversation.Status,
		"options":        res.Options,
		"radar":          res.Radar,
		"fallback":       res.Fallback,
		"event":          res.Event,
		"reply_delay_ms": res.ReplyDelay.Milliseconds(),
		"cost":           res.Cost,
		"message":        res.PersonaMessage,
	}
}

type endConversationRequest struct {
	Reason string `json:"reason"`
}

// EndConversation maneja POST /conversations/:id/end.
func (h *ChatHandler) EndConversation(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}
	var req endConversationRequest
	// cuerpo opcional
	_ = c.ShouldBindJSON(&req)

	ended, err := h.convs.End(c.Request.Context(), conv.ID, req.Reason)
	if err != nil {
		h.writeError(c, "end conversation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": ended})
}

// ownedConversation responde 404 tambien cuando la conversacion es de otro usuario.
func (h *ChatHandler) ownedConversation(c *gin.Context) (domain.Conversation, bool) {
	userID, ok := ParticipantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return domain.Conversation{}, false
	}
	conv, err := h.convs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get conversation failed", err)
		return domain.Conversation{}, false
	}
	if conv.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return domain.Conversation{}, false
	}
	return conv, true
}

func (h *ChatHandler) writeError(c *gin.Context, msg string, err error) {
	status, text := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": text})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, service.ErrRoundCeilingReached):
		return http.StatusConflict, "round ceiling reached"
	case errors.Is(err, service.ErrConversationEnded):
		return http.StatusConflict, "conversation ended"
	case errors.Is(err, domain.ErrInvalidTraits), errors.Is(err, service.ErrEmptyInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
