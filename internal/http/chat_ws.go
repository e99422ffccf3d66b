package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"affinity-chat/internal/service"
)

const (
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// El origen ya queda acotado por el token JWT.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsTurnFrame struct {
	Content        string  `json:"content"`
	QuotedContent  *string `json:"quoted_content"`
	SelectedOption *int    `json:"selected_option"`
}

// ChatSocket maneja GET /conversations/:id/ws: una ronda por frame, en orden.
// Antes de cada respuesta envia un frame "typing" y espera la demora del personaje.
func (h *ChatHandler) ChatSocket(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		var frame wsTurnFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("conversation_id", conv.ID), zap.Error(err))
			}
			return
		}

		res, err := h.convs.Turn(ctx, conv.ID, frame.Content, service.TurnOptions{
			QuotedContent:  frame.QuotedContent,
			SelectedOption: frame.SelectedOption,
		})
		if err != nil {
			status, text := errorStatus(err)
			if status == http.StatusInternalServerError {
				h.logger.Error("websocket turn failed", zap.String("conversation_id", conv.ID), zap.Error(err))
			}
			if !h.writeFrame(conn, gin.H{"type": "error", "status": status, "error": text}) {
				return
			}
			continue
		}

		if res.ReplyDelay > 0 {
			if !h.writeFrame(conn, gin.H{"type": "typing", "reply_delay_ms": res.ReplyDelay.Milliseconds()}) {
				return
			}
			if waitDelay(ctx, res.ReplyDelay) != nil {
				return
			}
		}
		payload := turnPayload(res)
		payload["type"] = "turn"
		if !h.writeFrame(conn, payload) {
			return
		}
	}
}

func (h *ChatHandler) writeFrame(conn *websocket.Conn, v any) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
		return false
	}
	return true
}

func waitDelay(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
