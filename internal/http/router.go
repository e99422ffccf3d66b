package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affinity-chat/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas de conversacion.
func NewRouter(logger *zap.Logger, verifier *service.TokenVerifier, chatH *ChatHandler) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	conv := r.Group("/conversations", ParticipantAuth(verifier))
	conv.POST("", chatH.StartConversation)
	conv.GET("/:id", chatH.GetConversation)
	conv.GET("/:id/messages", chatH.ListMessages)
	conv.POST("/:id/turns", chatH.PostTurn)
	conv.POST("/:id/end", chatH.EndConversation)
	conv.GET("/:id/ws", chatH.ChatSocket)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
