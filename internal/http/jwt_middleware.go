package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"affinity-chat/internal/service"
)

const participantIDKey = "participant_id"

// ParticipantAuth exige un access token y deja el id del participante en el contexto.
// Las rutas WebSocket aceptan ?access_token= porque el navegador no manda headers en el upgrade.
func ParticipantAuth(verifier *service.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := verifier.ParseAccessToken(token)
		switch {
		case errors.Is(err, service.ErrJWTExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(participantIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(header[len("bearer "):]), true
	}
	if websocketUpgrade(c.Request) {
		if token := strings.TrimSpace(c.Query("access_token")); token != "" {
			return token, true
		}
	}
	return "", false
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// ParticipantID devuelve el usuario autenticado de la request.
func ParticipantID(c *gin.Context) (string, bool) {
	id := c.GetString(participantIDKey)
	return id, id != ""
}
