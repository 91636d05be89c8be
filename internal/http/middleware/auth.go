package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/http/response"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/requestdata"
	"github.com/yungbote/brainforge-backend/internal/services"
)

const (
	bearerPrefix     = "bearer "
	tokenQueryParam  = "token"
	unauthorizedText = "missing or invalid token"
)

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "auth"), auth: auth}
}

// RequireAuth resolves the caller from the bearer token and stores the
// identity on the request context. The ?token= query is accepted for
// clients that cannot set headers (image tags, EventSource).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, unauthorizedText)
			return
		}
		ctx, err := m.auth.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			m.log.Debug("Rejected token", "error", err)
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, unauthorizedText)
			return
		}
		if requestdata.UserID(ctx) == uuid.Nil {
			response.AbortError(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return strings.TrimSpace(c.Query(tokenQueryParam))
}
