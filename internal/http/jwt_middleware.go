package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-relay/internal/domain"
	"trading-relay/internal/service"
)

const authPrincipalKey = "auth_principal"

// JWTAuthMiddleware valida el access token y guarda el principal en el contexto.
// Los navegadores no pueden fijar headers en un WebSocket, así que también se acepta ?token=.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		principal, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authPrincipalKey, principal)
		c.Next()
	}
}

// GetPrincipal obtiene el principal autenticado desde el contexto.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(authPrincipalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
