package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// originSet es la allow-list compartida por CORS y el upgrader WebSocket.
type originSet map[string]bool

func newOriginSet(origins []string) originSet {
	set := make(originSet, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			set[o] = true
		}
	}
	return set
}

func (s originSet) allows(origin string) bool {
	return s[strings.TrimRight(origin, "/")]
}

// corsMiddleware permite los orígenes configurados con credenciales,
// todos los métodos y los headers que pida el preflight.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origins := newOriginSet(allowedOrigins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !origins.allows(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			method := c.GetHeader("Access-Control-Request-Method")
			if method == "" {
				method = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"
			}
			h.Set("Access-Control-Allow-Methods", method)
			if reqHeaders := c.GetHeader("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
