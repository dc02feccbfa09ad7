package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery handles panics, logging details server-side and rendering a
// generic failure page. Panic values never reach the browser.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("request panic recovered")

				c.Abort()
				c.HTML(http.StatusInternalServerError, "error.html", gin.H{
					"Title":     "Something went wrong",
					"RequestID": c.GetString(ContextRequestID),
				})
			}
		}()
		c.Next()
	}
}
