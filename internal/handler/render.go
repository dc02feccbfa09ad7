package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/session"
)

// Render executes an HTML template with the session context folded in.
// Queued flash messages are popped and persisted away so they show once.
func Render(c *gin.Context, mgr *session.Manager, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = []model.Flash{}
	}

	if sess := middleware.CurrentSession(c); sess != nil {
		data["Session"] = sess
		if flashes := sess.PopFlashes(); len(flashes) > 0 {
			data["Flashes"] = flashes
			if err := mgr.Save(c.Request.Context(), sess); err != nil {
				log.Error().Err(err).Msg("failed to clear flashes")
			}
		}
	}

	c.HTML(code, name, data)
}
