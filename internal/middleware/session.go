package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/session"
)

// ContextSession is the gin context key holding the loaded *model.Session
const ContextSession = "session"

type SessionMiddleware struct {
	manager    *session.Manager
	cookieName string
	secure     bool
}

func NewSessionMiddleware(manager *session.Manager, cookieName string, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		manager:    manager,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Load resolves the session cookie on every request. Expired sessions
// are cleared and sent back to the login page; anything else invalid is
// treated as anonymous without comment.
func (m *SessionMiddleware) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := m.manager.Load(c.Request.Context(), token)
		if err != nil {
			m.ClearCookie(c)
			if errors.Is(err, session.ErrExpired) {
				c.Redirect(http.StatusSeeOther, "/login?expired=1")
				c.Abort()
				return
			}
			if !errors.Is(err, session.ErrNoSession) {
				// Store trouble, not a bad cookie. Fail closed as anonymous.
				log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("session load failed")
			}
			c.Next()
			return
		}

		c.Set(ContextSession, sess)
		c.Next()
	}
}

// RequireAuth gates protected routes: anonymous requests are redirected
// to the login page, never partially served.
func (m *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// IssueCookie sets the signed session cookie on the response
func (m *SessionMiddleware) IssueCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, 0, "/", "", m.secure, true)
}

// ClearCookie expires the session cookie
func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// CurrentSession returns the loaded session, or nil when anonymous
func CurrentSession(c *gin.Context) *model.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return nil
}
