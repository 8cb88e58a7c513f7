package middleware

import (
	"net/http"

	"churn-dashboard/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionKey = "session"

// Session attaches the caller's session to the gin context, starting a new
// one when the cookie is missing, expired or forged.
func Session(svc *services.SessionService, cookieName string, secure bool) gin.HandlerFunc {
	maxAge := int(svc.TTL().Seconds())
	return func(c *gin.Context) {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			if sess, err := svc.Resume(token); err == nil {
				c.Set(sessionKey, sess)
				c.Next()
				return
			}
		}

		sess, token, err := svc.Start()
		if err != nil {
			log.Error().Err(err).Msg("session start failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, token, maxAge, "/", "", secure, true)
		log.Debug().Str("session", sess.ID).Msg("session started")
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session Session attached, or nil outside it.
func CurrentSession(c *gin.Context) *services.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*services.Session)
	return sess
}

// ClearSessionCookie expires the cookie so the next request starts over.
func ClearSessionCookie(c *gin.Context, cookieName string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}
