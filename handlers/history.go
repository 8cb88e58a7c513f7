package handlers

import (
	"net/http"

	"churn-dashboard/middleware"
	"churn-dashboard/models"
	"churn-dashboard/services"
	"churn-dashboard/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HistoryHandler struct {
	sessions   *services.SessionService
	cookieName string
	secure     bool
}

func NewHistoryHandler(sessions *services.SessionService, cookieName string, secure bool) *HistoryHandler {
	return &HistoryHandler{sessions: sessions, cookieName: cookieName, secure: secure}
}

// entries reads the history of the request's session. A request without a
// session has no history.
func entries(c *gin.Context) ([]models.HistoryEntry, error) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return nil, nil
	}
	return sess.History(c.Request.Context())
}

func (h *HistoryHandler) Page(c *gin.Context) {
	list, err := entries(c)
	if err != nil {
		log.Error().Err(err).Msg("history read failed")
		renderError(c, http.StatusInternalServerError, "Prediction History", "The prediction history is not available right now.")
		return
	}
	telemetry.HistoryViews.Inc()
	c.HTML(http.StatusOK, "history.html", gin.H{
		"Title":  "Prediction History",
		"Active": "history",
		"Table":  models.NewHistoryTable(list),
	})
}

func (h *HistoryHandler) List(c *gin.Context) {
	list, err := entries(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history read failed"})
		return
	}
	if list == nil {
		list = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  list,
		"count": len(list),
	})
}

// Append records one prediction in the caller's session. This is the hook
// the prediction collaborator posts to.
func (h *HistoryHandler) Append(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no session"})
		return
	}

	var entry models.HistoryEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object"})
		return
	}
	if len(entry) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prediction record is empty"})
		return
	}

	if err := sess.Append(c.Request.Context(), entry); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("history append failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history append failed"})
		return
	}
	telemetry.HistoryAppends.Inc()
	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

// EndSession discards the session and its history. Browsers are sent back
// to the History page, API clients get JSON.
func (h *HistoryHandler) EndSession(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.sessions.End(c.Request.Context(), sess); err != nil {
			log.Error().Err(err).Msg("session end failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session end failed"})
			return
		}
		log.Debug().Str("session", sess.ID).Msg("session ended")
	}
	middleware.ClearSessionCookie(c, h.cookieName, h.secure)

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, gin.H{"status": "ended"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/history")
}
