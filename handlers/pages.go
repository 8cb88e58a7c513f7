package handlers

import (
	"errors"
	"net/http"

	"churn-dashboard/dashboard"
	"churn-dashboard/dataset"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PagesHandler struct {
	dash    *dashboard.Service
	repoURL string
}

func NewPagesHandler(dash *dashboard.Service, repoURL string) *PagesHandler {
	return &PagesHandler{dash: dash, repoURL: repoURL}
}

func (h *PagesHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", gin.H{
		"Title":  "Home",
		"Active": "home",
	})
}

// About shows the repository link only after the button was pressed, which
// submits reveal=1.
func (h *PagesHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{
		"Title":         "About App",
		"Active":        "about",
		"Reveal":        c.Query("reveal") != "",
		"RepositoryURL": h.repoURL,
	})
}

func (h *PagesHandler) Dashboard(c *gin.Context) {
	mode := dashboard.ParseMode(c.Query("mode"))
	data := gin.H{
		"Title":  "Dashboard",
		"Active": "dashboard",
		"Mode":   mode,
		"Modes":  dashboard.Modes,
	}

	view, err := h.dash.Render(c.Request.Context(), mode, true)
	if err != nil {
		var le *dataset.LoadError
		if !errors.As(err, &le) {
			log.Error().Err(err).Msg("dashboard render failed")
		}
		data["LoadError"] = err.Error()
		c.HTML(http.StatusInternalServerError, "dashboard.html", data)
		return
	}
	data["View"] = view
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   title,
		"Message": message,
	})
}
