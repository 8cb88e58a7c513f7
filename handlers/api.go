package handlers

import (
	"net/http"

	"churn-dashboard/dashboard"
	"churn-dashboard/services"

	"github.com/gin-gonic/gin"
)

type DashboardAPI struct {
	dash *dashboard.Service
}

func NewDashboardAPI(dash *dashboard.Service) *DashboardAPI {
	return &DashboardAPI{dash: dash}
}

// Get returns the same render as the Dashboard page, without images.
func (h *DashboardAPI) Get(c *gin.Context) {
	mode := dashboard.ParseMode(c.Query("mode"))
	view, err := h.dash.Render(c.Request.Context(), mode, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func Health(dash *dashboard.Service, store services.HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"dataset":       dash.Source(),
			"history_store": store.Backend(),
		})
	}
}
