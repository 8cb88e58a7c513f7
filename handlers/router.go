package handlers

import (
	"fmt"

	"churn-dashboard/config"
	"churn-dashboard/dashboard"
	"churn-dashboard/middleware"
	"churn-dashboard/services"
	"churn-dashboard/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every page, API route and middleware.
func NewRouter(cfg *config.Config, dash *dashboard.Service, sessions *services.SessionService) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(cfg.CORS))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	router.GET("/health", Health(dash, sessions.Store()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := NewPagesHandler(dash, cfg.Server.RepositoryURL)
	router.GET("/", pages.Landing)
	router.GET("/about", pages.About)
	router.GET("/dashboard", pages.Dashboard)

	session := middleware.Session(sessions, cfg.Session.CookieName, cfg.Session.SecureCookie)
	history := NewHistoryHandler(sessions, cfg.Session.CookieName, cfg.Session.SecureCookie)

	withSession := router.Group("/", session)
	withSession.GET("/history", history.Page)
	withSession.POST("/session/end", history.EndSession)
	withSession.GET("/ws/history", LiveHistory)

	api := router.Group("/api")
	api.GET("/dashboard", NewDashboardAPI(dash).Get)

	apiSession := api.Group("", session)
	apiSession.GET("/history", history.List)
	apiSession.POST("/history", history.Append)
	apiSession.POST("/session/end", history.EndSession)

	return router, nil
}
