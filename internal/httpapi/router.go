package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qondlabs/qad-assistant/internal/common"
	"github.com/qondlabs/qad-assistant/internal/httpapi/handlers"
	"github.com/qondlabs/qad-assistant/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/health", h.Health)
	r.POST("/login", h.Login)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(h.Cfg.JWTSecret))

	api.POST("/chat", h.Chat)
	api.POST("/chat/clear", h.ClearChat)

	api.GET("/analytics/overview", h.AnalyticsOverview)
	api.GET("/analytics/query_categories", h.QueryCategories)
	api.GET("/analytics/daily_activity", h.DailyActivity)
	api.GET("/analytics/requisition_trends", h.RequisitionTrends)
	api.GET("/analytics/top_queries", h.TopQueries)

	api.POST("/kpi/jobs", h.CreateKPIJob)
	api.GET("/kpi/jobs/:job_id", h.GetKPIJob)

	return r
}
