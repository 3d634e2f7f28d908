package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qondlabs/qad-assistant/internal/common"
)

func (h *Handler) AnalyticsOverview(c *gin.Context) {
	stats, err := h.Analytics.Overview(c.Request.Context())
	if err != nil {
		log.Printf("[AnalyticsOverview] err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load overview")
		return
	}
	common.OK(c, stats)
}

func (h *Handler) QueryCategories(c *gin.Context) {
	rows, err := h.Analytics.CategoryDistribution(c.Request.Context())
	if err != nil {
		log.Printf("[QueryCategories] err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load category distribution")
		return
	}
	common.OK(c, gin.H{"categories": rows})
}

func (h *Handler) DailyActivity(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	rows, err := h.Analytics.DailyActivity(c.Request.Context(), days)
	if err != nil {
		log.Printf("[DailyActivity] err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load daily activity")
		return
	}
	common.OK(c, gin.H{"activity": rows})
}

func (h *Handler) RequisitionTrends(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	rows, err := h.Analytics.RequisitionTrends(c.Request.Context(), days)
	if err != nil {
		log.Printf("[RequisitionTrends] err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load requisition trends")
		return
	}
	common.OK(c, gin.H{"trends": rows})
}

func (h *Handler) TopQueries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.Analytics.TopQueries(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[TopQueries] err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load top queries")
		return
	}
	common.OK(c, gin.H{"queries": rows})
}
