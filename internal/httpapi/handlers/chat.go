package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qondlabs/qad-assistant/internal/analytics"
	"github.com/qondlabs/qad-assistant/internal/common"
)

type chatReq struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	Visual    bool   `json:"visual"`
}

// Chat relays the query to the workflow webhook, logs the exchange, and
// optionally attaches the interactive KPI payload.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "message required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := common.NewULID()
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, 50001, "failed to allocate session")
			return
		}
		sessionID = id
	}

	ctx := c.Request.Context()

	reply, err := h.Workflow.Ask(ctx, sessionID, req.Message)
	if err != nil {
		log.Printf("[Chat] webhook call failed session=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusBadGateway, 50201, "workflow unavailable")
		return
	}

	var kpiData any
	if req.Visual && h.KPI != nil {
		// Bounded: the chat response should not hang on a slow model.
		kctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		kpiData = h.KPI.Enrich(kctx, reply.Message, reply.TableData)
		cancel()
	}

	if err := h.Analytics.RecordMessage(ctx, sessionID, req.Message, reply.Message, ""); err != nil {
		if errors.Is(err, analytics.ErrInvalidInput) {
			common.Fail(c, http.StatusBadRequest, 10002, err.Error())
			return
		}
		log.Printf("[Chat] record message failed session=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to log interaction")
		return
	}
	if err := h.Analytics.RecordAction(ctx, sessionID, "message_sent",
		"Query: "+analytics.TruncateQuery(req.Message)); err != nil {
		log.Printf("[Chat] record action failed session=%s err=%v", sessionID, err)
	}

	resp := gin.H{
		"response":    reply.Message,
		"chatMessage": reply.Message,
		"tableData":   reply.TableData,
		"session_id":  sessionID,
	}
	if kpiData != nil {
		resp["kpiData"] = kpiData
	}
	common.OK(c, resp)
}

type clearChatReq struct {
	SessionID string `json:"session_id" binding:"required"`
}

func (h *Handler) ClearChat(c *gin.Context) {
	var req clearChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "session_id required")
		return
	}

	if err := h.Analytics.ClearSession(c.Request.Context(), req.SessionID); err != nil {
		if errors.Is(err, analytics.ErrInvalidInput) {
			common.Fail(c, http.StatusBadRequest, 10002, err.Error())
			return
		}
		log.Printf("[ClearChat] failed session=%s err=%v", req.SessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to clear chat")
		return
	}
	common.OK(c, gin.H{"status": "success"})
}
