package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qondlabs/qad-assistant/internal/analytics"
	"github.com/qondlabs/qad-assistant/internal/auth"
	"github.com/qondlabs/qad-assistant/internal/common"
	"github.com/qondlabs/qad-assistant/internal/httpapi/middleware"
)

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "username and password required")
		return
	}
	ctx := c.Request.Context()

	if h.Redis != nil {
		locked, err := h.Redis.IsLocked(ctx, req.Username)
		if err != nil {
			log.Printf("[Login] throttle check failed user=%s err=%v", req.Username, err)
		} else if locked {
			common.Fail(c, http.StatusTooManyRequests, 42901, "too many failed attempts, try again later")
			return
		}
	}

	if !h.Creds.Authenticate(req.Username, req.Password) {
		if err := h.Analytics.RecordAction(ctx, analytics.AnonymousSession,
			"failed_login", "Attempted username: "+req.Username); err != nil {
			log.Printf("[Login] record failed_login err=%v", err)
		}
		if h.Redis != nil {
			if _, err := h.Redis.RecordFailure(ctx, req.Username); err != nil {
				log.Printf("[Login] throttle bump failed user=%s err=%v", req.Username, err)
			}
		}
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
		return
	}

	if h.Redis != nil {
		_ = h.Redis.ClearFailures(ctx, req.Username)
	}

	token, err := auth.SignJWT(req.Username, h.Cfg.JWTSecret, h.Cfg.SessionTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to sign token")
		return
	}

	// Each login starts a fresh chat session.
	sessionID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to allocate session")
		return
	}

	if err := h.Analytics.RecordAction(ctx, sessionID, "user_login", "User: "+req.Username); err != nil {
		log.Printf("[Login] record user_login err=%v", err)
	}

	c.SetCookie(middleware.SessionCookie, token,
		int(h.Cfg.SessionTTL/time.Second), "/", "", false, true)

	common.OK(c, gin.H{
		"username":   req.Username,
		"token":      token,
		"session_id": sessionID,
	})
}
