package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bikefleet/internal/middleware"
	"bikefleet/internal/ratelimit"
	"bikefleet/internal/usecase/control"
	apperrors "bikefleet/pkg/errors"
	"bikefleet/pkg/utils"
)

type ControlHandler struct {
	service *control.Service
	limiter *ratelimit.Limiter
}

func NewControlHandler(service *control.Service, limiter *ratelimit.Limiter) *ControlHandler {
	return &ControlHandler{service: service, limiter: limiter}
}

// RegisterRoutes mounts the unlock flow. The poll and ack routes are
// device-facing and carry the per-device token bucket; unlock is keyed by
// client IP.
func (h *ControlHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/unlock",
		middleware.DeviceRateLimit(h.limiter, "unlock", middleware.ClientByIP()),
		h.Unlock)
	router.GET("/devices/:id/commands",
		middleware.DeviceRateLimit(h.limiter, "poll", middleware.ClientByParam("id")),
		h.PollCommands)
	router.POST("/commands/:id/ack",
		middleware.DeviceRateLimit(h.limiter, "ack", middleware.ClientByIP()),
		h.AckCommand)
}

func (h *ControlHandler) Unlock(c *gin.Context) {
	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing Idempotency-Key")
		return
	}

	var req control.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing bike_id")
		return
	}

	resp, err := h.service.Unlock(c.Request.Context(), idemKey, &req)
	if apperrors.KindOf(err) == apperrors.KindDuplicate {
		c.JSON(http.StatusConflict, h.service.Duplicate(c.Request.Context(), idemKey))
		return
	}
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ControlHandler) PollCommands(c *gin.Context) {
	deviceID := c.Param("id")

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "since must be a unix timestamp")
			return
		}
		t := time.Unix(ts, 0)
		since = &t
	}

	cmds, err := h.service.Poll(c.Request.Context(), deviceID, since)
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, cmds)
}

func (h *ControlHandler) AckCommand(c *gin.Context) {
	var req control.AckRequest
	// An empty body defaults the status; only malformed JSON is rejected.
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Ack(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}
