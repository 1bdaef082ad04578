package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bikefleet/internal/usecase/discovery"
	"bikefleet/pkg/utils"
)

type DiscoveryHandler struct {
	service *discovery.Service
}

func NewDiscoveryHandler(service *discovery.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/discovery/nearest", h.Nearest)
}

func (h *DiscoveryHandler) Nearest(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "lat is required")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "lon is required")
		return
	}

	radius := 500.0
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "radius must be numeric")
			return
		}
	}

	resp, err := h.service.Nearest(c.Request.Context(), lat, lon, radius)
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}
