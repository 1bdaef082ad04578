package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bikefleet/internal/usecase/navigation"
	"bikefleet/pkg/utils"
)

type NavigationHandler struct {
	service *navigation.Service
}

func NewNavigationHandler(service *navigation.Service) *NavigationHandler {
	return &NavigationHandler{service: service}
}

func (h *NavigationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/routes", h.CreateRoute)
	router.GET("/routes/:id", h.GetRoute)
	router.GET("/routes/:id/eta", h.Eta)
}

func (h *NavigationHandler) CreateRoute(c *gin.Context) {
	var req navigation.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing origin/dest")
		return
	}

	resp, err := h.service.CreateRoute(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *NavigationHandler) GetRoute(c *gin.Context) {
	resp, err := h.service.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *NavigationHandler) Eta(c *gin.Context) {
	resp, err := h.service.Eta(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, utils.StatusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}
