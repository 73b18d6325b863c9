package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/service"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// UnavailabilityHandler exposes unavailability CRUD endpoints.
type UnavailabilityHandler struct {
	unavailabilities *service.UnavailabilityService
}

// NewUnavailabilityHandler constructs an unavailability handler.
func NewUnavailabilityHandler(unavailabilities *service.UnavailabilityService) *UnavailabilityHandler {
	return &UnavailabilityHandler{unavailabilities: unavailabilities}
}

// List returns every unavailability window.
func (h *UnavailabilityHandler) List(c *gin.Context) {
	windows, err := h.unavailabilities.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Create stores a new window.
func (h *UnavailabilityHandler) Create(c *gin.Context) {
	var req dto.UnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	window, err := h.unavailabilities.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// Update modifies a window.
func (h *UnavailabilityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	window, err := h.unavailabilities.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Delete removes a window.
func (h *UnavailabilityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.unavailabilities.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
