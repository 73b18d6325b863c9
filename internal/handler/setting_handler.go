package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/service"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// SettingHandler exposes the settings surface.
type SettingHandler struct {
	settings *service.SettingService
}

// NewSettingHandler constructs a setting handler.
func NewSettingHandler(settings *service.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// List returns all settings.
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Get returns one setting value.
func (h *SettingHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := h.settings.Get(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	if value == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "setting not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"key": key, "value": value}, nil)
}

// Put upserts one setting value.
func (h *SettingHandler) Put(c *gin.Context) {
	key := c.Param("key")
	var req dto.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.settings.Put(c.Request.Context(), key, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"key": key, "value": req.Value}, nil)
}
