package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/service"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// AuthHandler exposes the operator login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login verifies the operator password and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	token, err := h.auth.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}
