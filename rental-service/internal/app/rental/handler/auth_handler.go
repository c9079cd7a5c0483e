package handler

import (
	"net/http"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
