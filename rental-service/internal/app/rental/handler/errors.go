package handler

import (
	"errors"
	"net/http"
	"strings"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const msgInternal = "Internal server error"

// statusFor выбирает HTTP статус по виду доменной ошибки
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError отдаёт клиенту только доменное сообщение, причину пишет в лог
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := msgInternal
	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(logger.RequestIDKey)).
			Msg("Request failed")
	}

	c.JSON(status, entity.ErrorResponse{Message: message})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{Message: message})
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field()[:1]) + fieldError.Field()[1:]
		switch fieldError.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, field+" must be at least "+fieldError.Param()+" characters")
		case "max":
			parts = append(parts, field+" must be at most "+fieldError.Param()+" characters")
		case "oneof":
			parts = append(parts, field+" must be one of: "+strings.Join(strings.Fields(fieldError.Param()), ", "))
		default:
			parts = append(parts, field+" is "+fieldError.Tag())
		}
	}
	return "Validation error: " + strings.Join(parts, ", ")
}
