package handler

import (
	"errors"
	"net/http"
	"strings"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/service"
	"rentaldesk/rental-service/internal/app/rental/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// TokenValidator проверяет bearer токен
type TokenValidator interface {
	ValidateToken(token string) (*util.JWTClaims, error)
}

// AuthMiddleware проверяет JWT токен в запросах
type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Identify разбирает необязательный токен. Без заголовка запрос проходит
// анонимно, с неверным токеном получает 401.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondMessage(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, util.ErrExpiredToken) {
				message = "Token has expired"
			}
			respondMessage(c, http.StatusUnauthorized, message)
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims.Username))

		c.Next()
	}
}

// RequireUser пропускает только запросы, прошедшие Identify с токеном
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			respondMessage(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// BodyLimit ограничивает размер тела запроса
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			respondMessage(c, http.StatusRequestEntityTooLarge, service.MsgPayloadTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// bindJSON декодирует тело; при ошибке уже записывает ответ и возвращает false
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(c, http.StatusRequestEntityTooLarge, service.MsgPayloadTooLarge)
			return false
		}
		var badDate *entity.DateError
		if errors.As(err, &badDate) {
			respondMessage(c, http.StatusBadRequest, "Validation error: "+badDate.Error())
			return false
		}
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
