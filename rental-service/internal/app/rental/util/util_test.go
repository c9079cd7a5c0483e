package util

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret-key", 24*time.Hour)

	token, err := manager.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTManager_ValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, err := issuer.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_ValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Minute)

	token, err := manager.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "user-1", Username: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword_AndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword("s3cret!", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("same")
	require.NoError(t, err)
	second, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNoopPublisher(t *testing.T) {
	var publisher MessagePublisher = NoopPublisher{}

	assert.NoError(t, publisher.PublishMessage(context.Background(), "key", []byte("value")))
	assert.NoError(t, publisher.Close())
}

func TestRenderSummaryPDF(t *testing.T) {
	summary := &entity.ReportSummary{
		TotalProducts:      2,
		TotalBookings:      3,
		TotalRevenue:       150,
		BookingsByStatus:   map[string]int64{"pending": 1, "completed": 2},
		ProductsByCategory: map[string]int64{"photo": 1, "": 1},
		GeneratedAt:        time.Now(),
	}
	revenue := []entity.MonthlyRevenue{{Month: 1, Bookings: 2, Revenue: 100}, {Month: 2, Bookings: 1, Revenue: 50}}

	data, err := RenderSummaryPDF(summary, revenue, 2024)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, strings.Contains(string(data), "%%EOF"))
}
