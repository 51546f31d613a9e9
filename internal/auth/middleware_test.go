package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, authHeader string) (any, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}

	Middleware(testSecret)(c)
	return c.Get("user_id")
}

func TestMiddlewareSetsActor(t *testing.T) {
	userID := uuid.New()

	got, ok := runMiddleware(t, "Bearer "+signToken(t, userID))

	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestMiddlewareAnonymousWithoutToken(t *testing.T) {
	_, ok := runMiddleware(t, "")
	assert.False(t, ok)
}

func TestMiddlewareIgnoresBadToken(t *testing.T) {
	_, ok := runMiddleware(t, "Bearer not-a-token")
	assert.False(t, ok)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, ok := runMiddleware(t, "Bearer "+signed)
	assert.False(t, ok)
}
