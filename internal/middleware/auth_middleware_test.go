package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-social/commune/internal/pkg/auth"
)

func newAuthTestRouter(jwtService *auth.JWTService, handler gin.HandlerFunc) (*gin.Engine, *gin.Engine) {
	m := NewAuthMiddleware(jwtService)

	strict := gin.New()
	strict.GET("/", m.JWTAuth(), handler)

	optional := gin.New()
	optional.GET("/", m.OptionalAuth(), handler)

	return strict, optional
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "commune-test",
	})

	var gotUserID int64
	handler := func(c *gin.Context) {
		gotUserID = GetUserID(c)
		c.Status(http.StatusOK)
	}
	strict, optional := newAuthTestRouter(jwtService, handler)

	token, err := jwtService.GenerateToken(42, "jane_doe")
	require.NoError(t, err)

	t.Run("strict rejects missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		strict.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("strict rejects garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		strict.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("strict accepts valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		strict.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), gotUserID)
	})

	t.Run("optional passes anonymous through", func(t *testing.T) {
		gotUserID = -1
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		optional.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), gotUserID)
	})

	t.Run("optional rejects invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		optional.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("optional accepts valid token", func(t *testing.T) {
		gotUserID = -1
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		optional.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), gotUserID)
	})
}
