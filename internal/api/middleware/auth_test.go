package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_ValidToken(t *testing.T) {
	var gotUserID int64
	var gotProvider bool

	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserID(r.Context())
		gotProvider = HasRole(r.Context(), RoleProvider)
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "42",
		"roles": []string{"user", "provider"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotUserID)
	assert.True(t, gotProvider)
}

func TestAuth_Rejections(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"sub": "42"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"non-numeric subject", signToken(t, testSecret, jwt.MapClaims{"sub": "alice"})},
		{"zero subject", signToken(t, testSecret, jwt.MapClaims{"sub": "0"})},
		{"missing subject", signToken(t, testSecret, jwt.MapClaims{"roles": []string{"user"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(tt.token))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireProvider(t *testing.T) {
	protected := Auth(testSecret)(RequireProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("provider role passes", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":   "42",
			"roles": []string{"provider"},
		})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, authedRequest(token))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":   "42",
			"roles": []string{"user"},
		})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, authedRequest(token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no roles claim is forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"sub": "42"})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, authedRequest(token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
