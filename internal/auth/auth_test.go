package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "auth-service"
	testAudience = "shortener-service"
)

func signToken(t *testing.T, secret string, mutate func(c *jwt.RegisteredClaims)) string {
	t.Helper()

	reg := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
	}
	if mutate != nil {
		mutate(&reg)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, struct {
		ClientID string `json:"client_id,omitempty"`
		jwt.RegisteredClaims
	}{ClientID: "angular-web", RegisteredClaims: reg})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	v := NewVerifier(true, testSecret, testIssuer, testAudience)

	tests := []struct {
		name    string
		token   string
		wantErr bool
		subject string
	}{
		{
			name:    "valid token",
			token:   signToken(t, testSecret, nil),
			subject: "user-123",
		},
		{
			name:    "wrong secret",
			token:   signToken(t, "other-secret", nil),
			wantErr: true,
		},
		{
			name: "expired",
			token: signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			}),
			wantErr: true,
		},
		{
			name: "wrong issuer",
			token: signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
				c.Issuer = "somebody-else"
			}),
			wantErr: true,
		},
		{
			name: "wrong audience",
			token: signToken(t, testSecret, func(c *jwt.RegisteredClaims) {
				c.Audience = jwt.ClaimStrings{"other-service"}
			}),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := v.Verify(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.subject, ident.Subject)
			assert.Equal(t, "angular-web", ident.ClientID)
		})
	}
}

func TestMiddleware(t *testing.T) {
	logger := zap.NewNop()

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident := IdentityFromContext(r.Context()); ident != nil {
			w.Header().Set("X-Test-Subject", ident.Subject)
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no header passes through anonymous", func(t *testing.T) {
		v := NewVerifier(true, testSecret, testIssuer, testAudience)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		v.Middleware(logger)(echo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Test-Subject"))
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		v := NewVerifier(true, testSecret, testIssuer, testAudience)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, nil))
		w := httptest.NewRecorder()
		v.Middleware(logger)(echo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-123", w.Header().Get("X-Test-Subject"))
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		v := NewVerifier(true, testSecret, testIssuer, testAudience)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		v.Middleware(logger)(echo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("auth disabled ignores tokens", func(t *testing.T) {
		v := NewVerifier(false, "", "", "")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, nil))
		w := httptest.NewRecorder()
		v.Middleware(logger)(echo).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Test-Subject"))
	})
}
