package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func adminProtected(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RequireAdmin(testKey, logger)(next)
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name       string
		authorize  func(t *testing.T, r *http.Request)
		wantStatus int
	}{
		{
			name:       "missing header",
			authorize:  func(t *testing.T, r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong scheme",
			authorize: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Basic abc123")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage token",
			authorize: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-jwt")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong signing key",
			authorize: func(t *testing.T, r *http.Request) {
				token := signedToken(t, []byte("other-key"), jwt.MapClaims{"sub": "ops"})
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authorize: func(t *testing.T, r *http.Request) {
				token := signedToken(t, testKey, jwt.MapClaims{
					"sub": "ops",
					"exp": time.Now().Add(-time.Hour).Unix(),
				})
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token",
			authorize: func(t *testing.T, r *http.Request) {
				token := signedToken(t, testKey, jwt.MapClaims{
					"sub": "ops",
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/test-prediction", nil)
			tc.authorize(t, req)
			rr := httptest.NewRecorder()
			adminProtected(t).ServeHTTP(rr, req)
			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rr.Body.String(), "unauthorized")
			}
		})
	}
}

func TestRequestIDHonorsInbound(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.Header().Get("X-Request-ID")
	})

	t.Run("inbound id passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		RequestID(next).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "upstream-42", captured)
	})

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		RequestID(next).ServeHTTP(httptest.NewRecorder(), req)
		assert.Len(t, captured, 36)
	})
}
