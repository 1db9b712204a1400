package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/modules/auth"
	"github.com/chatterhq/chatter/pkg/jwt"
	"github.com/chatterhq/chatter/pkg/logger"
)

func newTokenService(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.New([]byte("test-signing-key-needs-32-bytes!"))
	require.NoError(t, err)
	return svc
}

func signedToken(t *testing.T, svc *jwt.Service) string {
	t.Helper()
	record := auth.Record{UID: "123456789012", Username: "Bob", Email: "bob@x.com", AvatarColor: "#ff0000"}
	token, err := svc.Sign(auth.NewClaims(record, "user-1", time.Hour))
	require.NoError(t, err)
	return token
}

func errorMessage(t *testing.T, body *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body.Body.Bytes(), &resp))
	return resp.Message
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	tokens := newTokenService(t)
	log := logger.New()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwt.GetClaims[auth.Claims](r.Context())
		require.True(t, ok)
		require.Equal(t, "user-1", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
	guarded := auth.VerifyToken(tokens, log)(okHandler)

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest("GET", "/get-me", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Token is not available. Please login again.", errorMessage(t, rec))
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/get-me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})

		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Token is invalid. Please login again.", errorMessage(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		record := auth.Record{UID: "123456789012", Username: "Bob"}
		token, err := tokens.Sign(auth.NewClaims(record, "user-1", -time.Minute))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/get-me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/get-me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: signedToken(t, tokens)})

		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/get-me", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, tokens))

		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	log := logger.New()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := auth.RequireAuth(log)(next)

	t.Run("no claims in context", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest("GET", "/get-me", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Authentication is required to access this route.", errorMessage(t, rec))
	})

	t.Run("claims present", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/get-me", nil)
		req = req.WithContext(jwt.SetClaims(req.Context(), auth.Claims{UserID: "user-1"}))

		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
