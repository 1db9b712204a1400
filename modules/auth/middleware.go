package auth

import (
	"log/slog"
	"net/http"

	"github.com/chatterhq/chatter/pkg/apierr"
	"github.com/chatterhq/chatter/pkg/jwt"
	"github.com/chatterhq/chatter/pkg/logger"
)

// VerifyToken extracts and verifies the session token, putting the claims
// and the raw token into the request context. Requests without a token or
// with one that fails verification are rejected before the handler runs.
func VerifyToken(verifier *jwt.Service, log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("auth_middleware"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				apierr.WriteJSON(w, r, log, apierr.Unauthorized("Token is not available. Please login again."))
				return
			}

			var claims Claims
			if err := verifier.Verify(token, &claims); err != nil {
				apierr.WriteJSON(w, r, log, apierr.Unauthorized("Token is invalid. Please login again.").WithCause(err))
				return
			}

			ctx := jwt.SetToken(r.Context(), token)
			ctx = jwt.SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose context carries no verified claims.
// Composable per route after VerifyToken.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("auth_middleware"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := jwt.GetClaims[Claims](r.Context()); !ok {
				apierr.WriteJSON(w, r, log, apierr.Unauthorized("Authentication is required to access this route."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
