package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidfriends/admin/internal/auth"
	"github.com/vidfriends/admin/internal/logging"
)

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	Verify(accessToken string) (auth.Claims, error)
}

type claimsKey struct{}

// WithClaims stores verified token claims on the context.
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims placed by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}

// RequireAdmin rejects requests without a valid admin bearer token: 401 when
// the token is missing or invalid, 403 when it belongs to a non-admin.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("rejected access token", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if !claims.IsAdmin() {
				logger.Warn("non-admin request to admin route", "userId", claims.UserID, "role", claims.Role)
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logging.WithLogger(ctx, logger.With("userId", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
