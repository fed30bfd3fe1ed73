package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"mintgate/pkg/requestcontext"
)

// AdminValidator decides whether a bearer token carries the admin capability.
// The gateway only consumes the boolean outcome; who gets to be admin is the
// external ACL's problem.
type AdminValidator interface {
	ValidateAdminToken(tokenString string) error
}

// RequireAdmin gates a route tree behind an admin bearer token.
func RequireAdmin(validator AdminValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w, r, logger, "missing bearer token")
				return
			}
			if err := validator.ValidateAdminToken(token); err != nil {
				unauthorized(w, r, logger, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string) {
	ctx := r.Context()
	logger.WarnContext(ctx, "admin access denied",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin capability required"}`))
}
