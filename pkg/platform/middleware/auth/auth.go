// Package auth authenticates bearer tokens and places the actor in the request
// context.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "casework/pkg/domain"
	"casework/pkg/requestcontext"
)

// ActorValidator resolves a bearer token to the actor it names.
type ActorValidator interface {
	ValidateToken(tokenString string) (id.Actor, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireActor rejects requests without a valid bearer token.
func RequireActor(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			actor, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// RequireRole allows only actors holding one of roles. It must run after RequireActor.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := requestcontext.Actor(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if !actor.HasRole(roles...) {
				logger.WarnContext(ctx, "forbidden - role not allowed",
					"actor_id", int64(actor.ID),
					"role", string(actor.Role),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Role not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
