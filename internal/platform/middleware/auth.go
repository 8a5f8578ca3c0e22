package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ppdb/internal/jwttoken"
	id "ppdb/pkg/domain"
	"ppdb/pkg/requestcontext"
)

// TokenValidator validates access tokens. Satisfied by jwttoken.Service.
type TokenValidator interface {
	Validate(tokenString string) (*jwttoken.Claims, error)
}

func writeJSONError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"message":%q}`, code, desc))
}

// RequireAuth validates the bearer token and stores the acting principal in
// the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			actor := requestcontext.ActorInfo{
				Username: claims.Username,
				Role:     id.Role(claims.Role),
			}
			if identityID, err := id.ParseIdentityID(claims.IdentityID); err == nil {
				actor.IdentityID = identityID
			}
			if claims.ApplicantID != "" {
				if applicantID, err := id.ParseApplicantID(claims.ApplicantID); err == nil {
					actor.ApplicantID = applicantID
				}
			}
			if !actor.Role.Valid() {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// RequireRole guards a route subtree to one role. Mount after RequireAuth.
func RequireRole(role id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.Actor(r.Context()).Role != role {
				writeJSONError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
