package middleware

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quiz-backend/internal/models"
)

// RequireSignIn rejects requests whose session carries no user claims.
// It must run after Sessions.
func RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", r)
			return
		}
		if _, ok := sess.User(); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	})
}
