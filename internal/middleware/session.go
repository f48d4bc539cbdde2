package middleware

import (
	"context"
	"log"
	"net/http"

	"quiz-backend/internal/session"
)

type contextKey string

const SessionKey contextKey = "session"

// Sessions loads the caller's session before the handler runs. Handlers that
// change it persist it with session.Store.Save.
func Sessions(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r.Context(), r)
			if err != nil {
				log.Printf("session load failed: %v", err)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Session unavailable", r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// GetSession returns the request session, or nil outside the Sessions middleware.
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(SessionKey).(*session.Session)
	return sess
}
