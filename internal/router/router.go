package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quiz-backend/internal/handlers"
	"quiz-backend/internal/middleware"
	"quiz-backend/internal/session"
	"quiz-backend/internal/websocket"
)

func New(
	sessions *session.Store,
	authLimiter *middleware.RateLimiter,
	quizHandler *handlers.QuizHandler,
	authHandler *handlers.AuthHandler,
	resultHandler *handlers.ResultHandler,
	userHandler *handlers.UserHandler,
	wsHub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(sessions))

		// ──── Identity ────
		r.Get("/sign-in", authHandler.SignInPage)
		r.With(authLimiter.Middleware).Post("/auth-receiver", authHandler.Receive)
		r.Get("/sign-out", authHandler.SignOut)
		r.Post("/sign-out", authHandler.SignOut)

		r.Route("/api/v1", func(r chi.Router) {

			// ──── Quiz Routes (anonymous allowed) ────
			r.Get("/topics", quizHandler.ListTopics)
			r.Post("/topics/{id}/start", quizHandler.Start)
			r.Post("/topics/{id}/next", quizHandler.Next)
			r.Post("/answers/{id}", quizHandler.SubmitAnswer)

			// ──── Results ────
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSignIn)
				r.Get("/me", userHandler.GetMe)
				r.Get("/results", resultHandler.List)
				r.Get("/ws", wsHub.HandleWebSocket)
			})
		})
	})

	return r
}
