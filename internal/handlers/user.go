package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
)

type userLookup interface {
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
}

type UserHandler struct {
	users userLookup
}

func NewUserHandler(users userLookup) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe returns the stored profile of the signed-in user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Sign in required", r))
		return
	}
	claims, ok := sess.User()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Sign in required", r))
		return
	}

	user, err := h.users.GetByGoogleID(r.Context(), claims.Subject())
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}
	if err != nil {
		log.Printf("user lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch user", r))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
