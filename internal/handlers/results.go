package handlers

import (
	"context"
	"net/http"
	"strconv"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
	"quiz-backend/internal/services"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

type resultLister interface {
	ListByGoogleID(ctx context.Context, googleID string, limit int) ([]*models.QuizResult, error)
}

type ResultHandler struct {
	results resultLister
}

func NewResultHandler(results resultLister) *ResultHandler {
	return &ResultHandler{results: results}
}

// List returns the signed-in user's finished runs, newest first.
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
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

	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handleServiceError(w, r, &services.ValidationError{
				Fields: map[string]string{"limit": "must be a positive integer"},
			})
			return
		}
		if n > maxResultsLimit {
			n = maxResultsLimit
		}
		limit = n
	}

	results, err := h.results.ListByGoogleID(r.Context(), claims.Subject(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch results", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
