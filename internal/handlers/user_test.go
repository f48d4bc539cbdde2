package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
	"quiz-backend/internal/session"
)

type stubUserLookup struct {
	users map[string]*models.User
	err   error
}

func (s *stubUserLookup) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[googleID]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func TestUserHandler_GetMe(t *testing.T) {
	lookup := &stubUserLookup{users: map[string]*models.User{
		"42": {ID: uuid.New(), GoogleID: "42", Email: "ada@example.com", FullName: "Ada Lovelace"},
	}}
	h := NewUserHandler(lookup)

	tests := []struct {
		name     string
		claims   models.UserClaims
		expected int
	}{
		{"known user", models.UserClaims{"sub": "42"}, http.StatusOK},
		{"signed in but never stored", models.UserClaims{"sub": "7"}, http.StatusNotFound},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess := &session.Session{ID: "s", Data: session.Data{UserData: tc.claims}}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			req = req.WithContext(middleware.WithSession(req.Context(), sess))
			rr := httptest.NewRecorder()

			h.GetMe(rr, req)

			if rr.Code != tc.expected {
				t.Fatalf("expected status %d, got %d", tc.expected, rr.Code)
			}
			if tc.expected != http.StatusOK {
				return
			}

			var body map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body["email"] != "ada@example.com" {
				t.Fatalf("unexpected body %v", body)
			}
			if _, leaked := body["google_id"]; leaked {
				t.Fatal("google id must not be exposed")
			}
		})
	}
}

func TestUserHandler_GetMeStoreFailure(t *testing.T) {
	h := NewUserHandler(&stubUserLookup{err: errors.New("connection refused")})

	sess := &session.Session{ID: "s", Data: session.Data{UserData: models.UserClaims{"sub": "42"}}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	h.GetMe(rr, req)

	var body models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected 500 INTERNAL_ERROR, got %d %s", rr.Code, body.Error.Code)
	}
}
