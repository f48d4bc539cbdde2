package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
	"quiz-backend/internal/session"
)

type stubResultLister struct {
	googleID string
	limit    int
	err      error
}

func (s *stubResultLister) ListByGoogleID(ctx context.Context, googleID string, limit int) ([]*models.QuizResult, error) {
	s.googleID = googleID
	s.limit = limit
	return []*models.QuizResult{}, s.err
}

func TestResultHandler_List(t *testing.T) {
	signedIn := func() *session.Session {
		return &session.Session{ID: "s", Data: session.Data{UserData: models.UserClaims{"sub": "42"}}}
	}

	tests := []struct {
		name          string
		sess          *session.Session
		query         string
		err           error
		expected      int
		expectedLimit int
	}{
		{"anonymous", &session.Session{ID: "s"}, "", nil, http.StatusUnauthorized, 0},
		{"default limit", signedIn(), "", nil, http.StatusOK, defaultResultsLimit},
		{"custom limit", signedIn(), "?limit=5", nil, http.StatusOK, 5},
		{"limit capped", signedIn(), "?limit=1000", nil, http.StatusOK, maxResultsLimit},
		{"invalid limit", signedIn(), "?limit=abc", nil, http.StatusBadRequest, 0},
		{"store failure", signedIn(), "", errors.New("db down"), http.StatusInternalServerError, defaultResultsLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lister := &stubResultLister{err: tc.err}
			h := NewResultHandler(lister)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/results"+tc.query, nil)
			req = req.WithContext(middleware.WithSession(req.Context(), tc.sess))
			rr := httptest.NewRecorder()
			h.List(rr, req)

			if rr.Code != tc.expected {
				t.Fatalf("expected status %d, got %d", tc.expected, rr.Code)
			}
			if lister.limit != tc.expectedLimit {
				t.Fatalf("expected limit %d, got %d", tc.expectedLimit, lister.limit)
			}
			if tc.expectedLimit > 0 && lister.googleID != "42" {
				t.Fatalf("expected lookup for user 42, got %q", lister.googleID)
			}
		})
	}
}

func TestResultHandler_InvalidLimitNamesField(t *testing.T) {
	h := NewResultHandler(&stubResultLister{})
	sess := &session.Session{ID: "s", Data: session.Data{UserData: models.UserClaims{"sub": "42"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results?limit=-3", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	var body models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rr.Code != http.StatusBadRequest || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected response %d %+v", rr.Code, body.Error)
	}
	if _, ok := body.Error.Fields["limit"]; !ok {
		t.Fatalf("expected limit field in error, got %v", body.Error.Fields)
	}
}
