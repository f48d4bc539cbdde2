package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
	"quiz-backend/internal/services"
	"quiz-backend/internal/session"
)

type stubSaver struct {
	saves int
	err   error
}

func (s *stubSaver) Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	s.saves++
	return s.err
}

type stubRecorder struct {
	jobs []models.ResultJob
}

func (s *stubRecorder) Enqueue(ctx context.Context, job models.ResultJob) error {
	s.jobs = append(s.jobs, job)
	return nil
}

// tinyStore is a two-question quiz (id 1) plus an empty quiz (id 2).
// Question 10 has answers 100 (correct) and 101; question 20 has 200 (correct) and 201.
type tinyStore struct{}

var tinyQuestions = []models.Question{{ID: 10, QuizID: 1, Text: "2+2?"}, {ID: 20, QuizID: 1, Text: "3+3?"}}

var tinyAnswers = []models.Answer{
	{ID: 100, QuestionID: 10, Text: "4", IsCorrect: true},
	{ID: 101, QuestionID: 10, Text: "5"},
	{ID: 200, QuestionID: 20, Text: "6", IsCorrect: true},
	{ID: 201, QuestionID: 20, Text: "7"},
}

func (tinyStore) ListWithCounts(ctx context.Context) ([]*models.QuizWithCount, error) {
	return []*models.QuizWithCount{
		{Quiz: models.Quiz{ID: 1, Name: "Arithmetic"}, QuestionsCount: 2},
		{Quiz: models.Quiz{ID: 2, Name: "Empty"}, QuestionsCount: 0},
	}, nil
}

func (tinyStore) GetByID(ctx context.Context, id int64) (*models.Quiz, error) {
	if id == 1 || id == 2 {
		return &models.Quiz{ID: id}, nil
	}
	return nil, pgx.ErrNoRows
}

func (tinyStore) NextQuestion(ctx context.Context, quizID, afterID int64) (*models.Question, error) {
	for _, q := range tinyQuestions {
		if q.QuizID == quizID && q.ID > afterID {
			q := q
			return &q, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (tinyStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	for _, q := range tinyQuestions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (tinyStore) CountQuestions(ctx context.Context, quizID int64) (int, error) {
	if quizID == 1 {
		return len(tinyQuestions), nil
	}
	return 0, nil
}

func (tinyStore) ListAnswers(ctx context.Context, questionID int64) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range tinyAnswers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (tinyStore) GetAnswer(ctx context.Context, id int64) (*models.Answer, error) {
	for _, a := range tinyAnswers {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (tinyStore) GetCorrectAnswer(ctx context.Context, questionID int64) (*models.Answer, error) {
	for _, a := range tinyAnswers {
		if a.QuestionID == questionID && a.IsCorrect {
			a := a
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newTestQuizHandler() (*QuizHandler, *stubSaver, *stubRecorder) {
	saver := &stubSaver{}
	recorder := &stubRecorder{}
	return NewQuizHandler(services.NewQuizService(tinyStore{}), saver, recorder), saver, recorder
}

func call(t *testing.T, handler http.HandlerFunc, sess *session.Session, id string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/test/"+id, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	if sess != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), sess))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)

	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rr, body
}

func TestQuizHandler_FullRun(t *testing.T) {
	h, saver, recorder := newTestQuizHandler()
	sess := &session.Session{ID: "s1", Data: session.Data{UserData: models.UserClaims{"sub": "7", "name": "Ada"}}}

	rr, body := call(t, h.Start, sess, "1")
	if rr.Code != http.StatusOK || body["status"] != "question" {
		t.Fatalf("unexpected start response %d %v", rr.Code, body)
	}
	for _, a := range body["answers"].([]interface{}) {
		if _, leaked := a.(map[string]interface{})["is_correct"]; leaked {
			t.Fatal("answer correctness must not be sent with the question")
		}
	}

	rr, body = call(t, h.SubmitAnswer, sess, "100")
	if rr.Code != http.StatusOK || body["is_correct"] != true || body["score"].(float64) != 1 {
		t.Fatalf("unexpected answer response %d %v", rr.Code, body)
	}

	rr, body = call(t, h.Next, sess, "1")
	if rr.Code != http.StatusOK || body["question"].(map[string]interface{})["id"].(float64) != 20 {
		t.Fatalf("unexpected next response %d %v", rr.Code, body)
	}

	rr, body = call(t, h.SubmitAnswer, sess, "201")
	if body["is_correct"] != false {
		t.Fatalf("expected wrong answer, got %v", body)
	}
	if correct := body["answer"].(map[string]interface{}); correct["id"].(float64) != 200 {
		t.Fatalf("expected reference answer 200, got %v", correct)
	}

	rr, body = call(t, h.Next, sess, "1")
	if rr.Code != http.StatusOK || body["status"] != "finished" {
		t.Fatalf("unexpected finish response %d %v", rr.Code, body)
	}
	if body["questions_count"].(float64) != 2 || body["score"].(float64) != 1 || body["percent_score"].(float64) != 50 {
		t.Fatalf("unexpected summary %v", body)
	}

	if sess.Data.QuestionID != nil || sess.Data.Score != 0 {
		t.Fatalf("expected session reset after finish, got %+v", sess.Data)
	}
	if _, ok := sess.User(); !ok {
		t.Fatal("finishing a quiz must not sign the user out")
	}
	if saver.saves != 5 {
		t.Fatalf("expected 5 session saves, got %d", saver.saves)
	}
	if len(recorder.jobs) != 1 || recorder.jobs[0].GoogleID != "7" || recorder.jobs[0].Summary.PercentScore != 50 {
		t.Fatalf("expected one queued result, got %+v", recorder.jobs)
	}
}

func TestQuizHandler_AnonymousFinishIsNotRecorded(t *testing.T) {
	h, _, recorder := newTestQuizHandler()
	last := int64(20)
	sess := &session.Session{ID: "s2", Data: session.Data{QuestionID: &last, Score: 2}}

	rr, body := call(t, h.Next, sess, "1")
	if rr.Code != http.StatusOK || body["percent_score"].(float64) != 100 {
		t.Fatalf("unexpected response %d %v", rr.Code, body)
	}
	if len(recorder.jobs) != 0 {
		t.Fatal("anonymous results must not be queued")
	}
}

func TestQuizHandler_StartEmptyQuiz(t *testing.T) {
	h, saver, _ := newTestQuizHandler()
	prev := int64(10)
	sess := &session.Session{ID: "s3", Data: session.Data{QuestionID: &prev, Score: 1}}

	rr, body := call(t, h.Start, sess, "2")
	if rr.Code != http.StatusOK || body["status"] != "empty" {
		t.Fatalf("unexpected response %d %v", rr.Code, body)
	}
	if sess.Data.QuestionID != nil || sess.Data.Score != 0 {
		t.Fatalf("expected previous run to be discarded, got %+v", sess.Data)
	}
	if saver.saves != 1 {
		t.Fatalf("expected session to be saved once, got %d", saver.saves)
	}
}

func TestQuizHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(h *QuizHandler) http.HandlerFunc
		id       string
		expected int
		code     string
		field    string
	}{
		{"start unknown quiz", func(h *QuizHandler) http.HandlerFunc { return h.Start }, "99", http.StatusNotFound, "NOT_FOUND", ""},
		{"start bad id", func(h *QuizHandler) http.HandlerFunc { return h.Start }, "abc", http.StatusBadRequest, "VALIDATION_ERROR", "id"},
		{"next without run", func(h *QuizHandler) http.HandlerFunc { return h.Next }, "1", http.StatusConflict, "CONFLICT", ""},
		{"unknown answer", func(h *QuizHandler) http.HandlerFunc { return h.SubmitAnswer }, "999", http.StatusNotFound, "NOT_FOUND", ""},
		{"negative answer id", func(h *QuizHandler) http.HandlerFunc { return h.SubmitAnswer }, "-1", http.StatusBadRequest, "VALIDATION_ERROR", "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, saver, _ := newTestQuizHandler()
			rr, body := call(t, tc.handler(h), &session.Session{ID: "s"}, tc.id)

			if rr.Code != tc.expected {
				t.Fatalf("expected status %d, got %d", tc.expected, rr.Code)
			}
			apiErr := body["error"].(map[string]interface{})
			if apiErr["code"] != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, apiErr["code"])
			}
			if tc.field != "" {
				fields, _ := apiErr["fields"].(map[string]interface{})
				if _, ok := fields[tc.field]; !ok {
					t.Fatalf("expected field %q in error, got %v", tc.field, apiErr["fields"])
				}
			}
			if saver.saves != 0 {
				t.Fatal("session must not be saved on error")
			}
		})
	}
}

func TestQuizHandler_SaveFailure(t *testing.T) {
	h, saver, _ := newTestQuizHandler()
	saver.err = errors.New("redis down")

	rr, _ := call(t, h.Start, &session.Session{ID: "s"}, "1")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestQuizHandler_ListTopics(t *testing.T) {
	h, _, _ := newTestQuizHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil)
	rr := httptest.NewRecorder()
	h.ListTopics(rr, req)

	var body struct {
		Topics []models.QuizWithCount `json:"topics"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Topics) != 2 || body.Topics[0].QuestionsCount != 2 {
		t.Fatalf("unexpected topics %+v", body.Topics)
	}
}

func TestHandleServiceError_Integrity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/answers/1", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.IntegrityError{Message: "question 1 has no correct answer"})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Error.Code != "DATA_INTEGRITY" {
		t.Fatalf("expected DATA_INTEGRITY, got %q", body.Error.Code)
	}
}
