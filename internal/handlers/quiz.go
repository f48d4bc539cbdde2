package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"quiz-backend/internal/middleware"
	"quiz-backend/internal/models"
	"quiz-backend/internal/services"
	"quiz-backend/internal/session"
)

type quizEngine interface {
	ListTopics(ctx context.Context) ([]*models.QuizWithCount, error)
	Start(ctx context.Context, state models.QuizState, quizID int64) (models.QuizState, *models.QuestionWithAnswers, error)
	Advance(ctx context.Context, state models.QuizState, quizID int64) (models.QuizState, *models.QuestionWithAnswers, error)
	SubmitAnswer(ctx context.Context, state models.QuizState, answerID int64) (models.QuizState, *models.AnswerFeedback, error)
	Finish(ctx context.Context, state models.QuizState) (models.QuizState, *models.FinishSummary, error)
}

type sessionSaver interface {
	Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error
}

type resultRecorder interface {
	Enqueue(ctx context.Context, job models.ResultJob) error
}

type QuizHandler struct {
	quiz     quizEngine
	sessions sessionSaver
	results  resultRecorder
}

func NewQuizHandler(quiz quizEngine, sessions sessionSaver, results resultRecorder) *QuizHandler {
	return &QuizHandler{quiz: quiz, sessions: sessions, results: results}
}

// answerChoice hides correctness until the answer has been submitted.
type answerChoice struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type questionResponse struct {
	Status   string         `json:"status"`
	Question questionBody   `json:"question"`
	Answers  []answerChoice `json:"answers"`
}

type questionBody struct {
	ID     int64  `json:"id"`
	QuizID int64  `json:"quiz_id"`
	Text   string `json:"text"`
}

type finishResponse struct {
	Status string `json:"status"`
	models.FinishSummary
}

type answerResponse struct {
	models.AnswerFeedback
	WasCorrect bool `json:"is_correct"`
	Score      int  `json:"score"`
}

func newQuestionResponse(q *models.QuestionWithAnswers) questionResponse {
	resp := questionResponse{
		Status: "question",
		Question: questionBody{
			ID:     q.Question.ID,
			QuizID: q.Question.QuizID,
			Text:   q.Question.Text,
		},
		Answers: make([]answerChoice, 0, len(q.Answers)),
	}
	for _, a := range q.Answers {
		resp.Answers = append(resp.Answers, answerChoice{ID: a.ID, Text: a.Text})
	}
	return resp
}

func (h *QuizHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.quiz.ListTopics(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	quizID, ok := idParam(r)
	if !ok {
		handleServiceError(w, r, invalidID())
		return
	}

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Session unavailable", r))
		return
	}

	state, question, err := h.quiz.Start(r.Context(), sess.QuizState(), quizID)
	if errors.Is(err, services.ErrNoQuestions) {
		sess.SetQuizState(state)
		if !h.save(w, r, sess) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "empty",
			"message": "No questions available",
		})
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess.SetQuizState(state)
	if !h.save(w, r, sess) {
		return
	}

	writeJSON(w, http.StatusOK, newQuestionResponse(question))
}

// Next returns the following question, or the finish summary once the quiz
// has no questions left.
func (h *QuizHandler) Next(w http.ResponseWriter, r *http.Request) {
	quizID, ok := idParam(r)
	if !ok {
		handleServiceError(w, r, invalidID())
		return
	}

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Session unavailable", r))
		return
	}

	state, question, err := h.quiz.Advance(r.Context(), sess.QuizState(), quizID)
	if errors.Is(err, services.ErrQuizComplete) {
		h.finish(w, r, sess, state)
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess.SetQuizState(state)
	if !h.save(w, r, sess) {
		return
	}

	writeJSON(w, http.StatusOK, newQuestionResponse(question))
}

func (h *QuizHandler) finish(w http.ResponseWriter, r *http.Request, sess *session.Session, state models.QuizState) {
	state, summary, err := h.quiz.Finish(r.Context(), state)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess.SetQuizState(state)
	if !h.save(w, r, sess) {
		return
	}

	if claims, ok := sess.User(); ok && h.results != nil {
		job := services.NewResultJob(claims, *summary, time.Now())
		if err := h.results.Enqueue(r.Context(), job); err != nil {
			log.Printf("failed to queue result for %s: %v", job.GoogleID, err)
		}
	}

	writeJSON(w, http.StatusOK, finishResponse{Status: "finished", FinishSummary: *summary})
}

func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := idParam(r)
	if !ok {
		handleServiceError(w, r, invalidID())
		return
	}

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Session unavailable", r))
		return
	}

	state, feedback, err := h.quiz.SubmitAnswer(r.Context(), sess.QuizState(), answerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess.SetQuizState(state)
	if !h.save(w, r, sess) {
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		AnswerFeedback: *feedback,
		WasCorrect:     feedback.IsCorrect(),
		Score:          state.Score,
	})
}

func (h *QuizHandler) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		log.Printf("session save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save session", r))
		return false
	}
	return true
}
