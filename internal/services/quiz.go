package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"quiz-backend/internal/models"
)

type quizStore interface {
	ListWithCounts(ctx context.Context) ([]*models.QuizWithCount, error)
	GetByID(ctx context.Context, id int64) (*models.Quiz, error)
	NextQuestion(ctx context.Context, quizID, afterID int64) (*models.Question, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	CountQuestions(ctx context.Context, quizID int64) (int, error)
	ListAnswers(ctx context.Context, questionID int64) ([]models.Answer, error)
	GetAnswer(ctx context.Context, id int64) (*models.Answer, error)
	GetCorrectAnswer(ctx context.Context, questionID int64) (*models.Answer, error)
}

// QuizService drives a quiz run. It never reads or writes the session itself:
// each operation takes the caller's QuizState and returns the state to persist.
type QuizService struct {
	store quizStore
}

func NewQuizService(store quizStore) *QuizService {
	return &QuizService{store: store}
}

func (s *QuizService) ListTopics(ctx context.Context) ([]*models.QuizWithCount, error) {
	return s.store.ListWithCounts(ctx)
}

// Start discards any run in progress and moves to the first question of quizID.
// An unknown quiz is a NotFoundError and leaves state untouched; a quiz with no
// questions returns ErrNoQuestions together with the reset state.
func (s *QuizService) Start(ctx context.Context, state models.QuizState, quizID int64) (models.QuizState, *models.QuestionWithAnswers, error) {
	if _, err := s.store.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, &NotFoundError{Message: "Quiz not found"}
		}
		return state, nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	state = Reset(state)

	question, err := s.store.NextQuestion(ctx, quizID, 0)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, ErrNoQuestions
		}
		return state, nil, fmt.Errorf("failed to get first question: %w", err)
	}

	return s.moveTo(ctx, state, question)
}

// Advance moves to the question of quizID that follows the current one in id
// order. When none is left it returns ErrQuizComplete and the unchanged state,
// which the caller then passes to Finish.
func (s *QuizService) Advance(ctx context.Context, state models.QuizState, quizID int64) (models.QuizState, *models.QuestionWithAnswers, error) {
	if !state.Active() {
		return state, nil, &ConflictError{Message: "No quiz in progress"}
	}

	question, err := s.store.NextQuestion(ctx, quizID, *state.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, ErrQuizComplete
		}
		return state, nil, fmt.Errorf("failed to get next question: %w", err)
	}

	return s.moveTo(ctx, state, question)
}

func (s *QuizService) moveTo(ctx context.Context, state models.QuizState, question *models.Question) (models.QuizState, *models.QuestionWithAnswers, error) {
	answers, err := s.store.ListAnswers(ctx, question.ID)
	if err != nil {
		return state, nil, fmt.Errorf("failed to list answers: %w", err)
	}

	id := question.ID
	state.QuestionID = &id

	return state, &models.QuestionWithAnswers{Question: *question, Answers: answers}, nil
}

// SubmitAnswer scores answerID. A correct answer adds one to the score; the
// current question does not change either way.
func (s *QuizService) SubmitAnswer(ctx context.Context, state models.QuizState, answerID int64) (models.QuizState, *models.AnswerFeedback, error) {
	submitted, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, &NotFoundError{Message: "Answer not found"}
		}
		return state, nil, fmt.Errorf("failed to get answer: %w", err)
	}

	if submitted.IsCorrect {
		state.Score++
		return state, &models.AnswerFeedback{Submitted: *submitted, Correct: *submitted}, nil
	}

	correct, err := s.store.GetCorrectAnswer(ctx, submitted.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, &IntegrityError{
				Message: fmt.Sprintf("question %d has no correct answer", submitted.QuestionID),
				Err:     err,
			}
		}
		return state, nil, fmt.Errorf("failed to get correct answer: %w", err)
	}

	return state, &models.AnswerFeedback{Submitted: *submitted, Correct: *correct}, nil
}

// Finish summarises the run that owns the current question and resets state.
func (s *QuizService) Finish(ctx context.Context, state models.QuizState) (models.QuizState, *models.FinishSummary, error) {
	if !state.Active() {
		return state, nil, &ConflictError{Message: "No quiz in progress"}
	}

	question, err := s.store.GetQuestion(ctx, *state.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state, nil, &IntegrityError{
				Message: fmt.Sprintf("current question %d no longer exists", *state.QuestionID),
				Err:     err,
			}
		}
		return state, nil, fmt.Errorf("failed to get question: %w", err)
	}

	count, err := s.store.CountQuestions(ctx, question.QuizID)
	if err != nil {
		return state, nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if count <= 0 {
		return state, nil, &IntegrityError{
			Message: fmt.Sprintf("quiz %d has no questions at finish", question.QuizID),
		}
	}

	summary := &models.FinishSummary{
		QuizID:         question.QuizID,
		QuestionsCount: count,
		Score:          state.Score,
		PercentScore:   Percent(state.Score, count),
	}

	return Reset(state), summary, nil
}

// Reset drops the current question and score. Calling it on an idle state is a no-op.
func Reset(state models.QuizState) models.QuizState {
	state.QuestionID = nil
	state.Score = 0
	return state
}

// Percent returns floor(score/total*100), or 0 when total is not positive.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return score * 100 / total
}
