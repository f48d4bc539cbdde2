package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"quiz-backend/internal/models"
)

var (
	ErrEmptyQuizName      = errors.New("quiz name is required")
	ErrEmptyQuestionText  = errors.New("question text is required")
	ErrTooFewAnswers      = errors.New("a question needs at least two answers")
	ErrCorrectAnswerCount = errors.New("a question needs exactly one correct answer")
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so a QuizRepo can run
// against the pool or inside a caller's transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type QuizRepo struct {
	db dbtx
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{db: pool}
}

// InTx runs fn with a QuizRepo bound to a single transaction. Writes made
// through it commit together when fn returns nil and roll back otherwise.
func (r *QuizRepo) InTx(ctx context.Context, fn func(*QuizRepo) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&QuizRepo{db: tx})
	})
}

// ValidateQuestion enforces the write-time invariants of a question.
func ValidateQuestion(in models.NewQuestionInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return ErrEmptyQuestionText
	}
	if len(in.Answers) < 2 {
		return ErrTooFewAnswers
	}
	correct := 0
	for _, a := range in.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return ErrCorrectAnswerCount
	}
	return nil
}

func (r *QuizRepo) ListWithCounts(ctx context.Context) ([]*models.QuizWithCount, error) {
	query := `SELECT q.id, q.name, q.created_at, COUNT(qs.id)
		FROM quizzes q LEFT JOIN questions qs ON qs.quiz_id = q.id
		GROUP BY q.id ORDER BY q.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []*models.QuizWithCount{}
	for rows.Next() {
		q := &models.QuizWithCount{}
		if err := rows.Scan(&q.ID, &q.Name, &q.CreatedAt, &q.QuestionsCount); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (r *QuizRepo) GetByID(ctx context.Context, id int64) (*models.Quiz, error) {
	q := &models.Quiz{}
	err := r.db.QueryRow(ctx, "SELECT id, name, created_at FROM quizzes WHERE id = $1", id).
		Scan(&q.ID, &q.Name, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// NextQuestion returns the question of quizID with the smallest id greater
// than afterID. Pass 0 to get the first question.
func (r *QuizRepo) NextQuestion(ctx context.Context, quizID, afterID int64) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, quiz_id, text FROM questions
		WHERE quiz_id = $1 AND id > $2 ORDER BY id LIMIT 1`

	err := r.db.QueryRow(ctx, query, quizID, afterID).Scan(&q.ID, &q.QuizID, &q.Text)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuizRepo) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	q := &models.Question{}
	err := r.db.QueryRow(ctx, "SELECT id, quiz_id, text FROM questions WHERE id = $1", id).
		Scan(&q.ID, &q.QuizID, &q.Text)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuizRepo) CountQuestions(ctx context.Context, quizID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM questions WHERE quiz_id = $1", quizID).Scan(&n)
	return n, err
}

func (r *QuizRepo) ListAnswers(ctx context.Context, questionID int64) ([]models.Answer, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, question_id, text, is_correct FROM answers WHERE question_id = $1 ORDER BY id",
		questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *QuizRepo) GetAnswer(ctx context.Context, id int64) (*models.Answer, error) {
	a := &models.Answer{}
	err := r.db.QueryRow(ctx, "SELECT id, question_id, text, is_correct FROM answers WHERE id = $1", id).
		Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *QuizRepo) GetCorrectAnswer(ctx context.Context, questionID int64) (*models.Answer, error) {
	a := &models.Answer{}
	query := `SELECT id, question_id, text, is_correct FROM answers
		WHERE question_id = $1 AND is_correct`

	err := r.db.QueryRow(ctx, query, questionID).Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create writes a quiz with all of its questions and answers in a single
// transaction. Nothing is written if any question is invalid.
func (r *QuizRepo) Create(ctx context.Context, in models.NewQuizInput) (*models.Quiz, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmptyQuizName
	}
	for i, q := range in.Questions {
		if err := ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	quiz := &models.Quiz{Name: in.Name}
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"INSERT INTO quizzes (name) VALUES ($1) RETURNING id, created_at", in.Name,
		).Scan(&quiz.ID, &quiz.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}

		for _, q := range in.Questions {
			if _, err := insertQuestion(ctx, tx, quiz.ID, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// AddQuestion appends a question to an existing quiz.
func (r *QuizRepo) AddQuestion(ctx context.Context, quizID int64, in models.NewQuestionInput) (*models.Question, error) {
	if err := ValidateQuestion(in); err != nil {
		return nil, err
	}

	var question *models.Question
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		question, err = insertQuestion(ctx, tx, quizID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func insertQuestion(ctx context.Context, tx pgx.Tx, quizID int64, in models.NewQuestionInput) (*models.Question, error) {
	q := &models.Question{QuizID: quizID, Text: in.Text}
	err := tx.QueryRow(ctx,
		"INSERT INTO questions (quiz_id, text) VALUES ($1, $2) RETURNING id", quizID, in.Text,
	).Scan(&q.ID)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}

	for _, a := range in.Answers {
		_, err := tx.Exec(ctx,
			"INSERT INTO answers (question_id, text, is_correct) VALUES ($1, $2, $3)",
			q.ID, a.Text, a.IsCorrect,
		)
		if err != nil {
			return nil, fmt.Errorf("insert answer: %w", err)
		}
	}
	return q, nil
}
