package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"quiz-backend/internal/models"
	"quiz-backend/internal/repository"
)

// seedQuiz is one entry of a seed file. Entries with a quiz_id append their
// questions to that existing quiz instead of creating a new one.
type seedQuiz struct {
	QuizID int64 `json:"quiz_id,omitempty"`
	models.NewQuizInput
}

type quizWriter interface {
	Create(ctx context.Context, in models.NewQuizInput) (*models.Quiz, error)
	AddQuestion(ctx context.Context, quizID int64, in models.NewQuestionInput) (*models.Question, error)
}

// parseSeed decodes a seed file and validates every question before any
// write is attempted.
func parseSeed(r io.Reader) ([]seedQuiz, error) {
	var quizzes []seedQuiz
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&quizzes); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, q := range quizzes {
		if q.QuizID == 0 && q.Name == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, repository.ErrEmptyQuizName)
		}
		for j, question := range q.Questions {
			if err := repository.ValidateQuestion(question); err != nil {
				return nil, fmt.Errorf("entry %d, question %d: %w", i+1, j+1, err)
			}
		}
	}
	return quizzes, nil
}

type seedStats struct {
	Created   int
	Appended  int
	Questions int
}

func applySeed(ctx context.Context, w quizWriter, quizzes []seedQuiz) (seedStats, error) {
	var stats seedStats
	for _, q := range quizzes {
		if q.QuizID == 0 {
			if _, err := w.Create(ctx, q.NewQuizInput); err != nil {
				return stats, fmt.Errorf("failed to create quiz %q: %w", q.Name, err)
			}
			stats.Created++
			stats.Questions += len(q.Questions)
			continue
		}

		for _, question := range q.Questions {
			if _, err := w.AddQuestion(ctx, q.QuizID, question); err != nil {
				return stats, fmt.Errorf("failed to add question to quiz %d: %w", q.QuizID, err)
			}
			stats.Questions++
		}
		stats.Appended++
	}
	return stats, nil
}

// txRunner runs fn against a writer bound to one transaction, committing only
// when fn returns nil.
type txRunner func(ctx context.Context, fn func(quizWriter) error) error

// seedAll applies every entry inside a single transaction, so a failure on
// any entry leaves the database as it was.
func seedAll(ctx context.Context, inTx txRunner, quizzes []seedQuiz) (seedStats, error) {
	var stats seedStats
	err := inTx(ctx, func(w quizWriter) error {
		var err error
		stats, err = applySeed(ctx, w, quizzes)
		return err
	})
	if err != nil {
		return seedStats{}, err
	}
	return stats, nil
}

func repoTx(repo *repository.QuizRepo) txRunner {
	return func(ctx context.Context, fn func(quizWriter) error) error {
		return repo.InTx(ctx, func(tx *repository.QuizRepo) error {
			return fn(tx)
		})
	}
}
