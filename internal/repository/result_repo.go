package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"quiz-backend/internal/models"
)

type ResultRepo struct {
	pool *pgxpool.Pool
}

func NewResultRepo(pool *pgxpool.Pool) *ResultRepo {
	return &ResultRepo{pool: pool}
}

// Create is idempotent on the result id so a redelivered job is stored once.
func (r *ResultRepo) Create(ctx context.Context, res *models.QuizResult) error {
	query := `INSERT INTO quiz_results (id, google_id, quiz_id, score, questions_count, percent, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		res.ID, res.GoogleID, res.QuizID, res.Score, res.QuestionsCount, res.PercentScore, res.FinishedAt,
	)
	return err
}

func (r *ResultRepo) ListByGoogleID(ctx context.Context, googleID string, limit int) ([]*models.QuizResult, error) {
	query := `SELECT r.id, r.google_id, r.quiz_id, q.name, r.score, r.questions_count, r.percent, r.finished_at
		FROM quiz_results r JOIN quizzes q ON q.id = r.quiz_id
		WHERE r.google_id = $1 ORDER BY r.finished_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, googleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.QuizResult{}
	for rows.Next() {
		res := &models.QuizResult{}
		err := rows.Scan(&res.ID, &res.GoogleID, &res.QuizID, &res.QuizName, &res.Score,
			&res.QuestionsCount, &res.PercentScore, &res.FinishedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
