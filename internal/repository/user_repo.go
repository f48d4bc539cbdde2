package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quiz-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertGoogleUser creates the user on first sign-in and refreshes the
// profile fields and last login on every later one.
func (r *UserRepo) UpsertGoogleUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	query := `
		INSERT INTO users (id, google_id, email, full_name, avatar_url, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			last_login_at = EXCLUDED.last_login_at
		RETURNING id, created_at, last_login_at`

	return r.pool.QueryRow(ctx, query,
		uuid.New(), user.GoogleID, user.Email, user.FullName, user.AvatarURL, now,
	).Scan(&user.ID, &user.CreatedAt, &user.LastLoginAt)
}

func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, google_id, email, full_name, avatar_url, created_at, last_login_at
		FROM users WHERE google_id = $1`

	err := r.pool.QueryRow(ctx, query, googleID).Scan(
		&user.ID, &user.GoogleID, &user.Email, &user.FullName, &user.AvatarURL,
		&user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
