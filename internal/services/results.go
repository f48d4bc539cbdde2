package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-backend/internal/models"
)

const (
	ResultsQueue       = "queue:quiz-results"
	ResultsFeedChannel = "quiz_results:feed"
)

// ErrQueueEmpty is returned by Dequeue when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// ResultQueue hands finished runs to the background recorder and fans recorded
// results out to live subscribers.
type ResultQueue struct {
	redis *redis.Client
}

func NewResultQueue(redisClient *redis.Client) *ResultQueue {
	return &ResultQueue{redis: redisClient}
}

// NewResultJob builds the queue entry for a run finished by a signed-in user.
func NewResultJob(claims models.UserClaims, summary models.FinishSummary, now time.Time) models.ResultJob {
	name := claims.Name()
	if name == "" {
		name = claims.Email()
	}
	return models.ResultJob{
		ID:         uuid.New(),
		GoogleID:   claims.Subject(),
		UserName:   name,
		Summary:    summary,
		FinishedAt: now.UTC(),
	}
}

func (q *ResultQueue) Enqueue(ctx context.Context, job models.ResultJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode result job: %w", err)
	}
	return q.redis.LPush(ctx, ResultsQueue, data).Err()
}

// Dequeue blocks for up to timeout waiting for the oldest job.
func (q *ResultQueue) Dequeue(ctx context.Context, timeout time.Duration) (*models.ResultJob, error) {
	result, err := q.redis.BRPop(ctx, timeout, ResultsQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, ErrQueueEmpty
	}

	var job models.ResultJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to parse result job: %w", err)
	}
	return &job, nil
}

func (q *ResultQueue) PublishResult(ctx context.Context, event models.ResultEvent) error {
	data, err := json.Marshal(models.WSMessage{Type: "quiz_result", Payload: event})
	if err != nil {
		return err
	}
	return q.redis.Publish(ctx, ResultsFeedChannel, data).Err()
}
