package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-backend/internal/models"
	"quiz-backend/internal/services"
)

const (
	maxAttempts    = 3
	dequeueTimeout = 5 * time.Second
	jobTimeout     = 10 * time.Second
	requeueTimeout = 5 * time.Second
)

type resultQueue interface {
	Enqueue(ctx context.Context, job models.ResultJob) error
	Dequeue(ctx context.Context, timeout time.Duration) (*models.ResultJob, error)
	PublishResult(ctx context.Context, event models.ResultEvent) error
}

type resultStore interface {
	Create(ctx context.Context, result *models.QuizResult) error
}

type quizLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Quiz, error)
}

// Pool records finished quiz runs off the request path: each job is written
// to quiz_results and then announced on the live results feed.
type Pool struct {
	queue       resultQueue
	results     resultStore
	quizzes     quizLookup
	workerCount int
	backoff     func(attempt int) time.Duration
	jobTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(queue resultQueue, results resultStore, quizzes quizLookup, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:       queue,
		results:     results,
		quizzes:     quizzes,
		workerCount: workerCount,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
		jobTimeout: jobTimeout,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d result workers", p.workerCount)
}

// Stop cancels pending dequeues and waits for every worker to return. A job
// already dequeued still runs to completion, bounded by jobTimeout.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			log.Printf("Result worker %d shutting down", id)
			return
		}

		job, err := p.queue.Dequeue(p.ctx, dequeueTimeout)
		if err != nil {
			if !errors.Is(err, services.ErrQueueEmpty) && p.ctx.Err() == nil {
				log.Printf("Result worker %d: dequeue failed: %v", id, err)
				select {
				case <-p.ctx.Done():
				case <-time.After(time.Second):
				}
			}
			continue
		}

		p.run(job)
	}
}

// run processes one job on its own context so that Stop does not abort a
// write that is already under way.
func (p *Pool) run(job *models.ResultJob) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	if err := p.process(ctx, job); err != nil {
		p.handleFailure(job, err)
	}
}

func (p *Pool) process(ctx context.Context, job *models.ResultJob) error {
	result := &models.QuizResult{
		ID:             job.ID,
		GoogleID:       job.GoogleID,
		QuizID:         job.Summary.QuizID,
		Score:          job.Summary.Score,
		QuestionsCount: job.Summary.QuestionsCount,
		PercentScore:   job.Summary.PercentScore,
		FinishedAt:     job.FinishedAt,
	}
	if err := p.results.Create(ctx, result); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	event := models.ResultEvent{
		UserName:       job.UserName,
		QuizID:         job.Summary.QuizID,
		Score:          job.Summary.Score,
		QuestionsCount: job.Summary.QuestionsCount,
		PercentScore:   job.Summary.PercentScore,
	}
	if quiz, err := p.quizzes.GetByID(ctx, job.Summary.QuizID); err == nil {
		event.QuizName = quiz.Name
	}

	// The row is already stored; a lost feed message is not worth a retry.
	if err := p.queue.PublishResult(ctx, event); err != nil {
		log.Printf("Result %s stored but not published: %v", job.ID, err)
	}

	log.Printf("Recorded result %s for quiz %d (%d%%)", job.ID, job.Summary.QuizID, job.Summary.PercentScore)
	return nil
}

func (p *Pool) handleFailure(job *models.ResultJob, err error) {
	// A backoff timer would not outlive the process, so hand the job back now.
	if p.ctx.Err() != nil {
		log.Printf("Result %s failed during shutdown: %v, requeueing", job.ID, err)
		p.requeue(*job)
		return
	}

	job.RetryCount++

	if job.RetryCount >= maxAttempts {
		log.Printf("Result %s dropped after %d attempts: %v", job.ID, job.RetryCount, err)
		return
	}

	log.Printf("Result %s failed (attempt %d): %v, retrying", job.ID, job.RetryCount, err)
	retry := *job
	time.AfterFunc(p.backoff(job.RetryCount), func() {
		p.requeue(retry)
	})
}

func (p *Pool) requeue(job models.ResultJob) {
	ctx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()

	if err := p.queue.Enqueue(ctx, job); err != nil {
		log.Printf("Result %s could not be requeued: %v", job.ID, err)
	}
}
