package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAttachmentCleanup = "jobs:attachment_cleanup"
	QueueEmail             = "jobs:email"

	maxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes a notification email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, to, subject, body, attachPath string) error {
	return d.enqueue(ctx, QueueEmail, "email", EmailJobPayload{
		ToEmail:    to,
		Subject:    subject,
		Body:       body,
		AttachPath: attachPath,
	})
}

// EnqueueAttachmentCleanup pushes an orphaned-attachment deletion job to Redis.
func (d *Dispatcher) EnqueueAttachmentCleanup(ctx context.Context, key string) error {
	return d.enqueue(ctx, QueueAttachmentCleanup, "attachment_cleanup", CleanupJobPayload{Key: key})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes one job payload. A non-nil error triggers a retry, and
// after maxJobAttempts the job moves to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// PoolConfig wires the queue handlers consumed by the pool.
type PoolConfig struct {
	RDB     *redis.Client
	Email   Handler
	Cleanup Handler
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, cfg PoolConfig, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, cfg, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, cfg PoolConfig, id int) {
	queues := []string{QueueAttachmentCleanup, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := cfg.RDB.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, cfg, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, cfg PoolConfig, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var handler Handler
	switch queue {
	case QueueEmail:
		handler = cfg.Email
	case QueueAttachmentCleanup:
		handler = cfg.Cleanup
	}
	if handler == nil {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	err := handler.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		NewDeadLetter(cfg.RDB).Park(ctx, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Err(err).
		Msg("job failed, requeueing")
	encoded, merr := json.Marshal(job)
	if merr != nil {
		log.Error().Err(merr).Msg("failed to re-marshal job for retry")
		return
	}
	if perr := cfg.RDB.LPush(ctx, queue, encoded).Err(); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("failed to requeue job")
	}
}
