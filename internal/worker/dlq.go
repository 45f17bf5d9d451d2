package worker

// Jobs that exhaust their retries are parked in a per-queue Redis list
// (dlq:{queue}) for manual inspection and replay.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqPrefix = "dlq:"

type deadLetterEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// DeadLetter parks jobs that exhausted their retries.
type DeadLetter struct {
	rdb *redis.Client
}

func NewDeadLetter(rdb *redis.Client) *DeadLetter {
	return &DeadLetter{rdb: rdb}
}

// Park records a failed job with enough metadata to diagnose and replay it.
// Parking is best-effort: a Redis failure here is logged and the job is lost.
func (d *DeadLetter) Park(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := deadLetterEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := d.rdb.LPush(ctx, dlqPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to park job")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// Length reports the number of parked jobs for a source queue.
func (d *DeadLetter) Length(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, dlqPrefix+queue).Result()
}
