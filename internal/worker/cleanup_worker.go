package worker

// cleanup_worker.go
// Deletes orphaned quote attachments from object storage. Jobs arrive here
// when a synchronous removal failed (storage down, circuit breaker open).

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fumiakihyodo/meiwaproducts/internal/infra"

	"github.com/rs/zerolog/log"
)

// CleanupJobPayload is the job envelope sent to QueueAttachmentCleanup.
type CleanupJobPayload struct {
	Key string `json:"key"`
}

// CleanupWorker removes orphaned attachments through the circuit breaker.
type CleanupWorker struct {
	store *infra.QuoteStore
	cb    *infra.CircuitBreaker
}

func NewCleanupWorker(store *infra.QuoteStore, cb *infra.CircuitBreaker) *CleanupWorker {
	return &CleanupWorker{store: store, cb: cb}
}

// Process deletes one stored object. Failures propagate so the pool retries
// and eventually parks the job in the DLQ.
func (w *CleanupWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CleanupJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cleanup_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.Key == "" {
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.store.Remove(ctx, payload.Key)
	})
	if err != nil {
		return fmt.Errorf("cleanup_worker: remove %s: %w", payload.Key, err)
	}
	log.Info().Str("key", payload.Key).Msg("cleanup_worker: orphaned attachment removed")
	return nil
}
