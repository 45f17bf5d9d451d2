package worker

// expiry_cron.go
// Background goroutine that periodically deactivates price rows whose end
// date has passed but whose active flag was never cleared (set before the
// date lapsed and not touched since). Row-level expiry also runs on every
// save; the sweep catches rows that lapse without being written.

import (
	"context"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	expiryTickInterval = 1 * time.Hour
	expiryBatchSize    = 100
)

// ExpiryCronConfig holds the dependencies for the expiry sweep.
type ExpiryCronConfig struct {
	Prices repository.PriceHistoryRepository
	// Invalidate drops the cached current price of a part whose row lapsed.
	Invalidate func(ctx context.Context, partID string)
}

// StartExpiryCron launches a background goroutine that sweeps lapsed active
// rows once per hour. It respects the context for graceful shutdown.
func StartExpiryCron(ctx context.Context, cfg ExpiryCronConfig) {
	go func() {
		ticker := time.NewTicker(expiryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("expiry_cron: started")

		// One sweep at startup so a long-stopped server catches up immediately.
		sweepExpired(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiry_cron: shutting down")
				return
			case <-ticker.C:
				sweepExpired(ctx, cfg)
			}
		}
	}()
}

func sweepExpired(ctx context.Context, cfg ExpiryCronConfig) {
	today := time.Now()
	for {
		rows, err := cfg.Prices.ListLapsedActive(ctx, today, expiryBatchSize)
		if err != nil {
			log.Error().Err(err).Msg("expiry_cron: failed to query lapsed rows")
			return
		}
		if len(rows) == 0 {
			return
		}

		log.Info().Int("count", len(rows)).Msg("expiry_cron: deactivating lapsed price rows")
		updated := 0
		for i := range rows {
			h := &rows[i]
			h.ApplyExpiry(today)
			if err := cfg.Prices.Update(ctx, h); err != nil {
				log.Error().Err(err).Str("id", h.ID.String()).Msg("expiry_cron: failed to deactivate row")
				continue
			}
			updated++
			if cfg.Invalidate != nil {
				cfg.Invalidate(ctx, h.PartID.String())
			}
		}

		// A pass with no successful writes would re-query the same rows;
		// give up until the next tick.
		if updated == 0 {
			log.Error().Int("count", len(rows)).Msg("expiry_cron: no rows could be deactivated, abandoning sweep")
			return
		}
		if len(rows) < expiryBatchSize {
			return
		}
	}
}
