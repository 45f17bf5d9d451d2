package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/infra"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// QuoteStorage is the slice of the object store this service needs.
// Satisfied by *infra.QuoteStore.
type QuoteStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// JobDispatcher enqueues async follow-up work. Satisfied by *worker.Dispatcher.
type JobDispatcher interface {
	EnqueueEmail(ctx context.Context, to, subject, body, attachPath string) error
	EnqueueAttachmentCleanup(ctx context.Context, key string) error
}

// CurrentPriceCache memoizes resolved current prices. Satisfied by
// *infra.PriceCache.
type CurrentPriceCache interface {
	Get(ctx context.Context, partID uuid.UUID) (*decimal.Decimal, bool)
	Set(ctx context.Context, partID uuid.UUID, price *decimal.Decimal)
	Invalidate(ctx context.Context, partID uuid.UUID)
}

// PriceHistoryService is the pricing engine: it owns validation of price
// rows (range order, overlap among active rows, auto-deactivation of lapsed
// rows) and the quote attachment lifecycle.
type PriceHistoryService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreatePriceHistoryRequest) (*dto.PriceHistoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PriceHistoryResponse, error)
	List(ctx context.Context, filter dto.PriceHistoryFilter) ([]dto.PriceHistoryItem, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdatePriceHistoryRequest) (*dto.PriceHistoryResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// UploadQuote attaches a quotation file to a price row, replacing any
	// previous attachment.
	UploadQuote(ctx context.Context, actor model.Actor, id uuid.UUID, filename, contentType string, r io.Reader, size int64) (*dto.PriceHistoryResponse, error)
	// DownloadQuote streams the attached quotation file.
	DownloadQuote(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error)

	// CachedCurrentPrice resolves a part's current price through the Redis
	// cache. This is the hot read path for procurement screens.
	CachedCurrentPrice(ctx context.Context, partID uuid.UUID) (*dto.CurrentPriceResponse, error)
}

type priceHistoryService struct {
	prices     repository.PriceHistoryRepository
	parts      repository.PartRepository
	store      QuoteStorage
	cb         *infra.CircuitBreaker
	cache      CurrentPriceCache
	dispatcher JobDispatcher
	cfg        *config.Config
	now        func() time.Time
}

func NewPriceHistoryService(
	prices repository.PriceHistoryRepository,
	parts repository.PartRepository,
	store QuoteStorage,
	cb *infra.CircuitBreaker,
	cache CurrentPriceCache,
	dispatcher JobDispatcher,
	cfg *config.Config,
) PriceHistoryService {
	return &priceHistoryService{
		prices:     prices,
		parts:      parts,
		store:      store,
		cb:         cb,
		cache:      cache,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *priceHistoryService) Create(ctx context.Context, actor model.Actor, req dto.CreatePriceHistoryRequest) (*dto.PriceHistoryResponse, error) {
	partID, err := uuid.Parse(req.PartID)
	if err != nil {
		return nil, apierror.NewValidation("part", "invalid id")
	}
	if _, err := s.parts.FindByID(ctx, partID); err != nil {
		return nil, apierror.NewValidation("part", "part does not exist")
	}
	if req.Price == nil {
		return nil, apierror.NewValidation("price", "is required")
	}
	// Zero is a valid price; only negatives are rejected.
	if req.Price.IsNegative() {
		return nil, apierror.NewValidation("price", "must not be negative")
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, apierror.NewValidation("start_date", "invalid date")
	}
	var end *time.Time
	if req.EndDate != nil {
		e, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, apierror.NewValidation("end_date", "invalid date")
		}
		end = &e
	}

	h := &model.PriceHistory{
		PartID:       partID,
		Price:        *req.Price,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
		ChangeReason: req.ChangeReason,
		Notes:        req.Notes,
		CreatedByID:  &actor.ID,
	}
	if req.IsActive != nil {
		h.IsActive = *req.IsActive
	}

	if err := s.saveValidated(ctx, h); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, partID)
	return s.responseByID(ctx, h.ID)
}

func (s *priceHistoryService) Get(ctx context.Context, id uuid.UUID) (*dto.PriceHistoryResponse, error) {
	return s.responseByID(ctx, id)
}

func (s *priceHistoryService) List(ctx context.Context, filter dto.PriceHistoryFilter) ([]dto.PriceHistoryItem, error) {
	today := s.now()
	rows, err := s.prices.List(ctx, filter, today)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceHistoryItem, len(rows))
	for i := range rows {
		items[i] = toPriceHistoryItem(&rows[i], today)
	}
	return items, nil
}

func (s *priceHistoryService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdatePriceHistoryRequest) (*dto.PriceHistoryResponse, error) {
	h, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.NewValidation("price", "must not be negative")
		}
		h.Price = *req.Price
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, apierror.NewValidation("start_date", "invalid date")
		}
		h.StartDate = start
	}
	if req.ClearEndDate {
		h.EndDate = nil
	} else if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, apierror.NewValidation("end_date", "invalid date")
		}
		h.EndDate = &end
	}
	if req.IsActive != nil {
		h.IsActive = *req.IsActive
	}
	if req.ChangeReason != nil {
		h.ChangeReason = *req.ChangeReason
	}
	if req.Notes != nil {
		h.Notes = *req.Notes
	}

	if err := s.saveValidated(ctx, h); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, h.PartID)
	return s.responseByID(ctx, h.ID)
}

// saveValidated enforces the row invariants and persists: range order,
// auto-deactivation of a lapsed end date, and no overlap among the part's
// active rows. The overlap check and the write share one transaction.
func (s *priceHistoryService) saveValidated(ctx context.Context, h *model.PriceHistory) error {
	if h.EndDate != nil && model.DateOnly(*h.EndDate).Before(model.DateOnly(h.StartDate)) {
		return apierror.NewValidation("end_date", "must not precede start_date")
	}

	// A lapsed end date wins over an explicit active flag.
	h.ApplyExpiry(s.now())

	return s.prices.InTx(ctx, func(tx repository.PriceHistoryRepository) error {
		// Inactive rows are exempt from the overlap rule.
		if h.IsActive {
			others, err := tx.ListActiveByPart(ctx, h.PartID, h.ID)
			if err != nil {
				return err
			}
			for i := range others {
				if h.Overlaps(&others[i]) {
					start, end := others[i].ConflictRange()
					return &apierror.OverlapError{ConflictStart: start, ConflictEnd: end}
				}
			}
		}
		if h.CreatedAt.IsZero() {
			return tx.Create(ctx, h)
		}
		return tx.Update(ctx, h)
	})
}

// Delete removes a price row. Administrator only. The quote attachment, if
// any, is removed best-effort: a storage failure defers cleanup to the
// background queue instead of blocking the delete.
func (s *priceHistoryService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	h, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}

	if h.QuoteKey != nil {
		s.removeAttachment(ctx, *h.QuoteKey)
	}
	if err := s.prices.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, h.PartID)
	return nil
}

func (s *priceHistoryService) UploadQuote(ctx context.Context, actor model.Actor, id uuid.UUID, filename, contentType string, r io.Reader, size int64) (*dto.PriceHistoryResponse, error) {
	if filename == "" {
		return nil, apierror.NewValidation("file", "filename is required")
	}
	h, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	partNumber := ""
	if h.Part != nil {
		partNumber = h.Part.PartNumber
	} else if p, err := s.parts.FindByID(ctx, h.PartID); err == nil {
		partNumber = p.PartNumber
	}

	key := infra.QuoteKey(partNumber, path.Base(filename), s.now())
	err = s.cb.Execute(func() error {
		return s.store.Put(ctx, key, r, size, contentType)
	})
	if err != nil {
		return nil, err
	}

	// Replace: the previous attachment is orphaned once the key changes.
	if h.QuoteKey != nil && *h.QuoteKey != key {
		s.removeAttachment(ctx, *h.QuoteKey)
	}
	h.QuoteKey = &key
	if err := s.prices.Update(ctx, h); err != nil {
		return nil, err
	}
	return s.responseByID(ctx, h.ID)
}

func (s *priceHistoryService) DownloadQuote(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	h, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return nil, "", "", notFoundOr(err)
	}
	if h.QuoteKey == nil {
		return nil, "", "", apierror.ErrNotFound
	}

	var (
		rc          io.ReadCloser
		contentType string
	)
	err = s.cb.Execute(func() error {
		var err error
		rc, contentType, err = s.store.Get(ctx, *h.QuoteKey)
		return err
	})
	if err != nil {
		return nil, "", "", err
	}
	return rc, contentType, path.Base(*h.QuoteKey), nil
}

func (s *priceHistoryService) CachedCurrentPrice(ctx context.Context, partID uuid.UUID) (*dto.CurrentPriceResponse, error) {
	p, err := s.parts.FindByID(ctx, partID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	price, hit := s.cache.Get(ctx, partID)
	if !hit {
		h, err := s.prices.LatestStarted(ctx, partID, s.now())
		switch {
		case err == nil:
			price = &h.Price
		case notFoundOr(err) == apierror.ErrNotFound:
			price = nil
		default:
			return nil, err
		}
		s.cache.Set(ctx, partID, price)
	}

	return &dto.CurrentPriceResponse{
		PartID:       partID.String(),
		PartNumber:   p.PartNumber,
		CurrentPrice: price,
		AsOf:         model.DateOnly(s.now()).Format("2006-01-02"),
	}, nil
}

// removeAttachment deletes a stored quote file through the circuit breaker,
// falling back to the cleanup queue when storage is unavailable.
func (s *priceHistoryService) removeAttachment(ctx context.Context, key string) {
	err := s.cb.Execute(func() error {
		return s.store.Remove(ctx, key)
	})
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("key", key).Msg("price_history: attachment removal failed, deferring to cleanup queue")
	if qerr := s.dispatcher.EnqueueAttachmentCleanup(ctx, key); qerr != nil {
		log.Error().Err(qerr).Str("key", key).Msg("price_history: failed to enqueue attachment cleanup")
	}
}

// afterWrite invalidates the cached current price and raises a review alert
// when the part ends up with more than one price effective today.
func (s *priceHistoryService) afterWrite(ctx context.Context, partID uuid.UUID) {
	s.cache.Invalidate(ctx, partID)

	if s.cfg.AlertRecipient == "" {
		return
	}
	rows, err := s.prices.ListCurrent(ctx, partID, s.now())
	if err != nil {
		log.Warn().Err(err).Str("part", partID.String()).Msg("price_history: multi-price check failed")
		return
	}
	if len(rows) <= 1 {
		return
	}

	partNumber := partID.String()
	if p, err := s.parts.FindByID(ctx, partID); err == nil {
		partNumber = p.PartNumber
	}
	subject := fmt.Sprintf("Price review needed: part %s has %d effective prices", partNumber, len(rows))
	body := fmt.Sprintf(
		"Part %s currently has %d active price records effective today. "+
			"Please review the price histories and close the superseded ranges.",
		partNumber, len(rows))
	if err := s.dispatcher.EnqueueEmail(ctx, s.cfg.AlertRecipient, subject, body, ""); err != nil {
		log.Error().Err(err).Str("part", partNumber).Msg("price_history: failed to enqueue review alert")
	}
}

func (s *priceHistoryService) responseByID(ctx context.Context, id uuid.UUID) (*dto.PriceHistoryResponse, error) {
	h, err := s.prices.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	today := s.now()

	resp := &dto.PriceHistoryResponse{
		PriceHistoryItem: toPriceHistoryItem(h, today),
		PartID:           h.PartID.String(),
		QuoteKey:         h.QuoteKey,
		Notes:            h.Notes,
		UpdatedAt:        h.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if h.Part != nil {
		resp.PartNumber = h.Part.PartNumber
		resp.PartName = h.Part.PartName
	}
	if h.QuoteKey != nil {
		name := path.Base(*h.QuoteKey)
		resp.QuoteFileName = &name
	}
	return resp, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOnly(t), nil
}
