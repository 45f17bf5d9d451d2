package service

import (
	"context"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/infra"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartService manages the part catalog. Parts carry no price of their own;
// pricing is resolved from the price history rows of each part.
type PartService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreatePartRequest) (*dto.PartResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PartResponse, error)
	List(ctx context.Context, filter dto.PartFilter) ([]dto.PartResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdatePartRequest) (*dto.PartResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// CurrentPrice resolves the single effective unit price of a part: the
	// most recently started active row whose start date is not in the future.
	// A lapsed end date does not disqualify the row here; the bounded lookup
	// is CurrentPrices.
	CurrentPrice(ctx context.Context, partID uuid.UUID) (*decimal.Decimal, error)
	// CurrentPrices returns every active row pricing today, end date honored.
	CurrentPrices(ctx context.Context, partID uuid.UUID) ([]dto.PriceHistoryItem, error)

	// ExportPriceReport renders the part's price history to a PDF file and
	// returns its path.
	ExportPriceReport(ctx context.Context, id uuid.UUID) (string, error)
}

type partService struct {
	parts  repository.PartRepository
	prices repository.PriceHistoryRepository
	cfg    *config.Config
	now    func() time.Time
}

func NewPartService(parts repository.PartRepository, prices repository.PriceHistoryRepository, cfg *config.Config) PartService {
	return &partService{parts: parts, prices: prices, cfg: cfg, now: time.Now}
}

func (s *partService) Create(ctx context.Context, actor model.Actor, req dto.CreatePartRequest) (*dto.PartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.NewValidation("product", "invalid id")
	}
	branchID, err := uuid.Parse(req.SupplierBranchID)
	if err != nil {
		return nil, apierror.NewValidation("supplier_branch", "invalid id")
	}

	unit := req.Unit
	if unit == "" {
		unit = "piece"
	}
	moq := 1
	if req.MinimumOrderQuantity != nil {
		moq = *req.MinimumOrderQuantity
	}
	if moq < 1 {
		return nil, apierror.NewValidation("minimum_order_quantity", "must be at least 1")
	}

	p := &model.Part{
		ProductID:            productID,
		SupplierBranchID:     branchID,
		PartNumber:           req.PartNumber,
		PartName:             req.PartName,
		Specification:        req.Specification,
		Unit:                 unit,
		MinimumOrderQuantity: moq,
		LeadTimeDays:         req.LeadTimeDays,
		IsActive:             true,
		Notes:                req.Notes,
		CreatedByID:          &actor.ID,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	// Check-then-insert in one transaction so two concurrent creates of the
	// same triple cannot both pass the check.
	err = s.parts.InTx(ctx, func(tx repository.PartRepository) error {
		n, err := tx.CountByTriple(ctx, productID, branchID, p.PartNumber, uuid.Nil)
		if err != nil {
			return err
		}
		if n > 0 {
			return &apierror.DuplicateKeyError{
				Detail: "part with this product, supplier branch, and part number already exists",
			}
		}
		return tx.Create(ctx, p)
	})
	if err != nil {
		return nil, translateDuplicate(err, "part")
	}
	return s.responseByID(ctx, p.ID, true)
}

func (s *partService) Get(ctx context.Context, id uuid.UUID) (*dto.PartResponse, error) {
	return s.responseByID(ctx, id, true)
}

func (s *partService) List(ctx context.Context, filter dto.PartFilter) ([]dto.PartResponse, error) {
	parts, err := s.parts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		r, err := s.toResponse(ctx, &parts[i], false)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *partService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdatePartRequest) (*dto.PartResponse, error) {
	p, err := s.parts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if req.ProductID != nil {
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, apierror.NewValidation("product", "invalid id")
		}
		p.ProductID = pid
	}
	if req.SupplierBranchID != nil {
		bid, err := uuid.Parse(*req.SupplierBranchID)
		if err != nil {
			return nil, apierror.NewValidation("supplier_branch", "invalid id")
		}
		p.SupplierBranchID = bid
	}
	if req.PartNumber != nil {
		p.PartNumber = *req.PartNumber
	}
	if req.PartName != nil {
		p.PartName = *req.PartName
	}
	if req.Specification != nil {
		p.Specification = *req.Specification
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.MinimumOrderQuantity != nil {
		if *req.MinimumOrderQuantity < 1 {
			return nil, apierror.NewValidation("minimum_order_quantity", "must be at least 1")
		}
		p.MinimumOrderQuantity = *req.MinimumOrderQuantity
	}
	if req.LeadTimeDays != nil {
		p.LeadTimeDays = req.LeadTimeDays
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	// Re-check the uniqueness triple inside the write transaction; the
	// identifying fields may all have changed.
	err = s.parts.InTx(ctx, func(tx repository.PartRepository) error {
		n, err := tx.CountByTriple(ctx, p.ProductID, p.SupplierBranchID, p.PartNumber, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &apierror.DuplicateKeyError{
				Detail: "part with this product, supplier branch, and part number already exists",
			}
		}
		return tx.Update(ctx, p)
	})
	if err != nil {
		return nil, translateDuplicate(err, "part")
	}
	return s.responseByID(ctx, p.ID, true)
}

// Delete removes a part. Administrator only; refused while any price history
// rows (active or not) reference it.
func (s *partService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	if _, err := s.parts.FindByID(ctx, id); err != nil {
		return notFoundOr(err)
	}
	n, err := s.parts.PriceHistoryCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apierror.DependencyExistsError{
			Detail: "cannot delete part: price history records exist",
		}
	}
	return s.parts.Delete(ctx, id)
}

func (s *partService) CurrentPrice(ctx context.Context, partID uuid.UUID) (*decimal.Decimal, error) {
	h, err := s.prices.LatestStarted(ctx, partID, s.now())
	if err != nil {
		// No qualifying row is not an error: the part simply has no price.
		if notFoundOr(err) == apierror.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &h.Price, nil
}

func (s *partService) CurrentPrices(ctx context.Context, partID uuid.UUID) ([]dto.PriceHistoryItem, error) {
	today := s.now()
	rows, err := s.prices.ListCurrent(ctx, partID, today)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceHistoryItem, len(rows))
	for i := range rows {
		items[i] = toPriceHistoryItem(&rows[i], today)
	}
	return items, nil
}

func (s *partService) ExportPriceReport(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.parts.FindByID(ctx, id)
	if err != nil {
		return "", notFoundOr(err)
	}
	current, err := s.CurrentPrice(ctx, id)
	if err != nil {
		return "", err
	}
	return infra.GeneratePriceReportPDF(p, current, s.now(), s.cfg.ReportStoragePath)
}

// ─── Response mapping ────────────────────────────────────────────────────────

func (s *partService) responseByID(ctx context.Context, id uuid.UUID, detail bool) (*dto.PartResponse, error) {
	p, err := s.parts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s.toResponse(ctx, p, detail)
}

func (s *partService) toResponse(ctx context.Context, p *model.Part, detail bool) (*dto.PartResponse, error) {
	today := s.now()

	current, err := s.CurrentPrice(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	currentRows, err := s.prices.ListCurrent(ctx, p.ID, today)
	if err != nil {
		return nil, err
	}
	count, err := s.parts.PriceHistoryCount(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PartResponse{
		ID:                      p.ID.String(),
		ProductID:               p.ProductID.String(),
		SupplierBranchID:        p.SupplierBranchID.String(),
		PartNumber:              p.PartNumber,
		PartName:                p.PartName,
		Specification:           p.Specification,
		Unit:                    p.Unit,
		MinimumOrderQuantity:    p.MinimumOrderQuantity,
		LeadTimeDays:            p.LeadTimeDays,
		CurrentPrice:            current,
		HasMultipleActivePrices: len(currentRows) > 1,
		PriceHistoryCount:       count,
		IsActive:                p.IsActive,
		Notes:                   p.Notes,
		CreatedAt:               p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:               p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Product != nil {
		resp.ProductNumber = p.Product.ProductNumber
		resp.ProductName = p.Product.ProductName
	}
	if p.SupplierBranch != nil {
		resp.BranchName = p.SupplierBranch.BranchName
		if p.SupplierBranch.Supplier != nil {
			resp.SupplierName = p.SupplierBranch.Supplier.CompanyName
		}
	}
	if p.CreatedBy != nil {
		resp.CreatedByName = &p.CreatedBy.FullName
	}
	if detail {
		items := make([]dto.PriceHistoryItem, len(p.PriceHistories))
		for i := range p.PriceHistories {
			items[i] = toPriceHistoryItem(&p.PriceHistories[i], today)
		}
		resp.PriceHistories = items
	}
	return resp, nil
}

func toPriceHistoryItem(h *model.PriceHistory, today time.Time) dto.PriceHistoryItem {
	item := dto.PriceHistoryItem{
		ID:           h.ID.String(),
		Price:        h.Price,
		StartDate:    model.DateOnly(h.StartDate).Format("2006-01-02"),
		IsActive:     h.IsActive,
		IsCurrent:    h.IsCurrent(today),
		IsFuture:     h.IsFuture(today),
		IsExpired:    h.IsExpired(today),
		ChangeReason: h.ChangeReason,
		CreatedAt:    h.CreatedAt.UTC().Format(time.RFC3339),
	}
	if h.EndDate != nil {
		s := model.DateOnly(*h.EndDate).Format("2006-01-02")
		item.EndDate = &s
	}
	if h.CreatedBy != nil {
		item.CreatedByName = &h.CreatedBy.FullName
	}
	return item
}
