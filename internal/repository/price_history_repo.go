package repository

import (
	"context"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceHistoryRepository defines the data access contract for price rows.
type PriceHistoryRepository interface {
	Create(ctx context.Context, h *model.PriceHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error)
	List(ctx context.Context, filter dto.PriceHistoryFilter, today time.Time) ([]model.PriceHistory, error)
	Update(ctx context.Context, h *model.PriceHistory) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListActiveByPart returns all active rows for a part, excluding the given
	// id (uuid.Nil = exclude nothing). This is the overlap comparison set.
	ListActiveByPart(ctx context.Context, partID uuid.UUID, exclude uuid.UUID) ([]model.PriceHistory, error)
	// LatestStarted resolves the singular "current price" rule: the most
	// recently started active row with start date <= today. End date is
	// deliberately not checked here.
	LatestStarted(ctx context.Context, partID uuid.UUID, today time.Time) (*model.PriceHistory, error)
	// ListCurrent resolves the plural rule, which does honor the end date.
	ListCurrent(ctx context.Context, partID uuid.UUID, today time.Time) ([]model.PriceHistory, error)
	// ListLapsedActive returns rows still flagged active whose end date has
	// passed. Consumed by the expiry sweep.
	ListLapsedActive(ctx context.Context, today time.Time, limit int) ([]model.PriceHistory, error)

	// InTx runs fn against a repository bound to a single transaction so the
	// overlap check and the write cannot interleave with concurrent requests.
	InTx(ctx context.Context, fn func(PriceHistoryRepository) error) error
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) InTx(ctx context.Context, fn func(PriceHistoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&priceHistoryRepo{db: tx})
	})
}

func (r *priceHistoryRepo) Create(ctx context.Context, h *model.PriceHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *priceHistoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error) {
	var h model.PriceHistory
	err := r.db.WithContext(ctx).
		Preload("Part.Product").
		Preload("Part.SupplierBranch.Supplier").
		Preload("CreatedBy").
		First(&h, "id = ?", id).Error
	return &h, err
}

func (r *priceHistoryRepo) List(ctx context.Context, filter dto.PriceHistoryFilter, today time.Time) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	q := r.db.WithContext(ctx).
		Preload("Part.Product").
		Preload("CreatedBy")

	if filter.Part != "" {
		q = q.Where("part_id = ?", filter.Part)
	}
	if filter.Product != "" {
		q = q.Where("part_id IN (?)",
			r.db.Model(&model.Part{}).Select("id").Where("product_id = ?", filter.Product))
	}
	switch filter.IsActive {
	case "true":
		q = q.Where("is_active = true")
	case "false":
		q = q.Where("is_active = false")
	}

	day := model.DateOnly(today)
	switch filter.Status {
	case "current":
		q = q.Where("is_active = true AND start_date <= ?", day).
			Where("end_date IS NULL OR end_date >= ?", day)
	case "future":
		q = q.Where("start_date > ?", day)
	case "expired":
		q = q.Where("end_date IS NOT NULL AND end_date < ?", day)
	}

	err := q.Order("start_date DESC, created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *priceHistoryRepo) Update(ctx context.Context, h *model.PriceHistory) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *priceHistoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PriceHistory{}, "id = ?", id).Error
}

func (r *priceHistoryRepo) ListActiveByPart(ctx context.Context, partID uuid.UUID, exclude uuid.UUID) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	q := r.db.WithContext(ctx).Where("part_id = ? AND is_active = true", partID)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *priceHistoryRepo) LatestStarted(ctx context.Context, partID uuid.UUID, today time.Time) (*model.PriceHistory, error) {
	var h model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("part_id = ? AND is_active = true AND start_date <= ?", partID, model.DateOnly(today)).
		Order("start_date DESC").
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *priceHistoryRepo) ListCurrent(ctx context.Context, partID uuid.UUID, today time.Time) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	day := model.DateOnly(today)
	err := r.db.WithContext(ctx).
		Where("part_id = ? AND is_active = true AND start_date <= ?", partID, day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *priceHistoryRepo) ListLapsedActive(ctx context.Context, today time.Time, limit int) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("is_active = true AND end_date IS NOT NULL AND end_date < ?", model.DateOnly(today)).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
