package repository

import (
	"context"

	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartRepository defines the data access contract for parts.
type PartRepository interface {
	Create(ctx context.Context, p *model.Part) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error)
	List(ctx context.Context, filter dto.PartFilter) ([]model.Part, error)
	Update(ctx context.Context, p *model.Part) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByTriple counts parts matching the (product, branch, part number)
	// uniqueness triple, excluding the given id (uuid.Nil = exclude nothing).
	CountByTriple(ctx context.Context, productID, branchID uuid.UUID, partNumber string, exclude uuid.UUID) (int64, error)
	// PriceHistoryCount counts price rows referencing a part, active or not.
	PriceHistoryCount(ctx context.Context, partID uuid.UUID) (int64, error)
	ActiveCountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	ActiveCountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)

	// InTx runs fn against a repository bound to a single transaction so the
	// uniqueness check and the write cannot interleave with concurrent requests.
	InTx(ctx context.Context, fn func(PartRepository) error) error
}

type partRepo struct{ db *gorm.DB }

func NewPartRepository(db *gorm.DB) PartRepository { return &partRepo{db: db} }

func (r *partRepo) InTx(ctx context.Context, fn func(PartRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&partRepo{db: tx})
	})
}

func (r *partRepo) Create(ctx context.Context, p *model.Part) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	var p model.Part
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("SupplierBranch.Supplier").
		Preload("CreatedBy").
		Preload("PriceHistories", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date DESC, created_at DESC")
		}).
		Preload("PriceHistories.CreatedBy").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *partRepo) List(ctx context.Context, filter dto.PartFilter) ([]model.Part, error) {
	var parts []model.Part
	q := r.db.WithContext(ctx).
		Preload("Product").
		Preload("SupplierBranch.Supplier")

	if filter.Product != "" {
		q = q.Where("product_id = ?", filter.Product)
	}
	if filter.Branch != "" {
		q = q.Where("supplier_branch_id = ?", filter.Branch)
	}
	if filter.Supplier != "" {
		q = q.Where("supplier_branch_id IN (?)",
			r.db.Model(&model.SupplierBranch{}).Select("id").Where("supplier_id = ?", filter.Supplier))
	}
	switch filter.IsActive {
	case "true":
		q = q.Where("parts.is_active = true")
	case "false":
		q = q.Where("parts.is_active = false")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(`part_number ILIKE ? OR part_name ILIKE ?
			OR product_id IN (?)
			OR supplier_branch_id IN (?)`,
			pattern, pattern,
			r.db.Model(&model.Product{}).Select("id").
				Where("product_number ILIKE ? OR product_name ILIKE ?", pattern, pattern),
			r.db.Model(&model.SupplierBranch{}).Select("supplier_branches.id").
				Joins("JOIN suppliers ON suppliers.id = supplier_branches.supplier_id").
				Where("suppliers.company_name ILIKE ?", pattern))
	}

	err := q.Order("part_number ASC").Find(&parts).Error
	return parts, err
}

func (r *partRepo) Update(ctx context.Context, p *model.Part) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *partRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Part{}, "id = ?", id).Error
}

func (r *partRepo) CountByTriple(ctx context.Context, productID, branchID uuid.UUID, partNumber string, exclude uuid.UUID) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("product_id = ? AND supplier_branch_id = ? AND part_number = ?", productID, branchID, partNumber)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *partRepo) PriceHistoryCount(ctx context.Context, partID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PriceHistory{}).
		Where("part_id = ?", partID).Count(&n).Error
	return n, err
}

func (r *partRepo) ActiveCountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("product_id = ? AND is_active = true", productID).Count(&n).Error
	return n, err
}

func (r *partRepo) ActiveCountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("supplier_branch_id = ? AND is_active = true", branchID).Count(&n).Error
	return n, err
}
