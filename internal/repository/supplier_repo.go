package repository

import (
	"context"

	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository covers the whole supplier aggregate: suppliers,
// branches, and contacts.
type SupplierRepository interface {
	// Suppliers
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter dto.SupplierFilter) ([]model.Supplier, error)
	Update(ctx context.Context, s *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	BranchCount(ctx context.Context, supplierID uuid.UUID) (int64, error)
	ActiveBranchCount(ctx context.Context, supplierID uuid.UUID) (int64, error)

	// Branches
	CreateBranch(ctx context.Context, b *model.SupplierBranch) error
	FindBranchByID(ctx context.Context, id uuid.UUID) (*model.SupplierBranch, error)
	ListBranches(ctx context.Context, filter dto.BranchFilter) ([]model.SupplierBranch, error)
	UpdateBranch(ctx context.Context, b *model.SupplierBranch) error
	DeleteBranch(ctx context.Context, id uuid.UUID) error

	// Contacts
	CreateContact(ctx context.Context, c *model.SupplierContact) error
	FindContactByID(ctx context.Context, id uuid.UUID) (*model.SupplierContact, error)
	ListContacts(ctx context.Context, filter dto.ContactFilter) ([]model.SupplierContact, error)
	UpdateContact(ctx context.Context, c *model.SupplierContact) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
	ClearPrimary(ctx context.Context, branchID uuid.UUID, exclude uuid.UUID) error

	// InTx runs fn against a repository bound to a single transaction, so the
	// clear-primary-then-set sequence cannot interleave with other writers.
	InTx(ctx context.Context, fn func(SupplierRepository) error) error
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) InTx(ctx context.Context, fn func(SupplierRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&supplierRepo{db: tx})
	})
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).Preload("Branches.Contacts").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context, filter dto.SupplierFilter) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	q := r.db.WithContext(ctx).Model(&model.Supplier{})

	switch filter.IsActive {
	case "true":
		q = q.Where("is_active = true")
	case "false":
		q = q.Where("is_active = false")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("supplier_code ILIKE ? OR company_name ILIKE ?", pattern, pattern)
	}

	err := q.Order("company_name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Supplier{}, "id = ?", id).Error
}

func (r *supplierRepo) BranchCount(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SupplierBranch{}).
		Where("supplier_id = ?", supplierID).Count(&n).Error
	return n, err
}

func (r *supplierRepo) ActiveBranchCount(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SupplierBranch{}).
		Where("supplier_id = ? AND is_active = true", supplierID).Count(&n).Error
	return n, err
}

// ─── Branches ────────────────────────────────────────────────────────────────

func (r *supplierRepo) CreateBranch(ctx context.Context, b *model.SupplierBranch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *supplierRepo) FindBranchByID(ctx context.Context, id uuid.UUID) (*model.SupplierBranch, error) {
	var b model.SupplierBranch
	err := r.db.WithContext(ctx).Preload("Supplier").Preload("Contacts").First(&b, "id = ?", id).Error
	return &b, err
}

func (r *supplierRepo) ListBranches(ctx context.Context, filter dto.BranchFilter) ([]model.SupplierBranch, error) {
	var branches []model.SupplierBranch
	q := r.db.WithContext(ctx).Preload("Supplier")

	if filter.Supplier != "" {
		q = q.Where("supplier_id = ?", filter.Supplier)
	}
	if filter.BranchType != "" {
		q = q.Where("branch_type = ?", filter.BranchType)
	}
	switch filter.IsActive {
	case "true":
		q = q.Where("is_active = true")
	case "false":
		q = q.Where("is_active = false")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Joins("JOIN suppliers ON suppliers.id = supplier_branches.supplier_id").
			Where("branch_code ILIKE ? OR branch_name ILIKE ? OR suppliers.company_name ILIKE ?",
				pattern, pattern, pattern)
	}

	err := q.Order("supplier_id, branch_type, branch_name").Find(&branches).Error
	return branches, err
}

func (r *supplierRepo) UpdateBranch(ctx context.Context, b *model.SupplierBranch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *supplierRepo) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SupplierBranch{}, "id = ?", id).Error
}

// ─── Contacts ────────────────────────────────────────────────────────────────

func (r *supplierRepo) CreateContact(ctx context.Context, c *model.SupplierContact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *supplierRepo) FindContactByID(ctx context.Context, id uuid.UUID) (*model.SupplierContact, error) {
	var c model.SupplierContact
	err := r.db.WithContext(ctx).Preload("Branch.Supplier").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *supplierRepo) ListContacts(ctx context.Context, filter dto.ContactFilter) ([]model.SupplierContact, error) {
	var contacts []model.SupplierContact
	q := r.db.WithContext(ctx).Preload("Branch.Supplier")

	if filter.Branch != "" {
		q = q.Where("branch_id = ?", filter.Branch)
	}
	if filter.Supplier != "" {
		q = q.Joins("JOIN supplier_branches ON supplier_branches.id = supplier_contacts.branch_id").
			Where("supplier_branches.supplier_id = ?", filter.Supplier)
	}
	if filter.Responsibility != "" {
		q = q.Where("responsibility = ?", filter.Responsibility)
	}
	switch filter.IsActive {
	case "true":
		q = q.Where("supplier_contacts.is_active = true")
	case "false":
		q = q.Where("supplier_contacts.is_active = false")
	}
	switch filter.IsPrimary {
	case "true":
		q = q.Where("is_primary = true")
	case "false":
		q = q.Where("is_primary = false")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR name_kana ILIKE ? OR email ILIKE ? OR department ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	err := q.Order("branch_id, is_primary DESC, name").Find(&contacts).Error
	return contacts, err
}

func (r *supplierRepo) UpdateContact(ctx context.Context, c *model.SupplierContact) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *supplierRepo) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SupplierContact{}, "id = ?", id).Error
}

func (r *supplierRepo) ClearPrimary(ctx context.Context, branchID uuid.UUID, exclude uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.SupplierContact{}).
		Where("branch_id = ? AND is_primary = true AND id <> ?", branchID, exclude).
		Update("is_primary", false).Error
}
