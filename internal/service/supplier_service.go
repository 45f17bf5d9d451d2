package service

import (
	"context"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/google/uuid"
)

// SupplierService manages the supplier aggregate: suppliers, their branches,
// and the contact people attached to branches.
type SupplierService interface {
	// Suppliers
	Create(ctx context.Context, actor model.Actor, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, filter dto.SupplierFilter) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// Branches
	CreateBranch(ctx context.Context, actor model.Actor, req dto.CreateBranchRequest) (*dto.BranchResponse, error)
	GetBranch(ctx context.Context, id uuid.UUID) (*dto.BranchResponse, error)
	ListBranches(ctx context.Context, filter dto.BranchFilter) ([]dto.BranchResponse, error)
	UpdateBranch(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error)
	DeleteBranch(ctx context.Context, actor model.Actor, id uuid.UUID) error

	// Contacts
	CreateContact(ctx context.Context, actor model.Actor, req dto.CreateContactRequest) (*dto.ContactResponse, error)
	GetContact(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error)
	ListContacts(ctx context.Context, filter dto.ContactFilter) ([]dto.ContactResponse, error)
	UpdateContact(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateContactRequest) (*dto.ContactResponse, error)
	DeleteContact(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type supplierService struct {
	suppliers repository.SupplierRepository
	parts     repository.PartRepository
}

func NewSupplierService(suppliers repository.SupplierRepository, parts repository.PartRepository) SupplierService {
	return &supplierService{suppliers: suppliers, parts: parts}
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

func (s *supplierService) Create(ctx context.Context, actor model.Actor, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		SupplierCode: req.SupplierCode,
		CompanyName:  req.CompanyName,
		Website:      req.Website,
		Notes:        req.Notes,
		IsActive:     true,
	}
	if req.IsActive != nil {
		sup.IsActive = *req.IsActive
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, translateDuplicate(err, "supplier_code or company_name")
	}
	return s.toSupplierResponse(ctx, sup)
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s.toSupplierResponse(ctx, sup)
}

func (s *supplierService) List(ctx context.Context, filter dto.SupplierFilter) ([]dto.SupplierResponse, error) {
	suppliers, err := s.suppliers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		r, err := s.toSupplierResponse(ctx, &suppliers[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *supplierService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if req.SupplierCode != nil {
		sup.SupplierCode = *req.SupplierCode
	}
	if req.CompanyName != nil {
		sup.CompanyName = *req.CompanyName
	}
	if req.Website != nil {
		sup.Website = req.Website
	}
	if req.Notes != nil {
		sup.Notes = req.Notes
	}
	if req.IsActive != nil {
		sup.IsActive = *req.IsActive
	}
	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, translateDuplicate(err, "supplier_code or company_name")
	}
	return s.toSupplierResponse(ctx, sup)
}

// Delete removes a supplier. Administrator only; refused while branches exist.
func (s *supplierService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	if _, err := s.suppliers.FindByID(ctx, id); err != nil {
		return notFoundOr(err)
	}
	n, err := s.suppliers.BranchCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apierror.DependencyExistsError{
			Detail: "cannot delete supplier: branches still exist",
		}
	}
	return s.suppliers.Delete(ctx, id)
}

// ─── Branches ────────────────────────────────────────────────────────────────

func (s *supplierService) CreateBranch(ctx context.Context, actor model.Actor, req dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.NewValidation("supplier", "invalid id")
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, apierror.NewValidation("supplier", "supplier does not exist")
	}

	branchType := req.BranchType
	if branchType == "" {
		branchType = model.BranchBranch
	}
	b := &model.SupplierBranch{
		SupplierID:  supplierID,
		BranchCode:  req.BranchCode,
		BranchName:  req.BranchName,
		BranchType:  branchType,
		PostalCode:  req.PostalCode,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		FaxNumber:   req.FaxNumber,
		Email:       req.Email,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := s.suppliers.CreateBranch(ctx, b); err != nil {
		return nil, translateDuplicate(err, "branch_code or branch_name")
	}
	return s.branchResponseByID(ctx, b.ID)
}

func (s *supplierService) GetBranch(ctx context.Context, id uuid.UUID) (*dto.BranchResponse, error) {
	return s.branchResponseByID(ctx, id)
}

func (s *supplierService) ListBranches(ctx context.Context, filter dto.BranchFilter) ([]dto.BranchResponse, error) {
	branches, err := s.suppliers.ListBranches(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.BranchResponse, len(branches))
	for i := range branches {
		resp[i] = toBranchResponse(&branches[i])
	}
	return resp, nil
}

func (s *supplierService) UpdateBranch(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	b, err := s.suppliers.FindBranchByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if req.BranchCode != nil {
		b.BranchCode = *req.BranchCode
	}
	if req.BranchName != nil {
		b.BranchName = *req.BranchName
	}
	if req.BranchType != nil {
		b.BranchType = *req.BranchType
	}
	if req.PostalCode != nil {
		b.PostalCode = req.PostalCode
	}
	if req.Address != nil {
		b.Address = req.Address
	}
	if req.PhoneNumber != nil {
		b.PhoneNumber = req.PhoneNumber
	}
	if req.FaxNumber != nil {
		b.FaxNumber = req.FaxNumber
	}
	if req.Email != nil {
		b.Email = req.Email
	}
	if req.Notes != nil {
		b.Notes = req.Notes
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := s.suppliers.UpdateBranch(ctx, b); err != nil {
		return nil, translateDuplicate(err, "branch_code or branch_name")
	}
	return s.branchResponseByID(ctx, b.ID)
}

// DeleteBranch removes a branch. Administrator only; refused while active
// parts are sourced from it.
func (s *supplierService) DeleteBranch(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	if _, err := s.suppliers.FindBranchByID(ctx, id); err != nil {
		return notFoundOr(err)
	}
	n, err := s.parts.ActiveCountByBranch(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apierror.DependencyExistsError{
			Detail: "cannot delete branch: active parts are sourced from it",
		}
	}
	return s.suppliers.DeleteBranch(ctx, id)
}

// ─── Contacts ────────────────────────────────────────────────────────────────

func (s *supplierService) CreateContact(ctx context.Context, actor model.Actor, req dto.CreateContactRequest) (*dto.ContactResponse, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apierror.NewValidation("branch", "invalid id")
	}
	if _, err := s.suppliers.FindBranchByID(ctx, branchID); err != nil {
		return nil, apierror.NewValidation("branch", "branch does not exist")
	}

	responsibility := req.Responsibility
	if responsibility == "" {
		responsibility = model.RespGeneral
	}
	c := &model.SupplierContact{
		BranchID:        branchID,
		Name:            req.Name,
		NameKana:        req.NameKana,
		Department:      req.Department,
		Position:        req.Position,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		ExtensionNumber: req.ExtensionNumber,
		MobileNumber:    req.MobileNumber,
		Responsibility:  responsibility,
		IsPrimary:       req.IsPrimary,
		IsActive:        true,
		Notes:           req.Notes,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if !c.HasReachableAddress() {
		return nil, apierror.NewValidation("email", "at least one of email, phone_number, or mobile_number is required")
	}

	// Primary exclusivity: demote the previous primary and insert in one
	// transaction so the branch never carries two primaries.
	err = s.suppliers.InTx(ctx, func(tx repository.SupplierRepository) error {
		if c.IsPrimary {
			if err := tx.ClearPrimary(ctx, branchID, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.CreateContact(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return s.contactResponseByID(ctx, c.ID)
}

func (s *supplierService) GetContact(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error) {
	return s.contactResponseByID(ctx, id)
}

func (s *supplierService) ListContacts(ctx context.Context, filter dto.ContactFilter) ([]dto.ContactResponse, error) {
	contacts, err := s.suppliers.ListContacts(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ContactResponse, len(contacts))
	for i := range contacts {
		resp[i] = toContactResponse(&contacts[i])
	}
	return resp, nil
}

func (s *supplierService) UpdateContact(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	c, err := s.suppliers.FindContactByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.NameKana != nil {
		c.NameKana = req.NameKana
	}
	if req.Department != nil {
		c.Department = req.Department
	}
	if req.Position != nil {
		c.Position = req.Position
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.PhoneNumber != nil {
		c.PhoneNumber = req.PhoneNumber
	}
	if req.ExtensionNumber != nil {
		c.ExtensionNumber = req.ExtensionNumber
	}
	if req.MobileNumber != nil {
		c.MobileNumber = req.MobileNumber
	}
	if req.Responsibility != nil {
		c.Responsibility = *req.Responsibility
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.IsPrimary != nil {
		c.IsPrimary = *req.IsPrimary
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if !c.HasReachableAddress() {
		return nil, apierror.NewValidation("email", "at least one of email, phone_number, or mobile_number is required")
	}

	err = s.suppliers.InTx(ctx, func(tx repository.SupplierRepository) error {
		if c.IsPrimary {
			if err := tx.ClearPrimary(ctx, c.BranchID, c.ID); err != nil {
				return err
			}
		}
		return tx.UpdateContact(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return s.contactResponseByID(ctx, c.ID)
}

// DeleteContact removes a contact. Administrator only.
func (s *supplierService) DeleteContact(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	if _, err := s.suppliers.FindContactByID(ctx, id); err != nil {
		return notFoundOr(err)
	}
	return s.suppliers.DeleteContact(ctx, id)
}

// ─── Response mapping ────────────────────────────────────────────────────────

func (s *supplierService) toSupplierResponse(ctx context.Context, sup *model.Supplier) (*dto.SupplierResponse, error) {
	n, err := s.suppliers.ActiveBranchCount(ctx, sup.ID)
	if err != nil {
		return nil, err
	}
	return &dto.SupplierResponse{
		ID:                  sup.ID.String(),
		SupplierCode:        sup.SupplierCode,
		CompanyName:         sup.CompanyName,
		Website:             sup.Website,
		Notes:               sup.Notes,
		IsActive:            sup.IsActive,
		ActiveBranchesCount: n,
		CreatedAt:           sup.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           sup.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *supplierService) branchResponseByID(ctx context.Context, id uuid.UUID) (*dto.BranchResponse, error) {
	b, err := s.suppliers.FindBranchByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	resp := toBranchResponse(b)
	return &resp, nil
}

func toBranchResponse(b *model.SupplierBranch) dto.BranchResponse {
	resp := dto.BranchResponse{
		ID:          b.ID.String(),
		SupplierID:  b.SupplierID.String(),
		BranchCode:  b.BranchCode,
		BranchName:  b.BranchName,
		BranchType:  b.BranchType,
		DisplayName: b.DisplayName(),
		PostalCode:  b.PostalCode,
		Address:     b.Address,
		PhoneNumber: b.PhoneNumber,
		FaxNumber:   b.FaxNumber,
		Email:       b.Email,
		Notes:       b.Notes,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if b.Supplier != nil {
		resp.SupplierName = b.Supplier.CompanyName
	}
	return resp
}

func (s *supplierService) contactResponseByID(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error) {
	c, err := s.suppliers.FindContactByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	resp := toContactResponse(c)
	return &resp, nil
}

func toContactResponse(c *model.SupplierContact) dto.ContactResponse {
	resp := dto.ContactResponse{
		ID:              c.ID.String(),
		BranchID:        c.BranchID.String(),
		Name:            c.Name,
		NameKana:        c.NameKana,
		Department:      c.Department,
		Position:        c.Position,
		Email:           c.Email,
		PhoneNumber:     c.PhoneNumber,
		ExtensionNumber: c.ExtensionNumber,
		MobileNumber:    c.MobileNumber,
		Responsibility:  c.Responsibility,
		IsPrimary:       c.IsPrimary,
		IsActive:        c.IsActive,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if c.Branch != nil {
		resp.BranchName = c.Branch.BranchName
		if c.Branch.Supplier != nil {
			resp.SupplierName = c.Branch.Supplier.CompanyName
		}
	}
	return resp
}
