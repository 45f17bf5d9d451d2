package dto

// ─── Supplier ────────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	SupplierCode string  `json:"supplier_code" validate:"required,min=1,max=50"`
	CompanyName  string  `json:"company_name"  validate:"required,min=1,max=200"`
	Website      *string `json:"website"       validate:"omitempty,url"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

type UpdateSupplierRequest struct {
	SupplierCode *string `json:"supplier_code" validate:"omitempty,min=1,max=50"`
	CompanyName  *string `json:"company_name"  validate:"omitempty,min=1,max=200"`
	Website      *string `json:"website"       validate:"omitempty,url"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

type SupplierFilter struct {
	IsActive string `form:"is_active"` // "true" | "false" | "" (all)
	Search   string `form:"search"`
}

type SupplierResponse struct {
	ID                  string  `json:"id"`
	SupplierCode        string  `json:"supplier_code"`
	CompanyName         string  `json:"company_name"`
	Website             *string `json:"website,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	IsActive            bool    `json:"is_active"`
	ActiveBranchesCount int64   `json:"active_branches_count"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// ─── SupplierBranch ──────────────────────────────────────────────────────────

type CreateBranchRequest struct {
	SupplierID  string  `json:"supplier"     validate:"required,uuid"`
	BranchCode  string  `json:"branch_code"  validate:"required,min=1,max=50"`
	BranchName  string  `json:"branch_name"  validate:"required,min=1,max=200"`
	BranchType  string  `json:"branch_type"  validate:"omitempty,oneof=HEAD_OFFICE BRANCH SALES_OFFICE FACTORY WAREHOUSE OTHER"`
	PostalCode  *string `json:"postal_code"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	FaxNumber   *string `json:"fax_number"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateBranchRequest struct {
	BranchCode  *string `json:"branch_code"  validate:"omitempty,min=1,max=50"`
	BranchName  *string `json:"branch_name"  validate:"omitempty,min=1,max=200"`
	BranchType  *string `json:"branch_type"  validate:"omitempty,oneof=HEAD_OFFICE BRANCH SALES_OFFICE FACTORY WAREHOUSE OTHER"`
	PostalCode  *string `json:"postal_code"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	FaxNumber   *string `json:"fax_number"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

type BranchFilter struct {
	Supplier   string `form:"supplier"`
	BranchType string `form:"branch_type"`
	IsActive   string `form:"is_active"`
	Search     string `form:"search"`
}

type BranchResponse struct {
	ID           string  `json:"id"`
	SupplierID   string  `json:"supplier"`
	SupplierName string  `json:"supplier_name"`
	BranchCode   string  `json:"branch_code"`
	BranchName   string  `json:"branch_name"`
	BranchType   string  `json:"branch_type"`
	DisplayName  string  `json:"display_name"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Address      *string `json:"address,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	FaxNumber    *string `json:"fax_number,omitempty"`
	Email        *string `json:"email,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ─── SupplierContact ─────────────────────────────────────────────────────────

type CreateContactRequest struct {
	BranchID        string  `json:"branch"           validate:"required,uuid"`
	Name            string  `json:"name"             validate:"required,min=1,max=100"`
	NameKana        *string `json:"name_kana"`
	Department      *string `json:"department"`
	Position        *string `json:"position"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	PhoneNumber     *string `json:"phone_number"`
	ExtensionNumber *string `json:"extension_number"`
	MobileNumber    *string `json:"mobile_number"`
	Responsibility  string  `json:"responsibility"   validate:"omitempty,oneof=QUOTATION ORDER DELIVERY TECHNICAL QUALITY ACCOUNTING GENERAL OTHER"`
	IsPrimary       bool    `json:"is_primary"`
	IsActive        *bool   `json:"is_active"`
	Notes           *string `json:"notes"`
}

type UpdateContactRequest struct {
	Name            *string `json:"name"             validate:"omitempty,min=1,max=100"`
	NameKana        *string `json:"name_kana"`
	Department      *string `json:"department"`
	Position        *string `json:"position"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	PhoneNumber     *string `json:"phone_number"`
	ExtensionNumber *string `json:"extension_number"`
	MobileNumber    *string `json:"mobile_number"`
	Responsibility  *string `json:"responsibility"   validate:"omitempty,oneof=QUOTATION ORDER DELIVERY TECHNICAL QUALITY ACCOUNTING GENERAL OTHER"`
	IsPrimary       *bool   `json:"is_primary"`
	IsActive        *bool   `json:"is_active"`
	Notes           *string `json:"notes"`
}

type ContactFilter struct {
	Branch         string `form:"branch"`
	Supplier       string `form:"supplier"`
	Responsibility string `form:"responsibility"`
	IsActive       string `form:"is_active"`
	IsPrimary      string `form:"is_primary"`
	Search         string `form:"search"`
}

type ContactResponse struct {
	ID              string  `json:"id"`
	BranchID        string  `json:"branch"`
	BranchName      string  `json:"branch_name"`
	SupplierName    string  `json:"supplier_name"`
	Name            string  `json:"name"`
	NameKana        *string `json:"name_kana,omitempty"`
	Department      *string `json:"department,omitempty"`
	Position        *string `json:"position,omitempty"`
	Email           *string `json:"email,omitempty"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	ExtensionNumber *string `json:"extension_number,omitempty"`
	MobileNumber    *string `json:"mobile_number,omitempty"`
	Responsibility  string  `json:"responsibility"`
	IsPrimary       bool    `json:"is_primary"`
	IsActive        bool    `json:"is_active"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
