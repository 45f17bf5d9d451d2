package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch type choices.
const (
	BranchHeadOffice  = "HEAD_OFFICE"
	BranchBranch      = "BRANCH"
	BranchSalesOffice = "SALES_OFFICE"
	BranchFactory     = "FACTORY"
	BranchWarehouse   = "WAREHOUSE"
	BranchOther       = "OTHER"
)

// Contact responsibility choices.
const (
	RespQuotation  = "QUOTATION"
	RespOrder      = "ORDER"
	RespDelivery   = "DELIVERY"
	RespTechnical  = "TECHNICAL"
	RespQuality    = "QUALITY"
	RespAccounting = "ACCOUNTING"
	RespGeneral    = "GENERAL"
	RespOther      = "OTHER"
)

// Supplier is the top level of the supplier hierarchy.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierCode string    `gorm:"uniqueIndex;not null"`
	CompanyName  string    `gorm:"uniqueIndex;not null"`
	Website      *string
	Notes        *string
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Branches []SupplierBranch `gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string { return "suppliers" }

// SupplierBranch is a physical location/unit belonging to a Supplier.
// Parts reference branches, not suppliers directly.
type SupplierBranch struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_supplier_branch_name"`
	BranchCode  string    `gorm:"uniqueIndex;not null"`
	BranchName  string    `gorm:"not null;uniqueIndex:idx_supplier_branch_name"`
	BranchType  string    `gorm:"type:varchar(20);not null;default:'BRANCH'"`
	PostalCode  *string
	Address     *string
	PhoneNumber *string
	FaxNumber   *string
	Email       *string
	Notes       *string
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Supplier *Supplier         `gorm:"foreignKey:SupplierID"`
	Contacts []SupplierContact `gorm:"foreignKey:BranchID"`
	Parts    []Part            `gorm:"foreignKey:SupplierBranchID"`
}

func (SupplierBranch) TableName() string { return "supplier_branches" }

// DisplayName is the branch name prefixed with the company name.
func (b *SupplierBranch) DisplayName() string {
	if b.Supplier != nil {
		return b.Supplier.CompanyName + " " + b.BranchName
	}
	return b.BranchName
}

// SupplierContact is a contact person attached to one branch.
// At most one contact per branch carries IsPrimary.
type SupplierContact struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"not null"`
	NameKana        *string
	Department      *string
	Position        *string
	Email           *string
	PhoneNumber     *string
	ExtensionNumber *string
	MobileNumber    *string
	Responsibility  string `gorm:"type:varchar(20);not null;default:'GENERAL'"`
	IsPrimary       bool   `gorm:"not null;default:false"`
	IsActive        bool   `gorm:"not null;default:true"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Branch *SupplierBranch `gorm:"foreignKey:BranchID"`
}

func (SupplierContact) TableName() string { return "supplier_contacts" }

// HasReachableAddress reports whether the contact carries at least one of
// email, phone, or mobile. A contact without any of them is unusable.
func (c *SupplierContact) HasReachableAddress() bool {
	return (c.Email != nil && *c.Email != "") ||
		(c.PhoneNumber != nil && *c.PhoneNumber != "") ||
		(c.MobileNumber != nil && *c.MobileNumber != "")
}
