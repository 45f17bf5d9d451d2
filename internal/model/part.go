package model

import (
	"time"

	"github.com/google/uuid"
)

// Part identifies a component sourced from one supplier branch for one
// product. The triple (product, supplier branch, part number) is unique.
type Part struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID            uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_part_triple"`
	SupplierBranchID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_part_triple"`
	PartNumber           string    `gorm:"not null;index;uniqueIndex:idx_part_triple"`
	PartName             string    `gorm:"not null"`
	Specification        string
	Unit                 string `gorm:"not null;default:'piece'"`
	MinimumOrderQuantity int    `gorm:"not null;default:1"`
	LeadTimeDays         *int
	IsActive             bool `gorm:"not null;default:true"`
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CreatedByID          *uuid.UUID `gorm:"type:uuid"`

	Product        *Product        `gorm:"foreignKey:ProductID"`
	SupplierBranch *SupplierBranch `gorm:"foreignKey:SupplierBranchID"`
	CreatedBy      *User           `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	PriceHistories []PriceHistory  `gorm:"foreignKey:PartID;constraint:OnDelete:CASCADE"`
}

func (Part) TableName() string { return "parts" }
