package model

import (
	"time"

	"github.com/google/uuid"
)

// Product status choices.
const (
	ProductActive       = "ACTIVE"
	ProductDiscontinued = "DISCONTINUED"
	ProductDevelopment  = "DEVELOPMENT"
)

// Product is a finished good that parts are sourced for.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductNumber string    `gorm:"uniqueIndex;not null"`
	ProductName   string    `gorm:"not null"`
	Description   string
	Status        string `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedByID   *uuid.UUID `gorm:"type:uuid"`

	CreatedBy *User  `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	Parts     []Part `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }
