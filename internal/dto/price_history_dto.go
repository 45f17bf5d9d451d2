package dto

import "github.com/shopspring/decimal"

type CreatePriceHistoryRequest struct {
	PartID       string           `json:"part"          validate:"required,uuid"`
	Price        *decimal.Decimal `json:"price"         validate:"omitempty,min=0"`
	StartDate    string           `json:"start_date"    validate:"required,datetime=2006-01-02"`
	EndDate      *string          `json:"end_date"      validate:"omitempty,datetime=2006-01-02"`
	IsActive     *bool            `json:"is_active"`
	ChangeReason string           `json:"change_reason"`
	Notes        string           `json:"notes"`
}

type UpdatePriceHistoryRequest struct {
	Price        *decimal.Decimal `json:"price"         validate:"omitempty,min=0"`
	StartDate    *string          `json:"start_date"    validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string          `json:"end_date"      validate:"omitempty,datetime=2006-01-02"`
	ClearEndDate bool             `json:"clear_end_date"`
	IsActive     *bool            `json:"is_active"`
	ChangeReason *string          `json:"change_reason"`
	Notes        *string          `json:"notes"`
}

type PriceHistoryFilter struct {
	Part     string `form:"part"`
	Product  string `form:"product"`
	IsActive string `form:"is_active"`
	Status   string `form:"status"` // current | future | expired
}

// PriceHistoryItem is the list/embedded representation.
type PriceHistoryItem struct {
	ID            string          `json:"id"`
	Price         decimal.Decimal `json:"price"`
	StartDate     string          `json:"start_date"`
	EndDate       *string         `json:"end_date"`
	IsActive      bool            `json:"is_active"`
	IsCurrent     bool            `json:"is_current"`
	IsFuture      bool            `json:"is_future"`
	IsExpired     bool            `json:"is_expired"`
	ChangeReason  string          `json:"change_reason"`
	CreatedAt     string          `json:"created_at"`
	CreatedByName *string         `json:"created_by_name,omitempty"`
}

// PriceHistoryResponse is the detail representation.
type PriceHistoryResponse struct {
	PriceHistoryItem
	PartID        string  `json:"part"`
	PartNumber    string  `json:"part_number"`
	PartName      string  `json:"part_name"`
	QuoteKey      *string `json:"quote_key,omitempty"`
	QuoteFileName *string `json:"quote_file_name,omitempty"`
	Notes         string  `json:"notes"`
	UpdatedAt     string  `json:"updated_at"`
}
