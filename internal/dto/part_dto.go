package dto

import "github.com/shopspring/decimal"

type CreatePartRequest struct {
	ProductID            string  `json:"product"                validate:"required,uuid"`
	SupplierBranchID     string  `json:"supplier_branch"        validate:"required,uuid"`
	PartNumber           string  `json:"part_number"            validate:"required,min=1,max=100"`
	PartName             string  `json:"part_name"              validate:"required,min=1,max=200"`
	Specification        string  `json:"specification"`
	Unit                 string  `json:"unit"                   validate:"omitempty,max=20"`
	MinimumOrderQuantity *int    `json:"minimum_order_quantity" validate:"omitempty,min=1"`
	LeadTimeDays         *int    `json:"lead_time_days"         validate:"omitempty,min=0"`
	IsActive             *bool   `json:"is_active"`
	Notes                string  `json:"notes"`
}

type UpdatePartRequest struct {
	ProductID            *string `json:"product"                validate:"omitempty,uuid"`
	SupplierBranchID     *string `json:"supplier_branch"        validate:"omitempty,uuid"`
	PartNumber           *string `json:"part_number"            validate:"omitempty,min=1,max=100"`
	PartName             *string `json:"part_name"              validate:"omitempty,min=1,max=200"`
	Specification        *string `json:"specification"`
	Unit                 *string `json:"unit"                   validate:"omitempty,max=20"`
	MinimumOrderQuantity *int    `json:"minimum_order_quantity" validate:"omitempty,min=1"`
	LeadTimeDays         *int    `json:"lead_time_days"         validate:"omitempty,min=0"`
	IsActive             *bool   `json:"is_active"`
	Notes                *string `json:"notes"`
}

type PartFilter struct {
	Product  string `form:"product"`
	Supplier string `form:"supplier"`
	Branch   string `form:"branch"`
	IsActive string `form:"is_active"`
	Search   string `form:"search"`
}

type PartResponse struct {
	ID                      string               `json:"id"`
	ProductID               string               `json:"product"`
	ProductNumber           string               `json:"product_number"`
	ProductName             string               `json:"product_name"`
	SupplierBranchID        string               `json:"supplier_branch"`
	SupplierName            string               `json:"supplier_name"`
	BranchName              string               `json:"branch_name"`
	PartNumber              string               `json:"part_number"`
	PartName                string               `json:"part_name"`
	Specification           string               `json:"specification"`
	Unit                    string               `json:"unit"`
	MinimumOrderQuantity    int                  `json:"minimum_order_quantity"`
	LeadTimeDays            *int                 `json:"lead_time_days,omitempty"`
	CurrentPrice            *decimal.Decimal     `json:"current_price"`
	HasMultipleActivePrices bool                 `json:"has_multiple_active_prices"`
	PriceHistoryCount       int64                `json:"price_history_count"`
	PriceHistories          []PriceHistoryItem   `json:"price_histories,omitempty"`
	IsActive                bool                 `json:"is_active"`
	Notes                   string               `json:"notes"`
	CreatedAt               string               `json:"created_at"`
	UpdatedAt               string               `json:"updated_at"`
	CreatedByName           *string              `json:"created_by_name,omitempty"`
}

// CurrentPriceResponse is the payload of the cached price lookup endpoint.
type CurrentPriceResponse struct {
	PartID       string           `json:"part"`
	PartNumber   string           `json:"part_number"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
	AsOf         string           `json:"as_of"`
}
