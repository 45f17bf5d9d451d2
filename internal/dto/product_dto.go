package dto

type CreateProductRequest struct {
	ProductNumber string `json:"product_number" validate:"required,min=1,max=100"`
	ProductName   string `json:"product_name"   validate:"required,min=1,max=200"`
	Description   string `json:"description"`
	Status        string `json:"status"         validate:"omitempty,oneof=ACTIVE DISCONTINUED DEVELOPMENT"`
}

type UpdateProductRequest struct {
	ProductNumber *string `json:"product_number" validate:"omitempty,min=1,max=100"`
	ProductName   *string `json:"product_name"   validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description"`
	Status        *string `json:"status"         validate:"omitempty,oneof=ACTIVE DISCONTINUED DEVELOPMENT"`
}

type ProductFilter struct {
	Status string `form:"status"`
	Search string `form:"search"`
}

type ProductResponse struct {
	ID            string  `json:"id"`
	ProductNumber string  `json:"product_number"`
	ProductName   string  `json:"product_name"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	PartsCount    int64   `json:"parts_count"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	CreatedByName *string `json:"created_by_name,omitempty"`
}
