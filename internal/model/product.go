package model

import "time"

// ProductCategory groups products stocked in machines.
type ProductCategory string

const (
	ProductCategorySnacks    ProductCategory = "snacks"
	ProductCategoryBeverages ProductCategory = "beverages"
	ProductCategoryCandy     ProductCategory = "candy"
	ProductCategoryHealthy   ProductCategory = "healthy"
	ProductCategoryFresh     ProductCategory = "fresh"
)

// ProductCategories lists every product category.
var ProductCategories = []string{
	string(ProductCategorySnacks),
	string(ProductCategoryBeverages),
	string(ProductCategoryCandy),
	string(ProductCategoryHealthy),
	string(ProductCategoryFresh),
}

// Product is an item that can be stocked in a machine.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     ProductCategory `json:"category"`
	Brand        string          `json:"brand"`
	ImageURL     *string         `json:"image_url,omitempty"`
	DisplayOrder int             `json:"display_order"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description" binding:"max=5000"`
	Category     ProductCategory `json:"category" binding:"required,oneof=snacks beverages candy healthy fresh"`
	Brand        string          `json:"brand" binding:"max=100"`
	ImageURL     *string         `json:"image_url" binding:"omitempty,max=500"`
	DisplayOrder int             `json:"display_order" binding:"min=0"`
	IsActive     *bool           `json:"is_active"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=5000"`
	Category     *ProductCategory `json:"category" binding:"omitempty,oneof=snacks beverages candy healthy fresh"`
	Brand        *string          `json:"brand" binding:"omitempty,max=100"`
	ImageURL     *string          `json:"image_url" binding:"omitempty,max=500"`
	DisplayOrder *int             `json:"display_order" binding:"omitempty,min=0"`
	IsActive     *bool            `json:"is_active"`
}
