package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	ProductCode       string          `json:"product_code" binding:"required,min=1,max=50"`
	ProductName       string          `json:"product_name" binding:"required,min=1,max=255"`
	StartDate         time.Time       `json:"start_date" binding:"required"`
	EndDate           time.Time       `json:"end_date" binding:"required"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Unit              string          `json:"unit" binding:"max=20"`
	Description       string          `json:"description"`
}

// UpdateProductRequest represents a partial update of a product
type UpdateProductRequest struct {
	ProductName       *string          `json:"product_name" binding:"omitempty,min=1,max=255"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	ProductCategoryID *uuid.UUID       `json:"product_category_id"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	Unit              *string          `json:"unit" binding:"omitempty,max=20"`
	Description       *string          `json:"description"`
}

// ListFilter narrows the product listing
type ListFilter struct {
	Keyword    string     `form:"keyword"`
	CategoryID *uuid.UUID `form:"category_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductCode       string          `json:"product_code"`
	ProductName       string          `json:"product_name"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Unit              string          `json:"unit"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ListResponse is a page of the product listing
type ListResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// CategoryRequest represents a request to create or rename a category
type CategoryRequest struct {
	ProductCategoryName string `json:"product_category_name" binding:"required,min=1,max=255"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID                  uuid.UUID `json:"id"`
	ProductCategoryName string    `json:"product_category_name"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToProductResponse maps a product to its API representation
func ToProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:                p.ID,
		ProductCode:       p.ProductCode,
		ProductName:       p.ProductName,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		ProductCategoryID: p.ProductCategoryID,
		UnitPrice:         p.UnitPrice,
		Unit:              p.Unit,
		Description:       p.Description,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToCategoryResponse maps a category to its API representation
func ToCategoryResponse(c *catalog.ProductCategory) *CategoryResponse {
	return &CategoryResponse{
		ID:                  c.ID,
		ProductCategoryName: c.ProductCategoryName,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}
