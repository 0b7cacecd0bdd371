package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// Product represents a sellable item with a validity window.
// The same product code may repeat over disjoint windows;
// uniqueness is on (tenant_id, product_code, start_date, end_date).
type Product struct {
	shared.TenantEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_code_period,priority:1"`
	ProductCode       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code_period,priority:2"`
	ProductName       string          `gorm:"type:varchar(255);not null"`
	StartDate         time.Time       `gorm:"not null;uniqueIndex:idx_product_code_period,priority:3"`
	EndDate           time.Time       `gorm:"not null;uniqueIndex:idx_product_code_period,priority:4"`
	ProductCategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Unit              string          `gorm:"type:varchar(20)"`
	Description       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductCategory groups products within a tenant.
// Unique on (tenant_id, product_category_name).
type ProductCategory struct {
	shared.TenantEntity
	TenantID            uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductCategoryName string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

var productCodeRegex = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// NewProduct creates a product with its validity window
func NewProduct(tenantID, createdBy uuid.UUID, code, name string, startDate, endDate time.Time, unitPrice decimal.Decimal) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("product_code", "cannot be empty")
	}
	if !productCodeRegex.MatchString(code) {
		return nil, shared.NewValidationError("product_code", "may only contain letters, numbers, underscores and hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("product_name", "cannot be empty")
	}
	if endDate.Before(startDate) {
		return nil, shared.NewValidationError("end_date", "must not be before start_date")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit_price", "must not be negative")
	}

	return &Product{
		TenantEntity: shared.NewTenantEntity(createdBy),
		TenantID:     tenantID,
		ProductCode:  code,
		ProductName:  name,
		StartDate:    startDate,
		EndDate:      endDate,
		UnitPrice:    unitPrice.Round(2),
	}, nil
}

// SetUnitPrice replaces the unit price, kept at two fractional digits
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("unit_price", "must not be negative")
	}
	p.UnitPrice = price.Round(2)
	return nil
}

// SetValidity replaces the validity window
func (p *Product) SetValidity(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return shared.NewValidationError("end_date", "must not be before start_date")
	}
	p.StartDate = startDate
	p.EndDate = endDate
	return nil
}

// IsValidOn reports whether the product is sellable on the given date
func (p *Product) IsValidOn(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// NewProductCategory creates a category within a tenant
func NewProductCategory(tenantID, createdBy uuid.UUID, name string) (*ProductCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("product_category_name", "cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewValidationError("product_category_name", "cannot exceed 255 characters")
	}
	return &ProductCategory{
		TenantEntity:        shared.NewTenantEntity(createdBy),
		TenantID:            tenantID,
		ProductCategoryName: name,
	}, nil
}
