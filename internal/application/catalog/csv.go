package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

const csvDateLayout = "2006-01-02"

// productColumn pairs the on-file label with the canonical field name
type productColumn struct {
	Label string
	Field string
}

var productColumns = []productColumn{
	{"商品コード", "product_code"},
	{"商品名", "product_name"},
	{"商品カテゴリ", "product_category"},
	{"適用開始日", "start_date"},
	{"適用終了日", "end_date"},
	{"単価", "unit_price"},
	{"単位", "unit"},
	{"説明", "description"},
}

var productHeaderSpec = csvio.HeaderSpec{
	Aliases:  productAliases(),
	Required: []string{"product_code", "product_name", "start_date", "end_date", "unit_price"},
}

func productAliases() map[string]string {
	aliases := make(map[string]string, len(productColumns)*2)
	for _, c := range productColumns {
		aliases[c.Label] = c.Field
		aliases[c.Field] = c.Field
	}
	return aliases
}

// ImportResult summarizes a successful CSV import
type ImportResult struct {
	Products int `json:"products"`
}

// ExportResult carries an export payload and its disposition
type ExportResult struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"-"`
	RowCount  int    `json:"row_count"`
	Truncated bool   `json:"truncated"`
}

// CSVService imports and exports the product master table
type CSVService struct {
	products      catalog.ProductRepository
	categories    catalog.CategoryRepository
	maxFileSize   int64
	maxExportRows int
}

// NewCSVService creates a new product CSVService
func NewCSVService(products catalog.ProductRepository, categories catalog.CategoryRepository, maxFileSize int64, maxExportRows int) *CSVService {
	return &CSVService{
		products:      products,
		categories:    categories,
		maxFileSize:   maxFileSize,
		maxExportRows: maxExportRows,
	}
}

// Import parses a product CSV and creates every row it describes.
// Any failing row rejects the whole file.
func (s *CSVService) Import(ctx context.Context, caller identity.Caller, filename string, data []byte) (*ImportResult, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}
	if err := csvio.CheckFile(filename, int64(len(data)), s.maxFileSize); err != nil {
		return nil, err
	}

	reader, err := csvio.NewReader(data, productHeaderSpec)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rowErrs := csvio.NewRowErrors(0)
	seen := make(map[string]int, len(rows))
	products := make([]*catalog.Product, 0, len(rows))
	for _, row := range rows {
		p := s.buildProduct(ctx, caller, row, rowErrs)
		if p == nil {
			continue
		}
		key := fmt.Sprintf("%s\x00%s\x00%s", p.ProductCode, p.StartDate.Format(csvDateLayout), p.EndDate.Format(csvDateLayout))
		if prev, dup := seen[key]; dup {
			rowErrs.Add(row.Line, "product_code", fmt.Sprintf("duplicates row %d", prev))
			continue
		}
		seen[key] = row.Line
		products = append(products, p)
	}
	if rowErrs.HasErrors() {
		return nil, rowErrs
	}

	for _, p := range products {
		if err := s.products.Save(ctx, p); err != nil {
			if isUniqueViolation(err) {
				return nil, shared.ErrIntegrity
			}
			return nil, err
		}
	}

	logger.L(ctx).Info("products imported", zap.Int("products", len(products)))
	return &ImportResult{Products: len(products)}, nil
}

func (s *CSVService) buildProduct(ctx context.Context, caller identity.Caller, row *csvio.Row, rowErrs *csvio.RowErrors) *catalog.Product {
	startDate, err := time.Parse(csvDateLayout, row.Get("start_date"))
	if err != nil {
		rowErrs.Add(row.Line, "start_date", "must be a date in YYYY-MM-DD form")
		return nil
	}
	endDate, err := time.Parse(csvDateLayout, row.Get("end_date"))
	if err != nil {
		rowErrs.Add(row.Line, "end_date", "must be a date in YYYY-MM-DD form")
		return nil
	}
	unitPrice, err := decimal.NewFromString(row.Get("unit_price"))
	if err != nil {
		rowErrs.Add(row.Line, "unit_price", "must be a number")
		return nil
	}

	p, err := catalog.NewProduct(caller.TenantID, caller.UserID, row.Get("product_code"), row.Get("product_name"), startDate, endDate, unitPrice)
	if err != nil {
		rowErrs.Add(row.Line, "product_code", err.Error())
		return nil
	}
	p.Unit = row.Get("unit")
	p.Description = row.Get("description")

	if name := row.Get("product_category"); name != "" {
		c, err := s.categories.FindByName(ctx, caller.TenantID, name)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				rowErrs.Add(row.Line, "product_category", "unknown category")
				return nil
			}
			rowErrs.Add(row.Line, "product_category", err.Error())
			return nil
		}
		p.ProductCategoryID = &c.ID
	}
	return p
}

// Export writes the product master as a UTF-8 CSV with BOM, with the
// localized header labels
func (s *CSVService) Export(ctx context.Context, caller identity.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteCSV(header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("product_mst", "csv", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// ExportExcel writes the product master as an xlsx workbook
func (s *CSVService) ExportExcel(ctx context.Context, caller identity.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteXLSX("products", header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("product_mst", "xlsx", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

func (s *CSVService) exportRows(ctx context.Context, caller identity.Caller, f ListFilter) ([]string, [][]string, bool, error) {
	products, _, err := s.products.FindAll(ctx, caller.TenantID, catalog.Filter{
		Keyword:    f.Keyword,
		CategoryID: f.CategoryID,
	})
	if err != nil {
		return nil, nil, false, err
	}

	categoryNames, err := s.categoryNames(ctx, caller.TenantID)
	if err != nil {
		return nil, nil, false, err
	}

	header := make([]string, len(productColumns))
	for i, c := range productColumns {
		header[i] = c.Label
	}

	truncated := false
	if len(products) > s.maxExportRows {
		products = products[:s.maxExportRows]
		truncated = true
	}

	rows := make([][]string, len(products))
	for i := range products {
		p := &products[i]
		category := ""
		if p.ProductCategoryID != nil {
			category = categoryNames[*p.ProductCategoryID]
		}
		rows[i] = []string{
			p.ProductCode,
			p.ProductName,
			category,
			p.StartDate.Format(csvDateLayout),
			p.EndDate.Format(csvDateLayout),
			p.UnitPrice.String(),
			p.Unit,
			p.Description,
		}
	}
	return header, rows, truncated, nil
}

func (s *CSVService) categoryNames(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]string, error) {
	categories, err := s.categories.FindAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for i := range categories {
		names[categories[i].ID] = categories[i].ProductCategoryName
	}
	return names, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
