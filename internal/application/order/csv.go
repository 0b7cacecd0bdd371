package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

const (
	csvDateLayout      = "2006-01-02"
	csvTimestampLayout = "2006-01-02 15:04:05"
)

// orderCSVColumns is the canonical column order on the wire. One row
// per detail line, header columns repeated.
var orderCSVColumns = []string{
	"sales_order_no", "partner", "sales_order_date", "delivery_due_date",
	"remarks", "line_no", "product", "quantity", "unit",
	"billing_unit_price", "is_tax_exempt", "tax_rate", "rounding_method",
	"created_at", "updated_at", "created_user", "updated_user",
}

// orderHeaderLabels maps the localized column labels to canonical names
var orderHeaderLabels = map[string]string{
	"受注番号":   "sales_order_no",
	"取引先":    "partner",
	"受注日":    "sales_order_date",
	"納品予定日":  "delivery_due_date",
	"備考":     "remarks",
	"行番号":    "line_no",
	"商品":     "product",
	"数量":     "quantity",
	"単位":     "unit",
	"販売単価":   "billing_unit_price",
	"非課税フラグ": "is_tax_exempt",
	"消費税率":   "tax_rate",
	"端数処理":   "rounding_method",
	"作成日時":   "created_at",
	"更新日時":   "updated_at",
	"作成者":    "created_user",
	"更新者":    "updated_user",
}

var orderHeaderSpec = csvio.HeaderSpec{
	Aliases: headerAliases(orderHeaderLabels, orderCSVColumns),
	Required: []string{
		"sales_order_no", "partner", "sales_order_date", "line_no",
		"product", "quantity", "billing_unit_price", "is_tax_exempt",
		"tax_rate", "rounding_method",
	},
}

// headerAliases merges localized labels with the canonical names
// themselves, so either header style is accepted
func headerAliases(labels map[string]string, canonical []string) map[string]string {
	aliases := make(map[string]string, len(labels)+len(canonical))
	for label, name := range labels {
		aliases[label] = name
	}
	for _, name := range canonical {
		aliases[name] = name
	}
	return aliases
}

// ImportResult summarizes a successful CSV import. The count is
// orders created, not CSV rows consumed.
type ImportResult struct {
	ImportedCount int `json:"imported_count"`
}

// ExportResult carries an export payload and its disposition
type ExportResult struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"-"`
	RowCount  int    `json:"row_count"`
	Truncated bool   `json:"truncated"`
}

// ExportCount reports whether a filtered export would hit the row cap
type ExportCount struct {
	Rows    int  `json:"rows"`
	Limit   int  `json:"limit"`
	Exceeds bool `json:"exceeds"`
}

// CSVService imports and exports sales orders as CSV or Excel files
type CSVService struct {
	orders        order.Repository
	partners      partner.Repository
	products      catalog.ProductRepository
	maxFileSize   int64
	maxExportRows int
}

// NewCSVService creates a new order CSVService
func NewCSVService(
	orders order.Repository,
	partners partner.Repository,
	products catalog.ProductRepository,
	maxFileSize int64,
	maxExportRows int,
) *CSVService {
	return &CSVService{
		orders:        orders,
		partners:      partners,
		products:      products,
		maxFileSize:   maxFileSize,
		maxExportRows: maxExportRows,
	}
}

// Import parses an order CSV and creates the orders it describes.
// Consecutive rows sharing a sales_order_no form one order; nothing is
// persisted unless every row passes validation.
func (s *CSVService) Import(ctx context.Context, caller order.Caller, filename string, data []byte) (*ImportResult, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}
	if err := csvio.CheckFile(filename, int64(len(data)), s.maxFileSize); err != nil {
		return nil, err
	}

	reader, err := csvio.NewReader(data, orderHeaderSpec)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	groups := groupByOrderNo(rows)
	rowErrs := csvio.NewRowErrors(0)
	orders := make([]*order.SalesOrder, 0, len(groups))
	for _, g := range groups {
		if o := s.buildOrder(ctx, caller, g, rowErrs); o != nil {
			orders = append(orders, o)
		}
	}
	if rowErrs.HasErrors() {
		return nil, rowErrs
	}

	if err := s.orders.SaveAll(ctx, orders); err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrIntegrity
		}
		return nil, err
	}

	logger.L(ctx).Info("sales orders imported",
		zap.Int("orders", len(orders)), zap.Int("rows", len(rows)))
	return &ImportResult{ImportedCount: len(orders)}, nil
}

// groupByOrderNo splits the rows into runs sharing a sales_order_no.
// Only consecutive rows aggregate; a number reappearing later starts a
// new group and will fail on the uniqueness constraint.
func groupByOrderNo(rows []*csvio.Row) [][]*csvio.Row {
	var groups [][]*csvio.Row
	for _, row := range rows {
		no := row.Get("sales_order_no")
		n := len(groups)
		if n > 0 && groups[n-1][0].Get("sales_order_no") == no {
			groups[n-1] = append(groups[n-1], row)
			continue
		}
		groups = append(groups, []*csvio.Row{row})
	}
	return groups
}

// buildOrder assembles one aggregate from a group of rows. Header
// fields are taken from the first row; each row contributes one detail
// line in file order.
func (s *CSVService) buildOrder(ctx context.Context, caller order.Caller, rows []*csvio.Row, rowErrs *csvio.RowErrors) *order.SalesOrder {
	head := rows[0]
	failed := false
	fail := func(line int, column, message string) {
		rowErrs.Add(line, column, message)
		failed = true
	}

	no := head.Get("sales_order_no")
	if no == "" {
		fail(head.Line, "sales_order_no", "cannot be empty")
	}

	orderDate, err := time.Parse(csvDateLayout, head.Get("sales_order_date"))
	if err != nil {
		fail(head.Line, "sales_order_date", "must be a date in YYYY-MM-DD form")
	}

	rounding, err := order.ParseRoundingMethod(head.Get("rounding_method"))
	if err != nil {
		fail(head.Line, "rounding_method", "must be one of floor, ceil, half_up")
		rounding = order.RoundFloor
	}
	for _, row := range rows[1:] {
		if row.Get("rounding_method") != head.Get("rounding_method") {
			fail(row.Line, "rounding_method", "must match the order's first row")
		}
	}

	var partnerID *uuid.UUID
	if name := head.Get("partner"); name != "" {
		p, err := s.partners.FindByName(ctx, caller.TenantID, name)
		if err != nil {
			fail(head.Line, "partner", "unknown partner")
		} else {
			partnerID = &p.ID
		}
	}

	var dueDate *time.Time
	if v := head.Get("delivery_due_date"); v != "" {
		d, err := time.Parse(csvDateLayout, v)
		if err != nil {
			fail(head.Line, "delivery_due_date", "must be a date in YYYY-MM-DD form")
		} else {
			dueDate = &d
		}
	}

	inputs := make([]order.DetailInput, 0, len(rows))
	for _, row := range rows {
		if in, ok := s.buildDetail(ctx, caller, row, orderDate, rowErrs); ok {
			inputs = append(inputs, in)
		} else {
			failed = true
		}
	}
	if failed {
		return nil
	}

	o, err := order.NewDraft(caller.TenantID, caller.UserID, orderDate, rounding)
	if err != nil {
		rowErrs.Add(head.Line, "sales_order_date", err.Error())
		return nil
	}
	if err := o.AssignNumber(no); err != nil {
		rowErrs.Add(head.Line, "sales_order_no", err.Error())
		return nil
	}
	o.PartnerID = partnerID
	o.Remarks = head.Get("remarks")
	o.SetDelivery(dueDate, "")

	if err := o.SetDetails(inputs, nil); err != nil {
		var lineErrs order.LineErrors
		if ok := asLineErrors(err, &lineErrs); ok {
			for _, le := range lineErrs {
				// line numbers restart per order; report the file row
				rowErrs.Add(rows[le.Line-1].Line, le.Field, le.Message)
			}
		} else {
			rowErrs.Add(head.Line, "details", err.Error())
		}
		return nil
	}
	return o
}

// buildDetail parses one detail row. The product is resolved by name
// against the validity window containing the order date.
func (s *CSVService) buildDetail(ctx context.Context, caller order.Caller, row *csvio.Row, orderDate time.Time, rowErrs *csvio.RowErrors) (order.DetailInput, bool) {
	ok := true
	fail := func(column, message string) {
		rowErrs.Add(row.Line, column, message)
		ok = false
	}

	var in order.DetailInput

	name := row.Get("product")
	if name == "" {
		fail("product", "cannot be empty")
	} else {
		products, err := s.products.FindByName(ctx, caller.TenantID, name)
		if err != nil || len(products) == 0 {
			fail("product", "unknown product")
		} else {
			p := pickProductForDate(products, orderDate)
			in.ProductID = &p.ID
			master := p.UnitPrice
			in.MasterUnitPrice = &master
		}
	}

	qty, err := strconv.Atoi(row.Get("quantity"))
	if err != nil || qty <= 0 {
		fail("quantity", "must be a positive integer")
	}
	in.Quantity = qty

	price, err := decimal.NewFromString(row.Get("billing_unit_price"))
	if err != nil || price.IsNegative() {
		fail("billing_unit_price", "must be a non-negative number")
	}
	in.BillingUnitPrice = price

	switch row.Get("is_tax_exempt") {
	case "0":
		in.IsTaxExempt = false
	case "1":
		in.IsTaxExempt = true
	default:
		fail("is_tax_exempt", "must be 0 or 1")
	}

	rate, err := decimal.NewFromString(row.Get("tax_rate"))
	if err != nil {
		fail("tax_rate", "must be 0.08 or 0.10")
	}
	in.TaxRate = rate

	return in, ok
}

// pickProductForDate chooses the validity window covering the date.
// The list arrives newest window first; the newest match wins.
func pickProductForDate(products []catalog.Product, date time.Time) *catalog.Product {
	for i := range products {
		p := &products[i]
		if !date.Before(p.StartDate) && !date.After(p.EndDate) {
			return p
		}
	}
	return &products[0]
}

// Export writes the filtered orders as a UTF-8 CSV with BOM, one row
// per detail line. Rows beyond the export cap are cut off and the
// result flagged truncated.
func (s *CSVService) Export(ctx context.Context, caller order.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteCSV(header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("sales_order", "csv", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// ExportExcel writes the filtered orders as an xlsx workbook
func (s *CSVService) ExportExcel(ctx context.Context, caller order.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteXLSX("sales_orders", header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("sales_order", "xlsx", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// Count reports how many rows the filtered export would produce and
// whether that exceeds the cap, so clients can warn before download
func (s *CSVService) Count(ctx context.Context, caller order.Caller, f ListFilter) (*ExportCount, error) {
	orders, err := s.findForExport(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	rows := 0
	for i := range orders {
		if n := len(orders[i].Details); n > 0 {
			rows += n
		} else {
			rows++
		}
	}
	return &ExportCount{
		Rows:    rows,
		Limit:   s.maxExportRows,
		Exceeds: rows > s.maxExportRows,
	}, nil
}

func (s *CSVService) findForExport(ctx context.Context, caller order.Caller, f ListFilter) ([]order.SalesOrder, error) {
	filter := order.Filter{
		Keyword:   f.Keyword,
		Status:    order.Status(f.Status),
		PartnerID: f.PartnerID,
		DateFrom:  f.DateFrom,
		DateTo:    f.DateTo,
	}
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		filter.RestrictToUser = &caller.UserID
		filter.UserGroupIDs = caller.GroupIDs
	}
	orders, _, err := s.orders.FindAll(ctx, caller.TenantID, filter)
	return orders, err
}

func (s *CSVService) exportRows(ctx context.Context, caller order.Caller, f ListFilter) ([]string, [][]string, bool, error) {
	orders, err := s.findForExport(ctx, caller, f)
	if err != nil {
		return nil, nil, false, err
	}

	partnerNames, productNames, productUnits, err := s.exportLookups(ctx, caller.TenantID, orders)
	if err != nil {
		return nil, nil, false, err
	}

	var rows [][]string
	truncated := false
	for i := range orders {
		o := &orders[i]
		if len(rows) >= s.maxExportRows {
			truncated = true
			break
		}
		if len(o.Details) == 0 {
			rows = append(rows, orderRow(o, nil, partnerNames, productNames, productUnits))
			continue
		}
		for j := range o.Details {
			if len(rows) >= s.maxExportRows {
				truncated = true
				break
			}
			rows = append(rows, orderRow(o, &o.Details[j], partnerNames, productNames, productUnits))
		}
	}
	return orderCSVColumns, rows, truncated, nil
}

// exportLookups resolves the partner and product names referenced by
// the export set
func (s *CSVService) exportLookups(ctx context.Context, tenantID uuid.UUID, orders []order.SalesOrder) (map[uuid.UUID]string, map[uuid.UUID]string, map[uuid.UUID]string, error) {
	partnerNames := make(map[uuid.UUID]string)
	productIDs := make(map[uuid.UUID]bool)
	for i := range orders {
		o := &orders[i]
		if o.PartnerID != nil {
			partnerNames[*o.PartnerID] = ""
		}
		for j := range o.Details {
			if o.Details[j].ProductID != nil {
				productIDs[*o.Details[j].ProductID] = true
			}
		}
	}

	for id := range partnerNames {
		p, err := s.partners.FindByID(ctx, tenantID, id)
		if err != nil {
			if err == shared.ErrNotFound {
				delete(partnerNames, id)
				continue
			}
			return nil, nil, nil, err
		}
		partnerNames[id] = p.PartnerName
	}

	productNames := make(map[uuid.UUID]string, len(productIDs))
	productUnits := make(map[uuid.UUID]string, len(productIDs))
	if len(productIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(productIDs))
		for id := range productIDs {
			ids = append(ids, id)
		}
		products, err := s.products.FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, p := range products {
			productNames[p.ID] = p.ProductName
			productUnits[p.ID] = p.Unit
		}
	}
	return partnerNames, productNames, productUnits, nil
}

func orderRow(o *order.SalesOrder, d *order.SalesOrderDetail, partnerNames, productNames, productUnits map[uuid.UUID]string) []string {
	partnerName := ""
	if o.PartnerID != nil {
		partnerName = partnerNames[*o.PartnerID]
	}
	dueDate := ""
	if o.DeliveryDueDate != nil {
		dueDate = o.DeliveryDueDate.Format(csvDateLayout)
	}

	row := []string{
		o.SalesOrderNo,
		partnerName,
		o.SalesOrderDate.Format(csvDateLayout),
		dueDate,
		o.Remarks,
	}
	if d == nil {
		row = append(row, "", "", "", "", "", "", "", string(o.RoundingMethod))
		return append(row, auditColumns(&o.TenantEntity)...)
	}

	productName := ""
	unit := ""
	if d.ProductID != nil {
		productName = productNames[*d.ProductID]
		unit = productUnits[*d.ProductID]
	}
	exempt := "0"
	if d.IsTaxExempt {
		exempt = "1"
	}
	row = append(row,
		strconv.Itoa(d.LineNo),
		productName,
		strconv.Itoa(d.Quantity),
		unit,
		d.BillingUnitPrice.String(),
		exempt,
		d.TaxRate.String(),
		string(o.RoundingMethod),
	)
	return append(row, auditColumns(&o.TenantEntity)...)
}

// auditColumns renders the shared audit trail columns. User columns
// carry IDs; names are a UI concern.
func auditColumns(e *shared.TenantEntity) []string {
	createdBy := ""
	if e.CreateUserID != nil {
		createdBy = e.CreateUserID.String()
	}
	updatedBy := ""
	if e.UpdateUserID != nil {
		updatedBy = e.UpdateUserID.String()
	}
	return []string{
		e.CreatedAt.Format(csvTimestampLayout),
		e.UpdatedAt.Format(csvTimestampLayout),
		createdBy,
		updatedBy,
	}
}

// isUniqueViolation detects a duplicate-key failure escaping the
// row-level checks. Matched textually so sqlite and postgres both hit.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// asLineErrors unwraps a LineErrors value from err
func asLineErrors(err error, target *order.LineErrors) bool {
	le, ok := err.(order.LineErrors)
	if ok {
		*target = le
	}
	return ok
}
