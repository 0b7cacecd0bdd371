package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesOrderRepository implements order.Repository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID loads the full aggregate: header, details in line number order,
// and the reference user and group lists.
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	var o order.SalesOrder
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadReferences(ctx, r.db, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByIDForUpdate loads the aggregate holding a row lock on the header.
// Must be called inside a transaction.
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	var o order.SalesOrder
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("sales_order_id = ?", o.ID).
		Order("line_no ASC").
		Find(&o.Details).Error; err != nil {
		return nil, err
	}
	if err := r.loadReferences(ctx, r.db, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByNo finds an order by its order number within the tenant
func (r *GormSalesOrderRepository) FindByNo(ctx context.Context, tenantID uuid.UUID, no string) (*order.SalesOrder, error) {
	var o order.SalesOrder
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		First(&o, "sales_order_no = ?", no).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadReferences(ctx, r.db, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll lists orders matching the filter with the total count before paging
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter order.Filter) ([]order.SalesOrder, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&order.SalesOrder{}).
		Scopes(tenant.Scope(tenantID))
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orders []order.SalesOrder
	if err := query.
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Order("sales_order_date DESC, created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save persists the aggregate. A first save assigns the order number;
// allocation is serialized per (tenant, year). Details and reference
// lists are replaced wholesale.
func (r *GormSalesOrderRepository) Save(ctx context.Context, o *order.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOrder(tx, o)
	})
}

// SaveAll persists multiple aggregates in one transaction
func (r *GormSalesOrderRepository) SaveAll(ctx context.Context, orders []*order.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := saveOrder(tx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByProduct counts non-cancelled orders referencing a product
func (r *GormSalesOrderRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&order.SalesOrderDetail{}).
		Joins("JOIN sales_orders ON sales_orders.id = sales_order_details.sales_order_id").
		Where("sales_order_details.tenant_id = ?", tenantID).
		Where("sales_order_details.product_id = ?", productID).
		Where("sales_orders.status <> ?", order.StatusCancel).
		Distinct("sales_order_details.sales_order_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Transaction runs fn inside a database transaction. The repository passed
// to fn operates on that transaction.
func (r *GormSalesOrderRepository) Transaction(ctx context.Context, fn func(repo order.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormSalesOrderRepository{db: tx})
	})
}

func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter order.Filter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"sales_order_no LIKE ? OR partner_id IN (SELECT id FROM partners WHERE partner_name LIKE ?)",
			pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("sales_order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("sales_order_date <= ?", *filter.DateTo)
	}

	// Non-managers only see orders they created or reference.
	if filter.RestrictToUser != nil {
		userID := *filter.RestrictToUser
		cond := "create_user_id = ?" +
			" OR id IN (SELECT sales_order_id FROM sales_order_reference_users WHERE user_id = ?)"
		args := []any{userID, userID}
		if len(filter.UserGroupIDs) > 0 {
			cond += " OR id IN (SELECT sales_order_id FROM sales_order_reference_groups WHERE group_id IN ?)"
			args = append(args, filter.UserGroupIDs)
		}
		query = query.Where(cond, args...)
	}

	return query
}

func saveOrder(tx *gorm.DB, o *order.SalesOrder) error {
	if o.SalesOrderNo == "" {
		no, err := nextOrderNumber(tx, o.TenantID, o.SalesOrderDate.Year())
		if err != nil {
			return err
		}
		if err := o.AssignNumber(no); err != nil {
			return err
		}
	}

	if err := tx.Omit("Details").Save(o).Error; err != nil {
		return err
	}

	// Replace detail lines wholesale.
	if err := tx.Where("sales_order_id = ?", o.ID).
		Delete(&order.SalesOrderDetail{}).Error; err != nil {
		return err
	}
	for i := range o.Details {
		o.Details[i].SalesOrderID = o.ID
		o.Details[i].TenantID = o.TenantID
		if err := tx.Create(&o.Details[i]).Error; err != nil {
			return err
		}
	}

	return saveReferences(tx, o)
}

func saveReferences(tx *gorm.DB, o *order.SalesOrder) error {
	if err := tx.Where("sales_order_id = ?", o.ID).
		Delete(&order.OrderReferenceUser{}).Error; err != nil {
		return err
	}
	if err := tx.Where("sales_order_id = ?", o.ID).
		Delete(&order.OrderReferenceGroup{}).Error; err != nil {
		return err
	}

	for _, userID := range o.ReferenceUserIDs {
		row := order.OrderReferenceUser{
			SalesOrderID: o.ID,
			UserID:       userID,
			TenantID:     o.TenantID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	for _, groupID := range o.ReferenceGroupIDs {
		row := order.OrderReferenceGroup{
			SalesOrderID: o.ID,
			GroupID:      groupID,
			TenantID:     o.TenantID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormSalesOrderRepository) loadReferences(ctx context.Context, db *gorm.DB, o *order.SalesOrder) error {
	var userRows []order.OrderReferenceUser
	if err := db.WithContext(ctx).
		Where("sales_order_id = ?", o.ID).
		Find(&userRows).Error; err != nil {
		return err
	}
	var groupRows []order.OrderReferenceGroup
	if err := db.WithContext(ctx).
		Where("sales_order_id = ?", o.ID).
		Find(&groupRows).Error; err != nil {
		return err
	}

	o.ReferenceUserIDs = make([]uuid.UUID, len(userRows))
	for i, row := range userRows {
		o.ReferenceUserIDs[i] = row.UserID
	}
	o.ReferenceGroupIDs = make([]uuid.UUID, len(groupRows))
	for i, row := range groupRows {
		o.ReferenceGroupIDs[i] = row.GroupID
	}
	return nil
}

// nextOrderNumber allocates the next number in the SO-YYYY-NNNNNN sequence.
// On PostgreSQL an advisory lock keyed on (tenant, year) serializes
// concurrent allocations for the duration of the transaction.
func nextOrderNumber(tx *gorm.DB, tenantID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("SO-%d-", year)

	if tx.Dialector.Name() == "postgres" {
		key := fmt.Sprintf("sales_order_no:%s:%d", tenantID, year)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return "", err
		}
	}

	var lastNos []string
	err := tx.Model(&order.SalesOrder{}).
		Where("tenant_id = ? AND sales_order_no LIKE ?", tenantID, prefix+"%").
		Order("sales_order_no DESC").
		Limit(1).
		Pluck("sales_order_no", &lastNos).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if len(lastNos) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(lastNos[0], prefix))
		if err != nil {
			return "", fmt.Errorf("malformed order number %q: %w", lastNos[0], err)
		}
		seq = n + 1
	}

	return fmt.Sprintf("%s%06d", prefix, seq), nil
}

// Ensure GormSalesOrderRepository implements order.Repository
var _ order.Repository = (*GormSalesOrderRepository)(nil)
