package persistence

import (
	"context"
	"errors"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalesRepository implements sale reads and ingestion using GORM
type GormSalesRepository struct {
	db *gorm.DB
	d  sqlDialect
}

// NewGormSalesRepository creates a new GormSalesRepository
func NewGormSalesRepository(db *gorm.DB) *GormSalesRepository {
	return &GormSalesRepository{db: db, d: dialectFor(db)}
}

// FindByID finds a sale with its full line items, payments and delivery data
func (r *GormSalesRepository) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("Channel").
		Preload("Customer").
		Preload("Products.Product").
		Preload("Products.Items.Item").
		Preload("Payments.PaymentType").
		Preload("Delivery.Addresses").
		First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// saleSortFields whitelists the columns a caller may sort the listing by.
var saleSortFields = map[string]bool{
	"created_at":   true,
	"total_amount": true,
	"store_id":     true,
	"channel_id":   true,
}

// List returns sales matching the filter, newest first unless a sort is
// given.
func (r *GormSalesRepository) List(ctx context.Context, f analytics.SaleFilter, page, pageSize int, sortField, sortOrder string) (shared.Paginated[models.Sale], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	field := ValidateSortField(sortField, saleSortFields, "created_at")
	order := ValidateSortOrder(sortOrder)

	base := func() *gorm.DB {
		return applySaleFilter(r.db.WithContext(ctx).Model(&models.Sale{}), r.d, "sales", f)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return shared.Paginated[models.Sale]{}, err
	}

	var sales []models.Sale
	err := base().
		Preload("Store").
		Preload("Channel").
		Order("sales." + field + " " + order).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&sales).Error
	if err != nil {
		return shared.Paginated[models.Sale]{}, err
	}
	return shared.NewPaginated(sales, total, page, pageSize), nil
}

// Count returns how many sales match the filter
func (r *GormSalesRepository) Count(ctx context.Context, f analytics.SaleFilter) (int64, error) {
	var total int64
	base := applySaleFilter(r.db.WithContext(ctx).Model(&models.Sale{}), r.d, "sales", f)
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create ingests a sale with all its child records atomically. A failure
// anywhere rolls back the whole sale, line items included. The delivery
// record is created after the sale because its addresses carry the sale ID
// directly, which GORM cannot fill through the nested association.
func (r *GormSalesRepository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery := sale.Delivery
		sale.Delivery = nil
		err := tx.Create(sale).Error
		sale.Delivery = delivery
		if err != nil {
			return err
		}
		if delivery == nil {
			return nil
		}

		delivery.SaleID = sale.ID
		for i := range delivery.Addresses {
			delivery.Addresses[i].SaleID = sale.ID
		}
		return tx.Create(delivery).Error
	})
}
