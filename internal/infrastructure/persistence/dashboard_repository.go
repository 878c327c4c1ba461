package persistence

import (
	"context"
	"errors"

	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDashboardRepository implements dashboard persistence using GORM.
// At most one dashboard is the default; setting a new default clears the
// flag on every other row inside the same transaction.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Create saves a new dashboard
func (r *GormDashboardRepository) Create(ctx context.Context, dashboard *models.Dashboard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dashboard.IsDefault {
			if err := clearDefault(tx, 0); err != nil {
				return err
			}
		}
		return tx.Create(dashboard).Error
	})
}

// FindByID finds a dashboard by its ID
func (r *GormDashboardRepository) FindByID(ctx context.Context, id int64) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	if err := r.db.WithContext(ctx).First(&dashboard, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dashboard, nil
}

// FindDefault returns the default dashboard, or ErrNotFound when none is set
func (r *GormDashboardRepository) FindDefault(ctx context.Context) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		First(&dashboard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dashboard, nil
}

// FindByShareToken finds a dashboard by token; only shared dashboards match
func (r *GormDashboardRepository) FindByShareToken(ctx context.Context, token string) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	err := r.db.WithContext(ctx).
		Where("share_token = ? AND is_shared = ?", token, true).
		First(&dashboard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dashboard, nil
}

// List returns dashboards, newest first
func (r *GormDashboardRepository) List(ctx context.Context, page, pageSize int) (shared.Paginated[models.Dashboard], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Dashboard{}).Count(&total).Error; err != nil {
		return shared.Paginated[models.Dashboard]{}, err
	}

	var dashboards []models.Dashboard
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&dashboards).Error
	if err != nil {
		return shared.Paginated[models.Dashboard]{}, err
	}
	return shared.NewPaginated(dashboards, total, page, pageSize), nil
}

// Update saves changes to an existing dashboard
func (r *GormDashboardRepository) Update(ctx context.Context, dashboard *models.Dashboard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dashboard.IsDefault {
			if err := clearDefault(tx, dashboard.ID); err != nil {
				return err
			}
		}
		result := tx.Model(&models.Dashboard{}).
			Where("id = ?", dashboard.ID).
			Select("name", "description", "config", "is_default", "share_token", "is_shared").
			Updates(dashboard)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Delete removes a dashboard
func (r *GormDashboardRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Dashboard{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func clearDefault(tx *gorm.DB, exceptID int64) error {
	q := tx.Model(&models.Dashboard{}).Where("is_default = ?", true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}
