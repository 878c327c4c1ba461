package persistence

import (
	"context"

	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreRepository serves the store and channel dimensions
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// ListActiveStores returns active stores ordered by name
func (r *GormStoreRepository) ListActiveStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// ListChannels returns all channels ordered by name
func (r *GormStoreRepository) ListChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}
