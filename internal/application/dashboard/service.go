package dashboard

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"gorm.io/datatypes"
)

// Repository is the persistence surface the dashboard service needs
type Repository interface {
	Create(ctx context.Context, dashboard *models.Dashboard) error
	FindByID(ctx context.Context, id int64) (*models.Dashboard, error)
	FindDefault(ctx context.Context) (*models.Dashboard, error)
	FindByShareToken(ctx context.Context, token string) (*models.Dashboard, error)
	List(ctx context.Context, page, pageSize int) (shared.Paginated[models.Dashboard], error)
	Update(ctx context.Context, dashboard *models.Dashboard) error
	Delete(ctx context.Context, id int64) error
}

// Service provides application-level dashboard operations
type Service struct {
	repo Repository
}

// NewService creates a new dashboard Service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is the payload for creating a dashboard
type CreateInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Config      datatypes.JSON `json:"config" binding:"required"`
	UserID      *int64         `json:"user_id"`
	IsDefault   bool           `json:"is_default"`
}

// UpdateInput is the payload for updating a dashboard. Nil fields are left
// unchanged.
type UpdateInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Config      *datatypes.JSON `json:"config"`
	IsDefault   *bool           `json:"is_default"`
}

// Create saves a new dashboard. Marking it default clears any previous
// default.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Dashboard, error) {
	dashboard := &models.Dashboard{
		Name:        input.Name,
		Description: input.Description,
		Config:      input.Config,
		UserID:      input.UserID,
		IsDefault:   input.IsDefault,
	}
	if err := s.repo.Create(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// Get returns one dashboard
func (s *Service) Get(ctx context.Context, id int64) (*models.Dashboard, error) {
	return s.repo.FindByID(ctx, id)
}

// GetDefault returns the default dashboard, or ErrNotFound when none is set
func (s *Service) GetDefault(ctx context.Context) (*models.Dashboard, error) {
	return s.repo.FindDefault(ctx)
}

// List returns dashboards, newest first
func (s *Service) List(ctx context.Context, page, pageSize int) (shared.Paginated[models.Dashboard], error) {
	return s.repo.List(ctx, page, pageSize)
}

// Update applies the set fields of input to an existing dashboard
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Dashboard, error) {
	dashboard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		dashboard.Name = *input.Name
	}
	if input.Description != nil {
		dashboard.Description = *input.Description
	}
	if input.Config != nil {
		dashboard.Config = *input.Config
	}
	if input.IsDefault != nil {
		dashboard.IsDefault = *input.IsDefault
	}

	if err := s.repo.Update(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// Delete removes a dashboard
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// EnableSharing turns on public sharing and returns the dashboard with its
// share token. The token is minted once and survives later disable/enable
// cycles, so shared links stay stable.
func (s *Service) EnableSharing(ctx context.Context, id int64) (*models.Dashboard, error) {
	dashboard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dashboard.ShareToken == nil {
		token := newShareToken()
		dashboard.ShareToken = &token
	}
	dashboard.IsShared = true

	if err := s.repo.Update(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// DisableSharing turns off public sharing
func (s *Service) DisableSharing(ctx context.Context, id int64) (*models.Dashboard, error) {
	dashboard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dashboard.IsShared = false

	if err := s.repo.Update(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// GetShared resolves a share token; only currently shared dashboards match
func (s *Service) GetShared(ctx context.Context, token string) (*models.Dashboard, error) {
	return s.repo.FindByShareToken(ctx, token)
}

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
