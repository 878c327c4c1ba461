package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
)

// memoryRepo keeps dashboards in a map, mirroring the default-exclusivity
// rule of the real store.
type memoryRepo struct {
	nextID     int64
	dashboards map[int64]*models.Dashboard
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, dashboards: map[int64]*models.Dashboard{}}
}

func (r *memoryRepo) Create(ctx context.Context, d *models.Dashboard) error {
	if d.IsDefault {
		r.clearDefault(0)
	}
	d.ID = r.nextID
	r.nextID++
	clone := *d
	r.dashboards[d.ID] = &clone
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id int64) (*models.Dashboard, error) {
	d, ok := r.dashboards[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *memoryRepo) FindDefault(ctx context.Context) (*models.Dashboard, error) {
	for _, d := range r.dashboards {
		if d.IsDefault {
			clone := *d
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) FindByShareToken(ctx context.Context, token string) (*models.Dashboard, error) {
	for _, d := range r.dashboards {
		if d.IsShared && d.ShareToken != nil && *d.ShareToken == token {
			clone := *d
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, page, pageSize int) (shared.Paginated[models.Dashboard], error) {
	items := make([]models.Dashboard, 0, len(r.dashboards))
	for _, d := range r.dashboards {
		items = append(items, *d)
	}
	return shared.NewPaginated(items, int64(len(items)), page, pageSize), nil
}

func (r *memoryRepo) Update(ctx context.Context, d *models.Dashboard) error {
	if _, ok := r.dashboards[d.ID]; !ok {
		return shared.ErrNotFound
	}
	if d.IsDefault {
		r.clearDefault(d.ID)
	}
	clone := *d
	r.dashboards[d.ID] = &clone
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.dashboards[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.dashboards, id)
	return nil
}

func (r *memoryRepo) clearDefault(exceptID int64) {
	for _, d := range r.dashboards {
		if d.ID != exceptID {
			d.IsDefault = false
		}
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Name:   "Revenue overview",
		Config: datatypes.JSON(`{"widgets":["revenue"]}`),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revenue overview", found.Name)
	assert.False(t, found.IsDefault)
	assert.False(t, found.IsShared)
	assert.Nil(t, found.ShareToken)
}

func TestServiceDefaultSemantics(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.GetDefault(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	first, err := svc.Create(ctx, CreateInput{Name: "First", Config: datatypes.JSON(`{}`), IsDefault: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateInput{Name: "Second", Config: datatypes.JSON(`{}`), IsDefault: true})
	require.NoError(t, err)

	current, err := svc.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	isDefault := true
	_, err = svc.Update(ctx, first.ID, UpdateInput{IsDefault: &isDefault})
	require.NoError(t, err)

	current, err = svc.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)
}

func TestServiceUpdateAppliesOnlySetFields(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Name:        "Original",
		Description: "original description",
		Config:      datatypes.JSON(`{"widgets":[]}`),
	})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "original description", updated.Description)
	assert.JSONEq(t, `{"widgets":[]}`, string(updated.Config))
}

func TestServiceUpdateMissingDashboard(t *testing.T) {
	svc := NewService(newMemoryRepo())
	name := "whatever"
	_, err := svc.Update(context.Background(), 42, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceSharingLifecycle(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Board", Config: datatypes.JSON(`{}`)})
	require.NoError(t, err)

	shared1, err := svc.EnableSharing(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, shared1.ShareToken)
	assert.True(t, shared1.IsShared)
	assert.NotContains(t, *shared1.ShareToken, "-")

	resolved, err := svc.GetShared(ctx, *shared1.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	revoked, err := svc.DisableSharing(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, revoked.IsShared)
	_, err = svc.GetShared(ctx, *shared1.ShareToken)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// The token survives the disable/enable cycle, keeping links stable.
	shared2, err := svc.EnableSharing(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, shared2.ShareToken)
	assert.Equal(t, *shared1.ShareToken, *shared2.ShareToken)
}

func TestServiceDelete(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Doomed", Config: datatypes.JSON(`{}`)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}
