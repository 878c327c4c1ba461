package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appanalytics "github.com/resto-bi/backend/internal/application/analytics"
	appdashboard "github.com/resto-bi/backend/internal/application/dashboard"
	appsales "github.com/resto-bi/backend/internal/application/sales"
	domainanalytics "github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/auth"
	"github.com/resto-bi/backend/internal/infrastructure/config"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/resto-bi/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAnalyticsRepo satisfies the aggregation interface; route tests never
// reach its methods.
type stubAnalyticsRepo struct {
	domainanalytics.Repository
}

type stubSalesRepo struct{}

func (stubSalesRepo) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "sale not found")
}

func (stubSalesRepo) List(ctx context.Context, f domainanalytics.SaleFilter, page, pageSize int, sortField, sortOrder string) (shared.Paginated[models.Sale], error) {
	return shared.NewPaginated[models.Sale](nil, 0, page, pageSize), nil
}

func (stubSalesRepo) Count(ctx context.Context, f domainanalytics.SaleFilter) (int64, error) {
	return 0, nil
}

func (stubSalesRepo) Create(ctx context.Context, sale *models.Sale) error { return nil }

type stubDashboardRepo struct{}

func (stubDashboardRepo) Create(ctx context.Context, d *models.Dashboard) error { return nil }

func (stubDashboardRepo) FindByID(ctx context.Context, id int64) (*models.Dashboard, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "dashboard not found")
}

func (stubDashboardRepo) FindDefault(ctx context.Context) (*models.Dashboard, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "no default dashboard")
}

func (stubDashboardRepo) FindByShareToken(ctx context.Context, token string) (*models.Dashboard, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "dashboard not found")
}

func (stubDashboardRepo) List(ctx context.Context, page, pageSize int) (shared.Paginated[models.Dashboard], error) {
	return shared.NewPaginated[models.Dashboard](nil, 0, page, pageSize), nil
}

func (stubDashboardRepo) Update(ctx context.Context, d *models.Dashboard) error { return nil }

func (stubDashboardRepo) Delete(ctx context.Context, id int64) error { return nil }

type stubStores struct{}

func (stubStores) ListActiveStores(ctx context.Context) ([]models.Store, error) {
	return []models.Store{}, nil
}

func (stubStores) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return []models.Channel{}, nil
}

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:                "router-test-secret",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "resto-bi-test",
		},
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	users := auth.NewStaticUserStore()

	analyticsService := appanalytics.NewService(stubAnalyticsRepo{}, nil, zap.NewNop())

	h := Handlers{
		System:     handler.NewSystemHandler(okPinger{}, analyticsService, "test"),
		Auth:       handler.NewAuthHandler(users, jwtService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		Sales:      handler.NewSalesHandler(appsales.NewService(stubSalesRepo{})),
		Stores:     handler.NewStoresHandler(stubStores{}),
		Dashboards: handler.NewDashboardHandler(appdashboard.NewService(stubDashboardRepo{})),
		Cache:      handler.NewCacheHandler(analyticsService),
	}
	return New(cfg, zap.NewNop(), jwtService, h)
}

func login(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	require.Equal(t, "Bearer", resp.Data.TokenType)
	return resp.Data.AccessToken
}

func TestHealthIsOpen(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"database":"connected"`)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestEngine(t)

	paths := []string{
		"/api/v1/analytics/revenue",
		"/api/v1/analytics/summary",
		"/api/v1/sales",
		"/api/v1/stores",
		"/api/v1/dashboards",
		"/api/v1/cache/status",
		"/api/v1/auth/me",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginThenMe(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin123")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := newTestEngine(t)

	body := `{"username":"admin","password":"wrong"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSharedDashboardIsOpen(t *testing.T) {
	engine := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/shared/sometoken", nil))
	// Reaches the handler without a token; the stub store has no match.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthenticatedBoundaryValidation(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "maria", "maria123")

	cases := []struct {
		name string
		path string
	}{
		{"bad start date", "/api/v1/analytics/revenue?start_date=notadate"},
		{"inverted range", "/api/v1/analytics/revenue?start_date=2025-02-01&end_date=2025-01-01"},
		{"day of week out of range", "/api/v1/analytics/products/top?day_of_week=7"},
		{"hour out of range", "/api/v1/analytics/products/top?hour_start=24"},
		{"zero limit", "/api/v1/analytics/products/top?limit=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
