package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resto-bi/backend/internal/application/dashboard"
	"github.com/resto-bi/backend/internal/interfaces/http/dto"
)

// DashboardHandler manages saved dashboard configurations and their
// public share links.
type DashboardHandler struct {
	BaseHandler
	service *dashboard.Service
}

func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) dashboardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "id", Message: "dashboard id must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// List returns all saved dashboards.
func (h *DashboardHandler) List(c *gin.Context) {
	var page dto.ListRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "page", Message: "invalid pagination parameters"},
		})
		return
	}
	if page.Page == 0 {
		page = dto.DefaultListRequest()
	}

	result, err := h.service.List(c.Request.Context(), page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Create saves a new dashboard configuration.
func (h *DashboardHandler) Create(c *gin.Context) {
	var input dashboard.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "body", Message: err.Error()},
		})
		return
	}

	created, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Get returns one dashboard by id.
func (h *DashboardHandler) Get(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// GetDefault returns the dashboard marked as default.
func (h *DashboardHandler) GetDefault(c *gin.Context) {
	d, err := h.service.GetDefault(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Update applies a partial update. Marking a dashboard default clears the
// flag on every other dashboard.
func (h *DashboardHandler) Update(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}

	var input dashboard.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "body", Message: err.Error()},
		})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete removes a dashboard.
func (h *DashboardHandler) Delete(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EnableSharing issues a share token for the dashboard. Repeated calls
// return the existing token.
func (h *DashboardHandler) EnableSharing(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	d, err := h.service.EnableSharing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": d.ID, "share_token": d.ShareToken, "is_shared": d.IsShared})
}

// DisableSharing revokes the dashboard's share token.
func (h *DashboardHandler) DisableSharing(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	d, err := h.service.DisableSharing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": d.ID, "is_shared": d.IsShared})
}

// GetShared resolves a dashboard by its public share token. The route is
// not bearer-protected.
func (h *DashboardHandler) GetShared(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "token", Message: "share token is required"},
		})
		return
	}
	d, err := h.service.GetShared(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}
