package handler

import (
	"github.com/gin-gonic/gin"

	appanalytics "github.com/resto-bi/backend/internal/application/analytics"
	"github.com/resto-bi/backend/internal/interfaces/http/dto"
)

// CacheHandler exposes the operational surface of the result cache:
// status, full flush and pattern invalidation.
type CacheHandler struct {
	BaseHandler
	service *appanalytics.Service
}

func NewCacheHandler(service *appanalytics.Service) *CacheHandler {
	return &CacheHandler{service: service}
}

// Status reports cache connectivity and the number of cached results.
func (h *CacheHandler) Status(c *gin.Context) {
	h.Success(c, h.service.Status(c.Request.Context()))
}

// Clear removes every cached analytics result.
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.service.Flush(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cleared": true})
}

// Invalidate removes cached results whose keys match the glob pattern.
func (h *CacheHandler) Invalidate(c *gin.Context) {
	pattern := c.Param("pattern")
	if pattern == "" {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "pattern", Message: "pattern is required"},
		})
		return
	}
	removed, err := h.service.Invalidate(c.Request.Context(), pattern)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"pattern": pattern, "keys_removed": removed})
}
