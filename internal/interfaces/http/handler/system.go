package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appanalytics "github.com/resto-bi/backend/internal/application/analytics"
)

// Pinger reports whether the backing data store is reachable.
type Pinger interface {
	Ping() error
}

// SystemHandler serves the liveness endpoint. The response always carries
// the component states; the status code stays 200 so load balancers keep
// routing while the cache is degraded.
type SystemHandler struct {
	BaseHandler
	db        Pinger
	analytics *appanalytics.Service
	version   string
}

func NewSystemHandler(db Pinger, analytics *appanalytics.Service, version string) *SystemHandler {
	return &SystemHandler{db: db, analytics: analytics, version: version}
}

// Health reports service, database and cache states.
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "connected"
	status := "ok"
	if h.db == nil {
		dbStatus = "disconnected"
		status = "degraded"
	} else if err := h.db.Ping(); err != nil {
		dbStatus = "error"
		status = "degraded"
	}

	cache := h.analytics.Status(c.Request.Context())
	if cache.Status != "connected" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"version":  h.version,
		"database": dbStatus,
		"cache":    cache.Status,
	})
}
