package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
)

// StoreLister serves the store and channel dimension listings.
type StoreLister interface {
	ListActiveStores(ctx context.Context) ([]models.Store, error)
	ListChannels(ctx context.Context) ([]models.Channel, error)
}

// StoresHandler exposes the dimension tables used to populate filter
// dropdowns.
type StoresHandler struct {
	BaseHandler
	stores StoreLister
}

func NewStoresHandler(stores StoreLister) *StoresHandler {
	return &StoresHandler{stores: stores}
}

// List returns the active stores ordered by name.
func (h *StoresHandler) List(c *gin.Context) {
	stores, err := h.stores.ListActiveStores(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stores)
}

// Channels returns all sales channels ordered by name.
func (h *StoresHandler) Channels(c *gin.Context) {
	channels, err := h.stores.ListChannels(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channels)
}
