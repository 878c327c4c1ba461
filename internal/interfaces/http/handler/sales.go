package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resto-bi/backend/internal/application/sales"
	"github.com/resto-bi/backend/internal/interfaces/http/dto"
)

// SalesHandler exposes the raw sale records behind the analytics: listing,
// detail lookup and atomic ingestion of a sale with its child rows.
type SalesHandler struct {
	BaseHandler
	service *sales.Service
}

func NewSalesHandler(service *sales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// List returns sales matching the shared filter set, newest first.
func (h *SalesHandler) List(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}

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

	result, err := h.service.List(c.Request.Context(), f, page.Page, page.PageSize,
		c.Query("sort"), c.Query("order"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns one sale with its product lines, payments and delivery data.
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "id", Message: "sale id must be a positive integer"},
		})
		return
	}

	sale, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Create ingests a sale with all its child records in one transaction.
func (h *SalesHandler) Create(c *gin.Context) {
	var input sales.CreateSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "body", Message: err.Error()},
		})
		return
	}

	sale, err := h.service.Ingest(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}
