package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appanalytics "github.com/resto-bi/backend/internal/application/analytics"
	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/interfaces/http/dto"
)

// AnalyticsHandler exposes the aggregation endpoints. Every endpoint shares
// the same filter vocabulary (dates, store, channel, day-of-week, hour range)
// and rejects out-of-range values before touching the engine.
type AnalyticsHandler struct {
	BaseHandler
	service *appanalytics.Service
}

func NewAnalyticsHandler(service *appanalytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// analyticsQuery carries the raw query parameters shared by the analytics
// endpoints. Limits and thresholds are bound per-endpoint on top of it.
type analyticsQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	StoreID   *int64 `form:"store_id"`
	ChannelID *int64 `form:"channel_id"`
	DayOfWeek *int   `form:"day_of_week"`
	HourStart *int   `form:"hour_start"`
	HourEnd   *int   `form:"hour_end"`
}

// parseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseSaleFilter binds and validates the shared filter parameters.
// It returns field-level details when any value is malformed or out of
// range; the caller responds 400 without running the query.
func parseSaleFilter(c *gin.Context) (analytics.SaleFilter, []dto.ValidationDetail) {
	var q analyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return analytics.SaleFilter{}, []dto.ValidationDetail{
			{Field: "query", Message: err.Error()},
		}
	}

	var f analytics.SaleFilter
	var details []dto.ValidationDetail

	if q.StartDate != "" {
		t, err := parseDate(q.StartDate)
		if err != nil {
			details = append(details, dto.ValidationDetail{
				Field: "start_date", Message: "invalid date format: " + q.StartDate,
			})
		} else {
			f.StartDate = &t
		}
	}
	if q.EndDate != "" {
		t, err := parseDate(q.EndDate)
		if err != nil {
			details = append(details, dto.ValidationDetail{
				Field: "end_date", Message: "invalid date format: " + q.EndDate,
			})
		} else {
			f.EndDate = &t
		}
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		details = append(details, dto.ValidationDetail{
			Field: "start_date", Message: "start date must not be after end date",
		})
	}
	if q.DayOfWeek != nil && (*q.DayOfWeek < 0 || *q.DayOfWeek > 6) {
		details = append(details, dto.ValidationDetail{
			Field: "day_of_week", Message: "day of week must be between 0 (Monday) and 6 (Sunday)",
		})
	}
	if q.HourStart != nil && (*q.HourStart < 0 || *q.HourStart > 23) {
		details = append(details, dto.ValidationDetail{
			Field: "hour_start", Message: "hour must be between 0 and 23",
		})
	}
	if q.HourEnd != nil && (*q.HourEnd < 0 || *q.HourEnd > 23) {
		details = append(details, dto.ValidationDetail{
			Field: "hour_end", Message: "hour must be between 0 and 23",
		})
	}
	if details != nil {
		return analytics.SaleFilter{}, details
	}

	f.StoreID = q.StoreID
	f.ChannelID = q.ChannelID
	f.DayOfWeek = q.DayOfWeek
	f.HourStart = q.HourStart
	f.HourEnd = q.HourEnd
	return f, nil
}

// parseLimit validates a positive limit with a per-endpoint default and cap.
func parseLimit(c *gin.Context, def, max int) (int, *dto.ValidationDetail) {
	s := c.Query("limit")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, &dto.ValidationDetail{Field: "limit", Message: "limit must be a positive integer"}
	}
	return n, nil
}

// parseRate validates a float parameter bounded to [min, max].
func parseRate(c *gin.Context, name string, def, min, max float64) (float64, *dto.ValidationDetail) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < min || v > max {
		return 0, &dto.ValidationDetail{Field: name, Message: "value out of range"}
	}
	return v, nil
}

func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	groupBy := analytics.ParseGranularity(c.DefaultQuery("group_by", "day"))
	data, err := h.service.Revenue(c.Request.Context(), f, groupBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 10, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.TopProducts(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) ChannelPerformance(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.ChannelPerformance(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.MetricsSummary(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) ProductsMargin(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 20, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.ProductsMargin(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) DeliveryPerformance(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	groupBy := analytics.ParseGranularity(c.DefaultQuery("group_by", "day"))
	data, err := h.service.DeliveryPerformance(c.Request.Context(), f, groupBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) CustomerInsights(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.CustomerInsights(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) PeakHoursHeatmap(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.PeakHoursHeatmap(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) AnomalyAlerts(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.AnomalyAlerts(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) TopItems(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 20, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.TopItems(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) ProductCustomizations(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 20, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.ProductsWithMostCustomizations(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) PaymentMix(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.PaymentMixByChannel(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) Cancellations(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.CancellationsAnalysis(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) DeliveryRegions(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 50, 200)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.DeliveryPerformanceByRegion(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) StoreGrowth(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	minRate, bad := parseRate(c, "min_growth_rate", 5.0, 0, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.StoreGrowthAnalysis(c.Request.Context(), f, minRate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) ProductSeasonality(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	threshold, bad := parseRate(c, "min_threshold", 0.3, 0, 1)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.ProductSeasonalityAnalysis(c.Request.Context(), f, threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) Promotions(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	data, err := h.service.PromotionsAnalysis(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *AnalyticsHandler) InventoryTurnover(c *gin.Context) {
	f, details := parseSaleFilter(c)
	if details != nil {
		h.ValidationError(c, details)
		return
	}
	limit, bad := parseLimit(c, 20, 100)
	if bad != nil {
		h.ValidationError(c, []dto.ValidationDetail{*bad})
		return
	}
	data, err := h.service.InventoryTurnover(c.Request.Context(), f, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}
