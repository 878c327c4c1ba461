package persistence

import (
	"fmt"
	"sort"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
)

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func periodKey(t time.Time, g analytics.Granularity) string {
	switch g {
	case analytics.GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case analytics.GranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// DeliveryPerformance summarizes delivery timers per period. The timer
// distribution (min/max) does not compose across SQL groups the same way on
// both dialects, so rows are bucketed here instead.
func (r *GormAnalyticsRepository) DeliveryPerformance(f analytics.SaleFilter, groupBy analytics.Granularity) ([]analytics.DeliveryPeriodStats, error) {
	var rows []struct {
		CreatedAt       time.Time
		DeliverySeconds int
	}

	tx := r.db.Table("sales s").Where("s.delivery_seconds IS NOT NULL")
	tx = applySaleFilter(tx, r.d, "s", f)
	err := tx.Select("s.created_at, s.delivery_seconds").Scan(&rows).Error
	if err != nil {
		return nil, storeError("delivery performance", err)
	}

	type bucket struct {
		count    int64
		sum      float64
		min, max float64
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := periodKey(row.CreatedAt, groupBy)
		minutes := float64(row.DeliverySeconds) / 60

		b, ok := buckets[key]
		if !ok {
			b = &bucket{min: minutes, max: minutes}
			buckets[key] = b
		}
		b.count++
		b.sum += minutes
		if minutes < b.min {
			b.min = minutes
		}
		if minutes > b.max {
			b.max = minutes
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]analytics.DeliveryPeriodStats, len(keys))
	for i, key := range keys {
		b := buckets[key]
		out[i] = analytics.DeliveryPeriodStats{
			Period:          key,
			TotalDeliveries: b.count,
			AvgDeliveryTime: round2(b.sum / float64(b.count)),
			MinDeliveryTime: round2(b.min),
			MaxDeliveryTime: round2(b.max),
		}
	}
	return out, nil
}

// DeliveryPerformanceByRegion summarizes completed deliveries per address
// region. Regions with fewer than five deliveries are dropped; they are too
// small to compare.
func (r *GormAnalyticsRepository) DeliveryPerformanceByRegion(f analytics.SaleFilter, limit int) ([]analytics.RegionDeliveryStats, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []struct {
		Neighborhood    string
		City            string
		State           string
		DeliveryCount   int64
		AvgDeliveryTime float64
		MinDeliveryTime float64
		MaxDeliveryTime float64
		TotalRevenue    decimal.Decimal
	}

	tx := r.db.Table("delivery_sales ds").
		Select("da.neighborhood, da.city, da.state, "+
			"COUNT(ds.id) AS delivery_count, "+
			"COALESCE(AVG(s.delivery_seconds / 60.0), 0) AS avg_delivery_time, "+
			"COALESCE(MIN(s.delivery_seconds / 60.0), 0) AS min_delivery_time, "+
			"COALESCE(MAX(s.delivery_seconds / 60.0), 0) AS max_delivery_time, "+
			"COALESCE(SUM(s.total_amount), 0) AS total_revenue").
		Joins("JOIN sales s ON s.id = ds.sale_id").
		Joins("JOIN delivery_addresses da ON da.delivery_sale_id = ds.id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted).
		Where("s.delivery_seconds IS NOT NULL")
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("da.neighborhood, da.city, da.state").
		Having("COUNT(ds.id) >= ?", 5).
		Order("delivery_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("delivery performance by region", err)
	}

	out := make([]analytics.RegionDeliveryStats, len(rows))
	for i, row := range rows {
		out[i] = analytics.RegionDeliveryStats{
			Neighborhood:    row.Neighborhood,
			City:            row.City,
			State:           row.State,
			DeliveryCount:   row.DeliveryCount,
			AvgDeliveryTime: round2(row.AvgDeliveryTime),
			MinDeliveryTime: round2(row.MinDeliveryTime),
			MaxDeliveryTime: round2(row.MaxDeliveryTime),
			TotalRevenue:    row.TotalRevenue,
		}
	}
	return out, nil
}

// PeakHoursHeatmap counts completed sales per (day of week, hour) cell.
// Days use the native convention, 0=Sunday.
func (r *GormAnalyticsRepository) PeakHoursHeatmap(f analytics.SaleFilter) ([]analytics.HeatmapCell, error) {
	var rows []struct {
		DayOfWeek    int
		Hour         int
		SalesCount   int64
		TotalRevenue decimal.Decimal
	}

	sel := fmt.Sprintf(
		"%s AS day_of_week, %s AS hour, COUNT(s.id) AS sales_count, COALESCE(SUM(s.total_amount), 0) AS total_revenue",
		r.d.dowExpr("s.created_at"), r.d.hourExpr("s.created_at"),
	)

	err := r.completedSales(f).
		Select(sel).
		Group("day_of_week, hour").
		Order("day_of_week ASC, hour ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("peak hours heatmap", err)
	}

	out := make([]analytics.HeatmapCell, len(rows))
	for i, row := range rows {
		name := ""
		if row.DayOfWeek >= 0 && row.DayOfWeek < len(dayNames) {
			name = dayNames[row.DayOfWeek]
		}
		out[i] = analytics.HeatmapCell{
			Day:          row.DayOfWeek,
			DayName:      name,
			Hour:         row.Hour,
			SalesCount:   row.SalesCount,
			TotalRevenue: row.TotalRevenue,
		}
	}
	return out, nil
}
