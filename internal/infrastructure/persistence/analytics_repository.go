package persistence

import (
	"fmt"
	"math"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements analytics.Repository over the sales
// schema. It holds no mutable state beyond the connection pool; every
// operation is an independent read and safe for concurrent use.
type GormAnalyticsRepository struct {
	db *gorm.DB
	d  sqlDialect

	// now is the clock used for trailing-window computations; overridden
	// in tests.
	now func() time.Time
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository.
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{
		db:  db,
		d:   dialectFor(db),
		now: time.Now,
	}
}

var _ analytics.Repository = (*GormAnalyticsRepository)(nil)

// storeError wraps a data-store failure so callers can detect it with
// errors.Is(err, analytics.ErrStoreUnavailable).
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, analytics.ErrStoreUnavailable, err)
}

// completedSales starts a filtered query over COMPLETED sales aliased as s.
func (r *GormAnalyticsRepository) completedSales(f analytics.SaleFilter) *gorm.DB {
	tx := r.db.Table("sales s").Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	return applySaleFilter(tx, r.d, "s", f)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// percentage returns part/total*100 rounded to two decimals, or 0 when the
// denominator is zero.
func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

var decimalHundred = decimal.NewFromInt(100)

// Revenue aggregates completed-sale revenue by the requested granularity.
func (r *GormAnalyticsRepository) Revenue(f analytics.SaleFilter, groupBy analytics.Granularity) ([]analytics.RevenuePoint, error) {
	var rows []struct {
		Period     string
		Revenue    decimal.Decimal
		SalesCount int64
		AvgTicket  decimal.Decimal
	}

	sel := fmt.Sprintf(
		"%s AS period, COALESCE(SUM(s.total_amount), 0) AS revenue, COUNT(s.id) AS sales_count, COALESCE(AVG(s.total_amount), 0) AS avg_ticket",
		r.d.periodExpr("s.created_at", groupBy),
	)

	err := r.completedSales(f).
		Select(sel).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("revenue by period", err)
	}

	points := make([]analytics.RevenuePoint, len(rows))
	for i, row := range rows {
		points[i] = analytics.RevenuePoint{
			Period:     row.Period,
			Revenue:    row.Revenue,
			SalesCount: row.SalesCount,
			AvgTicket:  row.AvgTicket.Round(2),
		}
	}
	return points, nil
}

// TopProducts ranks products by quantity sold.
func (r *GormAnalyticsRepository) TopProducts(f analytics.SaleFilter, limit int) ([]analytics.ProductRanking, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []struct {
		ProductName   string
		TotalQuantity decimal.Decimal
		SalesCount    int64
		TotalRevenue  decimal.Decimal
		AvgPrice      decimal.Decimal
	}

	tx := r.db.Table("product_sales ps").
		Select("p.name AS product_name, " +
			"COALESCE(SUM(ps.quantity), 0) AS total_quantity, " +
			"COUNT(ps.id) AS sales_count, " +
			"COALESCE(SUM(ps.total_price), 0) AS total_revenue, " +
			"COALESCE(AVG(ps.total_price), 0) AS avg_price").
		Joins("JOIN products p ON p.id = ps.product_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("p.id, p.name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("top products", err)
	}

	out := make([]analytics.ProductRanking, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductRanking{
			ProductName:   row.ProductName,
			TotalQuantity: row.TotalQuantity,
			SalesCount:    row.SalesCount,
			TotalRevenue:  row.TotalRevenue,
			AvgPrice:      row.AvgPrice.Round(2),
		}
	}
	return out, nil
}

// ChannelPerformance aggregates completed sales per channel, best first.
func (r *GormAnalyticsRepository) ChannelPerformance(f analytics.SaleFilter) ([]analytics.ChannelStats, error) {
	var rows []struct {
		ChannelName  string
		ChannelType  string
		TotalRevenue decimal.Decimal
		SalesCount   int64
		AvgTicket    decimal.Decimal
	}

	tx := r.db.Table("sales s").
		Select("c.name AS channel_name, c.type AS channel_type, "+
			"COALESCE(SUM(s.total_amount), 0) AS total_revenue, "+
			"COUNT(s.id) AS sales_count, "+
			"COALESCE(AVG(s.total_amount), 0) AS avg_ticket").
		Joins("JOIN channels c ON c.id = s.channel_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("c.id, c.name, c.type").
		Order("total_revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("channel performance", err)
	}

	out := make([]analytics.ChannelStats, len(rows))
	for i, row := range rows {
		out[i] = analytics.ChannelStats{
			ChannelName:  row.ChannelName,
			ChannelType:  row.ChannelType,
			TotalRevenue: row.TotalRevenue,
			SalesCount:   row.SalesCount,
			AvgTicket:    row.AvgTicket.Round(2),
		}
	}
	return out, nil
}

// MetricsSummary returns the global revenue summary for the window. A window
// matching no sales yields a zero-valued summary with nil sale bounds.
func (r *GormAnalyticsRepository) MetricsSummary(f analytics.SaleFilter) (*analytics.MetricsSummary, error) {
	var row struct {
		TotalRevenue decimal.Decimal
		SalesCount   int64
		AvgTicket    decimal.Decimal
	}

	err := r.completedSales(f).
		Select("COALESCE(SUM(s.total_amount), 0) AS total_revenue, " +
			"COUNT(s.id) AS sales_count, " +
			"COALESCE(AVG(s.total_amount), 0) AS avg_ticket").
		Scan(&row).Error
	if err != nil {
		return nil, storeError("metrics summary", err)
	}

	summary := &analytics.MetricsSummary{
		TotalRevenue: row.TotalRevenue,
		SalesCount:   row.SalesCount,
		AvgTicket:    row.AvgTicket.Round(2),
	}

	if row.SalesCount > 0 {
		// MIN/MAX lose the driver's timestamp conversion on SQLite, so the
		// bounds are read as ordered single-row queries instead.
		first, err := r.saleTimeBound(f, "ASC")
		if err != nil {
			return nil, err
		}
		last, err := r.saleTimeBound(f, "DESC")
		if err != nil {
			return nil, err
		}
		summary.FirstSale = first
		summary.LastSale = last
	}
	return summary, nil
}

func (r *GormAnalyticsRepository) saleTimeBound(f analytics.SaleFilter, dir string) (*time.Time, error) {
	var rows []struct {
		CreatedAt time.Time
	}
	err := r.completedSales(f).
		Select("s.created_at").
		Order("s.created_at " + dir).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("metrics summary bounds", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := rows[0].CreatedAt
	return &t, nil
}

// ProductsMargin lists products with positive modeled margin, lowest margin
// first. Cost is a fixed 70%-of-price heuristic: the schema records no
// actual product cost.
func (r *GormAnalyticsRepository) ProductsMargin(f analytics.SaleFilter, limit int) ([]analytics.ProductMargin, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []struct {
		ProductID     int64
		ProductName   string
		AvgPrice      decimal.Decimal
		AvgCost       decimal.Decimal
		Margin        decimal.Decimal
		TotalQuantity decimal.Decimal
		TotalRevenue  decimal.Decimal
	}

	tx := r.db.Table("product_sales ps").
		Select("p.id AS product_id, p.name AS product_name, " +
			"COALESCE(AVG(ps.base_price), 0) AS avg_price, " +
			"COALESCE(AVG(ps.base_price * 0.7), 0) AS avg_cost, " +
			"COALESCE(AVG(ps.base_price) - AVG(ps.base_price * 0.7), 0) AS margin, " +
			"COALESCE(SUM(ps.quantity), 0) AS total_quantity, " +
			"COALESCE(SUM(ps.total_price), 0) AS total_revenue").
		Joins("JOIN products p ON p.id = ps.product_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("p.id, p.name").
		Having("AVG(ps.base_price) - AVG(ps.base_price * 0.7) > 0").
		Order("margin ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("products margin", err)
	}

	out := make([]analytics.ProductMargin, len(rows))
	for i, row := range rows {
		marginPct := decimal.Zero
		if !row.AvgPrice.IsZero() {
			marginPct = row.Margin.Div(row.AvgPrice).Mul(decimalHundred).Round(2)
		}
		out[i] = analytics.ProductMargin{
			ProductID:        row.ProductID,
			ProductName:      row.ProductName,
			AvgPrice:         row.AvgPrice.Round(2),
			AvgCost:          row.AvgCost.Round(2),
			Margin:           row.Margin.Round(2),
			MarginPercentage: marginPct,
			TotalQuantity:    row.TotalQuantity,
			TotalRevenue:     row.TotalRevenue,
		}
	}
	return out, nil
}

// PromotionsAnalysis summarizes discounts and surcharges over the window.
func (r *GormAnalyticsRepository) PromotionsAnalysis(f analytics.SaleFilter) (*analytics.PromotionStats, error) {
	var row struct {
		TotalDiscounts    decimal.Decimal
		TotalIncreases    decimal.Decimal
		TotalSales        int64
		SalesWithDiscount int64
		SalesWithIncrease int64
		AvgDiscount       decimal.Decimal
		AvgIncrease       decimal.Decimal
	}

	err := r.completedSales(f).
		Select("COALESCE(SUM(s.total_discount), 0) AS total_discounts, " +
			"COALESCE(SUM(s.total_increase), 0) AS total_increases, " +
			"COUNT(s.id) AS total_sales, " +
			"COALESCE(SUM(CASE WHEN s.total_discount > 0 THEN 1 ELSE 0 END), 0) AS sales_with_discount, " +
			"COALESCE(SUM(CASE WHEN s.total_increase > 0 THEN 1 ELSE 0 END), 0) AS sales_with_increase, " +
			"COALESCE(AVG(s.total_discount), 0) AS avg_discount, " +
			"COALESCE(AVG(s.total_increase), 0) AS avg_increase").
		Scan(&row).Error
	if err != nil {
		return nil, storeError("promotions analysis", err)
	}

	var reasons []struct {
		Reason        string
		ReasonCount   int64
		TotalDiscount decimal.Decimal
	}
	tx := r.completedSales(f).
		Select("s.discount_reason AS reason, COUNT(s.id) AS reason_count, COALESCE(SUM(s.total_discount), 0) AS total_discount").
		Where("s.total_discount > 0")
	err = tx.Group("s.discount_reason").
		Order("reason_count DESC").
		Limit(10).
		Scan(&reasons).Error
	if err != nil {
		return nil, storeError("promotions analysis", err)
	}

	out := &analytics.PromotionStats{
		TotalDiscounts:     row.TotalDiscounts,
		TotalIncreases:     row.TotalIncreases,
		TotalSales:         row.TotalSales,
		SalesWithDiscount:  row.SalesWithDiscount,
		SalesWithIncrease:  row.SalesWithIncrease,
		AvgDiscount:        row.AvgDiscount.Round(2),
		AvgIncrease:        row.AvgIncrease.Round(2),
		DiscountPercentage: percentage(row.SalesWithDiscount, row.TotalSales),
		IncreasePercentage: percentage(row.SalesWithIncrease, row.TotalSales),
		DiscountReasons:    make([]analytics.DiscountReason, len(reasons)),
	}
	for i, reason := range reasons {
		label := reason.Reason
		if label == "" {
			label = "No reason given"
		}
		out.DiscountReasons[i] = analytics.DiscountReason{
			Reason:        label,
			Count:         reason.ReasonCount,
			TotalDiscount: reason.TotalDiscount,
		}
	}
	return out, nil
}

// InventoryTurnover reports per-product sales velocity. The daily velocity
// divides quantity sold by the filter window length, defaulting to 30 days.
func (r *GormAnalyticsRepository) InventoryTurnover(f analytics.SaleFilter, limit int) ([]analytics.InventoryTurnover, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []struct {
		ProductID          int64
		ProductName        string
		TotalQuantitySold  decimal.Decimal
		SalesCount         int64
		AvgQuantityPerSale decimal.Decimal
		TotalRevenue       decimal.Decimal
		AvgPrice           decimal.Decimal
	}

	tx := r.db.Table("product_sales ps").
		Select("p.id AS product_id, p.name AS product_name, " +
			"COALESCE(SUM(ps.quantity), 0) AS total_quantity_sold, " +
			"COUNT(ps.id) AS sales_count, " +
			"COALESCE(AVG(ps.quantity), 0) AS avg_quantity_per_sale, " +
			"COALESCE(SUM(ps.total_price), 0) AS total_revenue, " +
			"COALESCE(AVG(ps.base_price), 0) AS avg_price").
		Joins("JOIN products p ON p.id = ps.product_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("p.id, p.name").
		Order("total_quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("inventory turnover", err)
	}

	periodDays := f.PeriodDays(30)
	out := make([]analytics.InventoryTurnover, len(rows))
	for i, row := range rows {
		velocity := round2(row.TotalQuantitySold.InexactFloat64() / float64(periodDays))
		out[i] = analytics.InventoryTurnover{
			ProductID:          row.ProductID,
			ProductName:        row.ProductName,
			TotalQuantitySold:  row.TotalQuantitySold,
			SalesCount:         row.SalesCount,
			AvgQuantityPerSale: row.AvgQuantityPerSale.Round(2),
			TotalRevenue:       row.TotalRevenue,
			AvgPrice:           row.AvgPrice.Round(2),
			DailyVelocity:      velocity,
			TurnoverScore:      velocity,
		}
	}
	return out, nil
}
