package persistence

import (
	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// identifiedSales starts a filtered query over sales that carry a customer.
func (r *GormAnalyticsRepository) identifiedSales(f analytics.SaleFilter) *gorm.DB {
	tx := r.db.Table("sales s").Where("s.customer_id IS NOT NULL")
	return applySaleFilter(tx, r.d, "s", f)
}

// CustomerInsights summarizes the identified customer base. A customer is
// frequent at three or more purchases and inactive when their latest purchase
// in the window is older than thirty days.
func (r *GormAnalyticsRepository) CustomerInsights(f analytics.SaleFilter) (*analytics.CustomerInsights, error) {
	var totals struct {
		TotalCustomers int64
		TotalPurchases int64
	}
	err := r.identifiedSales(f).
		Select("COUNT(DISTINCT s.customer_id) AS total_customers, COUNT(s.id) AS total_purchases").
		Scan(&totals).Error
	if err != nil {
		return nil, storeError("customer insights", err)
	}

	var frequent int64
	err = r.db.Table("(?) AS fc", r.identifiedSales(f).
		Select("s.customer_id").
		Group("s.customer_id").
		Having("COUNT(s.id) >= ?", 3),
	).Count(&frequent).Error
	if err != nil {
		return nil, storeError("customer insights", err)
	}

	thirtyDaysAgo := r.now().AddDate(0, 0, -30)
	var inactive int64
	err = r.db.Table("(?) AS ic", r.identifiedSales(f).
		Select("s.customer_id").
		Group("s.customer_id").
		Having("MAX(s.created_at) < ?", thirtyDaysAgo),
	).Count(&inactive).Error
	if err != nil {
		return nil, storeError("customer insights", err)
	}

	out := &analytics.CustomerInsights{
		TotalCustomers:             totals.TotalCustomers,
		FrequentCustomers:          frequent,
		InactiveCustomers:          inactive,
		FrequentCustomerPercentage: percentage(frequent, totals.TotalCustomers),
		InactiveCustomerPercentage: percentage(inactive, totals.TotalCustomers),
	}
	if totals.TotalCustomers > 0 {
		out.AvgPurchasesPerCustomer = round2(float64(totals.TotalPurchases) / float64(totals.TotalCustomers))
	}
	return out, nil
}

// CancellationsAnalysis reports cancelled sales against all sales in the
// window, broken down by channel and by hour of day.
func (r *GormAnalyticsRepository) CancellationsAnalysis(f analytics.SaleFilter) (*analytics.CancellationStats, error) {
	cancelled := func() *gorm.DB {
		tx := r.db.Table("sales s").Where("s.sale_status_desc = ?", models.SaleStatusCancelled)
		return applySaleFilter(tx, r.d, "s", f)
	}

	var totalCancellations int64
	if err := cancelled().Count(&totalCancellations).Error; err != nil {
		return nil, storeError("cancellations analysis", err)
	}

	var totalSales int64
	if err := applySaleFilter(r.db.Table("sales s"), r.d, "s", f).Count(&totalSales).Error; err != nil {
		return nil, storeError("cancellations analysis", err)
	}

	var byChannel []struct {
		ChannelName       string
		ChannelType       string
		CancellationCount int64
		LostRevenue       decimal.Decimal
	}
	err := cancelled().
		Select("c.name AS channel_name, c.type AS channel_type, "+
			"COUNT(s.id) AS cancellation_count, "+
			"COALESCE(SUM(s.total_amount), 0) AS lost_revenue").
		Joins("JOIN channels c ON c.id = s.channel_id").
		Group("c.id, c.name, c.type").
		Order("cancellation_count DESC").
		Scan(&byChannel).Error
	if err != nil {
		return nil, storeError("cancellations analysis", err)
	}

	hourCol := r.d.hourExpr("s.created_at")
	var byHour []struct {
		Hour              int
		CancellationCount int64
	}
	err = cancelled().
		Select(hourCol + " AS hour, COUNT(s.id) AS cancellation_count").
		Group("hour").
		Order("hour ASC").
		Scan(&byHour).Error
	if err != nil {
		return nil, storeError("cancellations analysis", err)
	}

	out := &analytics.CancellationStats{
		TotalCancellations: totalCancellations,
		TotalSales:         totalSales,
		CancellationRate:   percentage(totalCancellations, totalSales),
		ByChannel:          make([]analytics.ChannelCancellations, len(byChannel)),
		ByHour:             make([]analytics.HourCancellations, len(byHour)),
	}
	for i, row := range byChannel {
		out.ByChannel[i] = analytics.ChannelCancellations{
			ChannelName:       row.ChannelName,
			ChannelType:       row.ChannelType,
			CancellationCount: row.CancellationCount,
			LostRevenue:       row.LostRevenue,
		}
	}
	for i, row := range byHour {
		out.ByHour[i] = analytics.HourCancellations{
			Hour:              row.Hour,
			CancellationCount: row.CancellationCount,
		}
	}
	return out, nil
}

// PaymentMixByChannel breaks down payments per channel and payment type.
// Percentage is each type's share of the channel's payment count.
func (r *GormAnalyticsRepository) PaymentMixByChannel(f analytics.SaleFilter) ([]analytics.PaymentMix, error) {
	var rows []struct {
		ChannelName  string
		PaymentType  string
		PaymentCount int64
		TotalValue   decimal.Decimal
	}

	tx := r.db.Table("payments pay").
		Select("c.name AS channel_name, pt.description AS payment_type, "+
			"COUNT(pay.id) AS payment_count, "+
			"COALESCE(SUM(pay.value), 0) AS total_value").
		Joins("JOIN payment_types pt ON pt.id = pay.payment_type_id").
		Joins("JOIN sales s ON s.id = pay.sale_id").
		Joins("JOIN channels c ON c.id = s.channel_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("c.name, pt.description").
		Order("channel_name ASC, payment_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("payment mix by channel", err)
	}

	channelTotals := make(map[string]int64, len(rows))
	for _, row := range rows {
		channelTotals[row.ChannelName] += row.PaymentCount
	}

	out := make([]analytics.PaymentMix, len(rows))
	for i, row := range rows {
		out[i] = analytics.PaymentMix{
			ChannelName:  row.ChannelName,
			PaymentType:  row.PaymentType,
			PaymentCount: row.PaymentCount,
			TotalValue:   row.TotalValue,
			Percentage:   percentage(row.PaymentCount, channelTotals[row.ChannelName]),
		}
	}
	return out, nil
}

// TopItems ranks add-on items by how often they were attached to a line.
func (r *GormAnalyticsRepository) TopItems(f analytics.SaleFilter, limit int) ([]analytics.ItemRanking, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []struct {
		ItemName         string
		TimesAdded       int64
		RevenueGenerated decimal.Decimal
		AvgPrice         decimal.Decimal
		UniqueProducts   int64
	}

	tx := r.db.Table("item_product_sales ips").
		Select("i.name AS item_name, " +
			"COUNT(ips.id) AS times_added, " +
			"COALESCE(SUM(ips.additional_price), 0) AS revenue_generated, " +
			"COALESCE(AVG(ips.additional_price), 0) AS avg_price, " +
			"COUNT(DISTINCT ips.product_sale_id) AS unique_products").
		Joins("JOIN items i ON i.id = ips.item_id").
		Joins("JOIN product_sales ps ON ps.id = ips.product_sale_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("i.name").
		Order("times_added DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("top items", err)
	}

	out := make([]analytics.ItemRanking, len(rows))
	for i, row := range rows {
		out[i] = analytics.ItemRanking{
			ItemName:         row.ItemName,
			TimesAdded:       row.TimesAdded,
			RevenueGenerated: row.RevenueGenerated,
			AvgPrice:         row.AvgPrice.Round(2),
			UniqueProducts:   row.UniqueProducts,
		}
	}
	return out, nil
}

// ProductsWithMostCustomizations ranks products by the share of their lines
// carrying at least one add-on. The left join keeps never-customized products
// in the denominator.
func (r *GormAnalyticsRepository) ProductsWithMostCustomizations(f analytics.SaleFilter, limit int) ([]analytics.ProductCustomization, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []struct {
		ProductName             string
		TotalCustomizations     int64
		SalesWithCustomizations int64
		TotalSales              int64
	}

	tx := r.db.Table("product_sales ps").
		Select("p.name AS product_name, " +
			"COUNT(ips.id) AS total_customizations, " +
			"COUNT(DISTINCT ips.product_sale_id) AS sales_with_customizations, " +
			"COUNT(DISTINCT ps.id) AS total_sales").
		Joins("JOIN products p ON p.id = ps.product_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Joins("LEFT JOIN item_product_sales ips ON ips.product_sale_id = ps.id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("p.name").
		Order("(COUNT(DISTINCT ips.product_sale_id) * 100.0 / COUNT(DISTINCT ps.id)) DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("products with most customizations", err)
	}

	out := make([]analytics.ProductCustomization, len(rows))
	for i, row := range rows {
		rate := 0.0
		if row.TotalSales > 0 {
			rate = round2(float64(row.SalesWithCustomizations) / float64(row.TotalSales) * 100)
		}
		out[i] = analytics.ProductCustomization{
			ProductName:             row.ProductName,
			TotalCustomizations:     row.TotalCustomizations,
			SalesWithCustomizations: row.SalesWithCustomizations,
			TotalSales:              row.TotalSales,
			CustomizationRate:       rate,
		}
	}
	return out, nil
}
