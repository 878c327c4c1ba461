package persistence

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
)

// linearSlope fits y = slope*x + intercept over x = 0..len(ys)-1.
// ok is false when the series is degenerate.
func linearSlope(ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(ys))
	if n < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

// rSquared measures how well the fitted line explains the series, clamped
// to [0, 1].
func rSquared(ys []float64, slope, intercept float64) float64 {
	n := float64(len(ys))
	if n == 0 {
		return 0
	}
	var sumY float64
	for _, y := range ys {
		sumY += y
	}
	mean := sumY / n

	var ssTot, ssRes float64
	for i, y := range ys {
		ssTot += (y - mean) * (y - mean)
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
	}
	if ssTot <= 0 {
		return 0
	}
	return math.Max(0, 1-ssRes/ssTot)
}

func variance(vs []float64, mean float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(vs))
}

// windowed returns the filter with date bounds defaulted to the trailing
// window of the given length ending now.
func (r *GormAnalyticsRepository) windowed(f analytics.SaleFilter, days int) analytics.SaleFilter {
	if f.EndDate == nil {
		end := r.now()
		f.EndDate = &end
	}
	if f.StartDate == nil {
		start := f.EndDate.AddDate(0, 0, -days)
		f.StartDate = &start
	}
	return f
}

type periodTotals struct {
	SalesCount   int64
	TotalRevenue decimal.Decimal
	AvgTicket    decimal.Decimal
}

func (r *GormAnalyticsRepository) periodTotals(f analytics.SaleFilter) (*periodTotals, error) {
	var row periodTotals
	tx := applySaleFilter(r.db.Table("sales s"), r.d, "s", f)
	err := tx.Select("COUNT(s.id) AS sales_count, " +
		"COALESCE(SUM(s.total_amount), 0) AS total_revenue, " +
		"COALESCE(AVG(s.total_amount), 0) AS avg_ticket").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// pctChange returns the percentage change from prev to curr.
func pctChange(curr, prev decimal.Decimal) float64 {
	return curr.Sub(prev).Div(prev).InexactFloat64() * 100
}

// AnomalyAlerts compares the filtered window against the preceding window of
// equal length and emits heuristic alerts. Period comparisons need both date
// bounds; the delivery and trend checks run regardless.
func (r *GormAnalyticsRepository) AnomalyAlerts(f analytics.SaleFilter) ([]analytics.Alert, error) {
	alerts := []analytics.Alert{}
	now := r.now()

	current, err := r.periodTotals(f)
	if err != nil {
		return nil, storeError("anomaly alerts", err)
	}

	if f.StartDate != nil && f.EndDate != nil {
		periodDays := f.PeriodDays(0)
		prevStart := f.StartDate.AddDate(0, 0, -periodDays)
		prevEnd := f.StartDate.Add(-time.Nanosecond)

		prevFilter := f
		prevFilter.StartDate = &prevStart
		prevFilter.EndDate = &prevEnd

		previous, err := r.periodTotals(prevFilter)
		if err != nil {
			return nil, storeError("anomaly alerts", err)
		}

		if previous.TotalRevenue.IsPositive() {
			change := pctChange(current.TotalRevenue, previous.TotalRevenue)
			if change <= -20 {
				severity := analytics.SeverityMedium
				if change < -30 {
					severity = analytics.SeverityHigh
				}
				alerts = append(alerts, analytics.Alert{
					ID:        "revenue_decrease",
					Type:      "warning",
					Title:     "Significant Revenue Drop",
					Message:   fmt.Sprintf("Revenue dropped %.1f%% versus the previous period", math.Abs(change)),
					Severity:  severity,
					Timestamp: now,
				})
			} else if change > 50 {
				alerts = append(alerts, analytics.Alert{
					ID:        "revenue_increase",
					Type:      "info",
					Title:     "Significant Revenue Increase",
					Message:   fmt.Sprintf("Revenue grew %.1f%% versus the previous period", change),
					Severity:  analytics.SeverityLow,
					Timestamp: now,
				})
			}
		}

		if previous.SalesCount > 0 {
			change := float64(current.SalesCount-previous.SalesCount) / float64(previous.SalesCount) * 100
			if change <= -15 {
				alerts = append(alerts, analytics.Alert{
					ID:        "sales_decrease",
					Type:      "warning",
					Title:     "Sales Volume Drop",
					Message:   fmt.Sprintf("Sales count dropped %.1f%% versus the previous period", math.Abs(change)),
					Severity:  analytics.SeverityMedium,
					Timestamp: now,
				})
			}
		}

		if previous.AvgTicket.IsPositive() {
			change := pctChange(current.AvgTicket, previous.AvgTicket)
			if change <= -10 {
				alerts = append(alerts, analytics.Alert{
					ID:        "ticket_decrease",
					Type:      "warning",
					Title:     "Average Ticket Drop",
					Message:   fmt.Sprintf("Average ticket dropped %.1f%% versus the previous period", math.Abs(change)),
					Severity:  analytics.SeverityMedium,
					Timestamp: now,
				})
			}
		}
	}

	var avgDeliverySeconds []struct {
		Avg float64
	}
	tx := applySaleFilter(r.db.Table("sales s"), r.d, "s", f)
	err = tx.Select("COALESCE(AVG(s.delivery_seconds), 0) AS avg").Scan(&avgDeliverySeconds).Error
	if err != nil {
		return nil, storeError("anomaly alerts", err)
	}
	if len(avgDeliverySeconds) > 0 {
		avgMinutes := avgDeliverySeconds[0].Avg / 60
		if avgMinutes > 45 {
			alerts = append(alerts, analytics.Alert{
				ID:        "delivery_slow",
				Type:      "warning",
				Title:     "High Delivery Time",
				Message:   fmt.Sprintf("Average delivery time is %.1f minutes", avgMinutes),
				Severity:  analytics.SeverityMedium,
				Timestamp: now,
			})
		}
	}

	if current.SalesCount > 0 {
		weekAgo := now.AddDate(0, 0, -7)
		recentFilter := analytics.SaleFilter{StartDate: &weekAgo, StoreID: f.StoreID}

		var recentCount int64
		err = applySaleFilter(r.db.Table("sales s"), r.d, "s", recentFilter).Count(&recentCount).Error
		if err != nil {
			return nil, storeError("anomaly alerts", err)
		}

		weeklyAvg := float64(current.SalesCount) / float64(f.PeriodDays(30)) * 7
		if recentCount > 0 && float64(recentCount) < weeklyAvg*0.7 {
			alerts = append(alerts, analytics.Alert{
				ID:        "sales_trend_down",
				Type:      "warning",
				Title:     "Sales Trend Declining",
				Message:   "Last week's sales are 30% below the weekly average",
				Severity:  analytics.SeverityMedium,
				Timestamp: now,
			})
		}
	}

	return alerts, nil
}

// StoreGrowthAnalysis classifies each store's monthly revenue trend. Stores
// need at least three months of completed sales and a non-zero first month.
// The window defaults to the trailing 180 days.
func (r *GormAnalyticsRepository) StoreGrowthAnalysis(f analytics.SaleFilter, minGrowthRate float64) ([]analytics.StoreGrowth, error) {
	f = r.windowed(f, 180)

	var rows []struct {
		StoreID        int64
		StoreName      string
		City           string
		State          string
		Month          string
		MonthlyRevenue decimal.Decimal
		MonthlySales   int64
	}

	monthCol := r.d.periodExpr("s.created_at", analytics.GranularityMonth)
	tx := r.completedSales(f).
		Select(fmt.Sprintf("st.id AS store_id, st.name AS store_name, st.city, st.state, "+
			"%s AS month, "+
			"COALESCE(SUM(s.total_amount), 0) AS monthly_revenue, "+
			"COUNT(s.id) AS monthly_sales", monthCol)).
		Joins("JOIN stores st ON st.id = s.store_id")

	err := tx.Group("st.id, st.name, st.city, st.state, month").
		Order("store_id ASC, month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("store growth analysis", err)
	}

	type storeSeries struct {
		growth analytics.StoreGrowth
	}
	order := []int64{}
	series := map[int64]*storeSeries{}
	for _, row := range rows {
		s, ok := series[row.StoreID]
		if !ok {
			s = &storeSeries{growth: analytics.StoreGrowth{
				StoreID:   row.StoreID,
				StoreName: row.StoreName,
				City:      row.City,
				State:     row.State,
			}}
			series[row.StoreID] = s
			order = append(order, row.StoreID)
		}
		s.growth.MonthlyData = append(s.growth.MonthlyData, analytics.StoreMonthlyPoint{
			Month:   row.Month,
			Revenue: row.MonthlyRevenue,
			Sales:   row.MonthlySales,
		})
	}

	out := []analytics.StoreGrowth{}
	for _, storeID := range order {
		g := series[storeID].growth
		months := g.MonthlyData
		if len(months) < 3 {
			continue
		}

		first := months[0].Revenue
		last := months[len(months)-1].Revenue
		if !first.IsPositive() {
			continue
		}

		var monthlyRates []float64
		for i := 1; i < len(months); i++ {
			prev := months[i-1].Revenue
			if prev.IsPositive() {
				monthlyRates = append(monthlyRates, pctChange(months[i].Revenue, prev))
			}
		}
		avgGrowth := 0.0
		if len(monthlyRates) > 0 {
			var sum float64
			for _, rate := range monthlyRates {
				sum += rate
			}
			avgGrowth = sum / float64(len(monthlyRates))
		}
		growthVariance := 0.0
		if len(monthlyRates) > 1 {
			growthVariance = variance(monthlyRates, avgGrowth)
		}

		pattern := analytics.PatternStable
		switch {
		case avgGrowth > minGrowthRate && growthVariance < 100:
			pattern = analytics.PatternGrowing
		case avgGrowth < -minGrowthRate:
			pattern = analytics.PatternDeclining
		case growthVariance > 200:
			pattern = analytics.PatternVolatile
		}

		trendStrength := 0.0
		revenues := make([]float64, len(months))
		for i, m := range months {
			revenues[i] = m.Revenue.InexactFloat64()
		}
		if slope, intercept, ok := linearSlope(revenues); ok {
			trendStrength = rSquared(revenues, slope, intercept)
		}

		g.TotalGrowthRate = round2(pctChange(last, first))
		g.AvgMonthlyGrowth = round2(avgGrowth)
		g.GrowthPattern = pattern
		g.TrendStrength = round3(trendStrength)
		g.GrowthVariance = round2(growthVariance)
		g.MonthsAnalyzed = len(months)
		g.FirstMonthRevenue = first
		g.LastMonthRevenue = last
		out = append(out, g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalGrowthRate > out[j].TotalGrowthRate
	})
	return out, nil
}

// ProductSeasonalityAnalysis scores monthly demand variability per product
// using the coefficient of variation of quantity and revenue. Products need
// at least six months of completed sales. The window defaults to the
// trailing 365 days.
func (r *GormAnalyticsRepository) ProductSeasonalityAnalysis(f analytics.SaleFilter, minSeasonalityThreshold float64) ([]analytics.ProductSeasonality, error) {
	f = r.windowed(f, 365)

	var rows []struct {
		ProductID       int64
		ProductName     string
		Month           string
		MonthlyQuantity decimal.Decimal
		MonthlyRevenue  decimal.Decimal
		MonthlySales    int64
	}

	monthCol := r.d.periodExpr("s.created_at", analytics.GranularityMonth)
	tx := r.db.Table("product_sales ps").
		Select(fmt.Sprintf("p.id AS product_id, p.name AS product_name, "+
			"%s AS month, "+
			"COALESCE(SUM(ps.quantity), 0) AS monthly_quantity, "+
			"COALESCE(SUM(ps.total_price), 0) AS monthly_revenue, "+
			"COUNT(ps.id) AS monthly_sales", monthCol)).
		Joins("JOIN products p ON p.id = ps.product_id").
		Joins("JOIN sales s ON s.id = ps.sale_id").
		Where("s.sale_status_desc = ?", models.SaleStatusCompleted)
	tx = applySaleFilter(tx, r.d, "s", f)

	err := tx.Group("p.id, p.name, month").
		Order("product_id ASC, month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("product seasonality analysis", err)
	}

	order := []int64{}
	series := map[int64]*analytics.ProductSeasonality{}
	for _, row := range rows {
		p, ok := series[row.ProductID]
		if !ok {
			p = &analytics.ProductSeasonality{
				ProductID:   row.ProductID,
				ProductName: row.ProductName,
			}
			series[row.ProductID] = p
			order = append(order, row.ProductID)
		}
		p.MonthlyData = append(p.MonthlyData, analytics.ProductMonthlyPoint{
			Month:    row.Month,
			Quantity: row.MonthlyQuantity,
			Revenue:  row.MonthlyRevenue,
			Sales:    row.MonthlySales,
		})
	}

	out := []analytics.ProductSeasonality{}
	for _, productID := range order {
		p := series[productID]
		months := p.MonthlyData
		if len(months) < 6 {
			continue
		}

		quantities := make([]float64, len(months))
		revenues := make([]float64, len(months))
		for i, m := range months {
			quantities[i] = m.Quantity.InexactFloat64()
			revenues[i] = m.Revenue.InexactFloat64()
		}

		var sumQ, sumR float64
		for i := range months {
			sumQ += quantities[i]
			sumR += revenues[i]
		}
		avgQuantity := sumQ / float64(len(months))
		avgRevenue := sumR / float64(len(months))
		if avgQuantity <= 0 || avgRevenue <= 0 {
			continue
		}

		quantityCV := math.Sqrt(variance(quantities, avgQuantity)) / avgQuantity
		revenueCV := math.Sqrt(variance(revenues, avgRevenue)) / avgRevenue
		score := (quantityCV + revenueCV) / 2

		peak, low := months[0], months[0]
		for _, m := range months[1:] {
			if m.Quantity.GreaterThan(peak.Quantity) {
				peak = m
			}
			if m.Quantity.LessThan(low.Quantity) {
				low = m
			}
		}
		peakLowRatio := 0.0
		if low.Quantity.IsPositive() {
			peakLowRatio = peak.Quantity.Div(low.Quantity).InexactFloat64()
		}

		pattern := "stable"
		if score > minSeasonalityThreshold {
			switch {
			case peakLowRatio > 2.0:
				pattern = analytics.PatternHighlySeasonal
			case peakLowRatio > 1.5:
				pattern = analytics.PatternModeratelySeasonal
			default:
				pattern = analytics.PatternSlightlySeasonal
			}
		}

		trend := analytics.TrendStable
		if slope, _, ok := linearSlope(quantities); ok {
			if slope > 0.1 {
				trend = analytics.TrendGrowing
			} else if slope < -0.1 {
				trend = analytics.TrendDeclining
			}
		}

		p.SeasonalityScore = round3(score)
		p.SeasonalityPattern = pattern
		p.PeakMonth = peak.Month
		p.LowMonth = low.Month
		p.PeakQuantity = peak.Quantity
		p.LowQuantity = low.Quantity
		p.PeakLowRatio = round2(peakLowRatio)
		p.AvgMonthlyQuantity = round2(avgQuantity)
		p.AvgMonthlyRevenue = round2(avgRevenue)
		p.TrendDirection = trend
		p.MonthsAnalyzed = len(months)
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SeasonalityScore > out[j].SeasonalityScore
	})
	return out, nil
}
