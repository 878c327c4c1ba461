package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Monetary fields stay decimal through every aggregation; conversion to
// floating point happens only when a result is serialized for a client.

// RevenuePoint is one time bucket of the revenue-by-period series.
type RevenuePoint struct {
	Period     string          `json:"period"`
	Revenue    decimal.Decimal `json:"revenue"`
	SalesCount int64           `json:"sales_count"`
	AvgTicket  decimal.Decimal `json:"avg_ticket"`
}

// ProductRanking is one row of the top-products ranking.
type ProductRanking struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	SalesCount    int64           `json:"sales_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
}

// ChannelStats aggregates completed sales for one channel.
type ChannelStats struct {
	ChannelName  string          `json:"channel_name"`
	ChannelType  string          `json:"channel_type"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SalesCount   int64           `json:"sales_count"`
	AvgTicket    decimal.Decimal `json:"avg_ticket"`
}

// MetricsSummary is the global summary over a filter window.
type MetricsSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SalesCount   int64           `json:"sales_count"`
	AvgTicket    decimal.Decimal `json:"avg_ticket"`
	FirstSale    *time.Time      `json:"first_sale"`
	LastSale     *time.Time      `json:"last_sale"`
}

// ProductMargin is one row of the lowest-margin products report. Cost is
// modeled as 70% of the average base price; there is no recorded cost field.
type ProductMargin struct {
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	AvgPrice         decimal.Decimal `json:"avg_price"`
	AvgCost          decimal.Decimal `json:"avg_cost"`
	Margin           decimal.Decimal `json:"margin"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
}

// DeliveryPeriodStats summarizes delivery timers (minutes) for one bucket.
type DeliveryPeriodStats struct {
	Period          string  `json:"period"`
	TotalDeliveries int64   `json:"total_deliveries"`
	AvgDeliveryTime float64 `json:"avg_delivery_time"`
	MinDeliveryTime float64 `json:"min_delivery_time"`
	MaxDeliveryTime float64 `json:"max_delivery_time"`
}

// CustomerInsights summarizes the customer base over a window.
type CustomerInsights struct {
	TotalCustomers             int64   `json:"total_customers"`
	FrequentCustomers          int64   `json:"frequent_customers"`
	InactiveCustomers          int64   `json:"inactive_customers"`
	AvgPurchasesPerCustomer    float64 `json:"avg_purchases_per_customer"`
	FrequentCustomerPercentage float64 `json:"frequent_customer_percentage"`
	InactiveCustomerPercentage float64 `json:"inactive_customer_percentage"`
}

// HeatmapCell is one (day-of-week, hour) bucket of the peak-hours heatmap.
// Day uses the store's native convention: 0=Sunday .. 6=Saturday.
type HeatmapCell struct {
	Day          int             `json:"day"`
	DayName      string          `json:"day_name"`
	Hour         int             `json:"hour"`
	SalesCount   int64           `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Alert severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert is a heuristic anomaly notification.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemRanking is one row of the top add-ons/customizations ranking.
type ItemRanking struct {
	ItemName         string          `json:"item_name"`
	TimesAdded       int64           `json:"times_added"`
	RevenueGenerated decimal.Decimal `json:"revenue_generated"`
	AvgPrice         decimal.Decimal `json:"avg_price"`
	UniqueProducts   int64           `json:"unique_products"`
}

// ProductCustomization ranks products by how often their lines carry add-ons.
type ProductCustomization struct {
	ProductName             string  `json:"product_name"`
	TotalCustomizations     int64   `json:"total_customizations"`
	SalesWithCustomizations int64   `json:"sales_with_customizations"`
	TotalSales              int64   `json:"total_sales"`
	CustomizationRate       float64 `json:"customization_rate"`
}

// PaymentMix is one (channel, payment type) cell of the payment mix report.
// Percentage is the share of the channel's payment count.
type PaymentMix struct {
	ChannelName  string          `json:"channel_name"`
	PaymentType  string          `json:"payment_type"`
	PaymentCount int64           `json:"payment_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Percentage   float64         `json:"percentage"`
}

// ChannelCancellations is the per-channel cancellation breakdown.
type ChannelCancellations struct {
	ChannelName       string          `json:"channel_name"`
	ChannelType       string          `json:"channel_type"`
	CancellationCount int64           `json:"cancellation_count"`
	LostRevenue       decimal.Decimal `json:"lost_revenue"`
}

// HourCancellations is the per-hour cancellation breakdown.
type HourCancellations struct {
	Hour              int   `json:"hour"`
	CancellationCount int64 `json:"cancellation_count"`
}

// CancellationStats is the cancellations analysis summary.
type CancellationStats struct {
	TotalCancellations int64                  `json:"total_cancellations"`
	TotalSales         int64                  `json:"total_sales"`
	CancellationRate   float64                `json:"cancellation_rate"`
	ByChannel          []ChannelCancellations `json:"cancellations_by_channel"`
	ByHour             []HourCancellations    `json:"cancellations_by_hour"`
}

// RegionDeliveryStats summarizes deliveries for one address region. Regions
// with fewer than five deliveries are excluded upstream.
type RegionDeliveryStats struct {
	Neighborhood    string          `json:"neighborhood"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	DeliveryCount   int64           `json:"delivery_count"`
	AvgDeliveryTime float64         `json:"avg_delivery_time"`
	MinDeliveryTime float64         `json:"min_delivery_time"`
	MaxDeliveryTime float64         `json:"max_delivery_time"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// Growth patterns emitted by the store growth analysis.
const (
	PatternGrowing   = "growing"
	PatternDeclining = "declining"
	PatternVolatile  = "volatile"
	PatternStable    = "stable"
)

// StoreMonthlyPoint is one month of a store's revenue series.
type StoreMonthlyPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Sales   int64           `json:"sales"`
}

// StoreGrowth is one store's growth analysis. Stores with fewer than three
// months of data are excluded upstream.
type StoreGrowth struct {
	StoreID           int64               `json:"store_id"`
	StoreName         string              `json:"store_name"`
	City              string              `json:"city"`
	State             string              `json:"state"`
	TotalGrowthRate   float64             `json:"total_growth_rate"`
	AvgMonthlyGrowth  float64             `json:"avg_monthly_growth"`
	GrowthPattern     string              `json:"growth_pattern"`
	TrendStrength     float64             `json:"trend_strength"`
	GrowthVariance    float64             `json:"growth_variance"`
	MonthsAnalyzed    int                 `json:"months_analyzed"`
	FirstMonthRevenue decimal.Decimal     `json:"first_month_revenue"`
	LastMonthRevenue  decimal.Decimal     `json:"last_month_revenue"`
	MonthlyData       []StoreMonthlyPoint `json:"monthly_data"`
}

// Seasonality patterns emitted by the product seasonality analysis.
const (
	PatternHighlySeasonal     = "highly_seasonal"
	PatternModeratelySeasonal = "moderately_seasonal"
	PatternSlightlySeasonal   = "slightly_seasonal"
)

// Trend directions derived from the regression slope sign.
const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// ProductMonthlyPoint is one month of a product's sales series.
type ProductMonthlyPoint struct {
	Month    string          `json:"month"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Sales    int64           `json:"sales"`
}

// ProductSeasonality is one product's seasonality analysis. Products with
// fewer than six months of data are excluded upstream.
type ProductSeasonality struct {
	ProductID          int64                 `json:"product_id"`
	ProductName        string                `json:"product_name"`
	SeasonalityScore   float64               `json:"seasonality_score"`
	SeasonalityPattern string                `json:"seasonality_pattern"`
	PeakMonth          string                `json:"peak_month"`
	LowMonth           string                `json:"low_month"`
	PeakQuantity       decimal.Decimal       `json:"peak_quantity"`
	LowQuantity        decimal.Decimal       `json:"low_quantity"`
	PeakLowRatio       float64               `json:"peak_low_ratio"`
	AvgMonthlyQuantity float64               `json:"avg_monthly_quantity"`
	AvgMonthlyRevenue  float64               `json:"avg_monthly_revenue"`
	TrendDirection     string                `json:"trend_direction"`
	MonthsAnalyzed     int                   `json:"months_analyzed"`
	MonthlyData        []ProductMonthlyPoint `json:"monthly_data"`
}

// DiscountReason is one entry of the discount-reason breakdown.
type DiscountReason struct {
	Reason        string          `json:"reason"`
	Count         int64           `json:"count"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// PromotionStats is the promotions and discounts summary.
type PromotionStats struct {
	TotalDiscounts     decimal.Decimal  `json:"total_discounts"`
	TotalIncreases     decimal.Decimal  `json:"total_increases"`
	TotalSales         int64            `json:"total_sales"`
	SalesWithDiscount  int64            `json:"sales_with_discount"`
	SalesWithIncrease  int64            `json:"sales_with_increase"`
	AvgDiscount        decimal.Decimal  `json:"avg_discount"`
	AvgIncrease        decimal.Decimal  `json:"avg_increase"`
	DiscountPercentage float64          `json:"discount_percentage"`
	IncreasePercentage float64          `json:"increase_percentage"`
	DiscountReasons    []DiscountReason `json:"discount_reasons"`
}

// InventoryTurnover is one row of the sales-velocity report.
type InventoryTurnover struct {
	ProductID          int64           `json:"product_id"`
	ProductName        string          `json:"product_name"`
	TotalQuantitySold  decimal.Decimal `json:"total_quantity_sold"`
	SalesCount         int64           `json:"sales_count"`
	AvgQuantityPerSale decimal.Decimal `json:"avg_quantity_per_sale"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AvgPrice           decimal.Decimal `json:"avg_price"`
	DailyVelocity      float64         `json:"daily_velocity"`
	TurnoverScore      float64         `json:"turnover_score"`
}
