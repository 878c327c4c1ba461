package analytics

// Repository exposes the read-only aggregation operations over the sales
// ledger. Every operation is a pure read: implementations keep no state
// beyond their connection pool and are safe for unbounded concurrent use.
//
// Revenue-bearing operations consider only COMPLETED sales unless the
// operation is explicitly about cancellations. Operations that match no
// records return zero-valued shapes, never errors; a failing data store
// surfaces as an error wrapping ErrStoreUnavailable.
type Repository interface {
	// Revenue aggregates completed-sale revenue by day, week or month.
	Revenue(filter SaleFilter, groupBy Granularity) ([]RevenuePoint, error)

	// TopProducts ranks products by quantity sold.
	TopProducts(filter SaleFilter, limit int) ([]ProductRanking, error)

	// ChannelPerformance aggregates revenue per sales channel.
	ChannelPerformance(filter SaleFilter) ([]ChannelStats, error)

	// MetricsSummary returns the global revenue summary for the window.
	MetricsSummary(filter SaleFilter) (*MetricsSummary, error)

	// ProductsMargin lists products with positive modeled margin, lowest first.
	ProductsMargin(filter SaleFilter, limit int) ([]ProductMargin, error)

	// DeliveryPerformance buckets delivery timers by period.
	DeliveryPerformance(filter SaleFilter, groupBy Granularity) ([]DeliveryPeriodStats, error)

	// CustomerInsights summarizes customer frequency and churn.
	CustomerInsights(filter SaleFilter) (*CustomerInsights, error)

	// PeakHoursHeatmap buckets sales by (day-of-week, hour).
	PeakHoursHeatmap(filter SaleFilter) ([]HeatmapCell, error)

	// AnomalyAlerts compares the window against the preceding one and emits
	// heuristic alerts.
	AnomalyAlerts(filter SaleFilter) ([]Alert, error)

	// TopItems ranks add-on items by how often they were added.
	TopItems(filter SaleFilter, limit int) ([]ItemRanking, error)

	// ProductsWithMostCustomizations ranks products by customization rate.
	ProductsWithMostCustomizations(filter SaleFilter, limit int) ([]ProductCustomization, error)

	// PaymentMixByChannel breaks payments down per channel and type.
	PaymentMixByChannel(filter SaleFilter) ([]PaymentMix, error)

	// CancellationsAnalysis summarizes cancelled sales and their patterns.
	CancellationsAnalysis(filter SaleFilter) (*CancellationStats, error)

	// DeliveryPerformanceByRegion aggregates delivery timers per address
	// region, keeping regions with at least five deliveries.
	DeliveryPerformanceByRegion(filter SaleFilter, limit int) ([]RegionDeliveryStats, error)

	// StoreGrowthAnalysis computes month-over-month growth per store.
	StoreGrowthAnalysis(filter SaleFilter, minGrowthRate float64) ([]StoreGrowth, error)

	// ProductSeasonalityAnalysis scores products by monthly variation.
	ProductSeasonalityAnalysis(filter SaleFilter, minSeasonalityThreshold float64) ([]ProductSeasonality, error)

	// PromotionsAnalysis summarizes discounts, surcharges and their reasons.
	PromotionsAnalysis(filter SaleFilter) (*PromotionStats, error)

	// InventoryTurnover reports sales velocity per product.
	InventoryTurnover(filter SaleFilter, limit int) ([]InventoryTurnover, error)
}
