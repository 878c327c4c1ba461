package persistence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
)

// newAnalyticsDB opens an in-memory store with the full sales schema and the
// shared dimension fixtures: two stores, a counter and a delivery channel,
// three products, two add-on items and two payment types.
func newAnalyticsDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	fixtures := []any{
		&models.Store{ID: 1, Name: "Centro", City: "São Paulo", State: "SP", IsActive: true},
		&models.Store{ID: 2, Name: "Praia", City: "Santos", State: "SP", IsActive: true},
		&models.Channel{ID: 1, Name: "Counter", Type: models.ChannelTypeInPerson},
		&models.Channel{ID: 2, Name: "iFood", Type: models.ChannelTypeDelivery},
		&models.Product{ID: 1, Name: "Burger", IsActive: true},
		&models.Product{ID: 2, Name: "Fries", IsActive: true},
		&models.Product{ID: 3, Name: "Soda", IsActive: true},
		&models.Item{ID: 1, Name: "Extra Cheese", IsActive: true},
		&models.Item{ID: 2, Name: "Bacon", IsActive: true},
		&models.PaymentType{ID: 1, Description: "Credit Card", IsActive: true},
		&models.PaymentType{ID: 2, Description: "Cash", IsActive: true},
	}
	for _, f := range fixtures {
		require.NoError(t, db.Create(f).Error)
	}
	return db
}

func newAnalyticsRepo(t *testing.T) (*GormAnalyticsRepository, *gorm.DB) {
	t.Helper()
	db := newAnalyticsDB(t)
	return NewGormAnalyticsRepository(db), db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s %v", want, got, msgAndArgs)
}

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt(v int) *int              { return &v }
func ptrInt64(v int64) *int64        { return &v }

type saleOpt func(*models.Sale)

func withStatus(status string) saleOpt {
	return func(s *models.Sale) { s.SaleStatusDesc = status }
}

func withStore(id int64) saleOpt {
	return func(s *models.Sale) { s.StoreID = id }
}

func withChannel(id int64) saleOpt {
	return func(s *models.Sale) { s.ChannelID = id }
}

func withCustomer(id int64) saleOpt {
	return func(s *models.Sale) { s.CustomerID = &id }
}

func withDeliverySeconds(secs int) saleOpt {
	return func(s *models.Sale) { s.DeliverySeconds = &secs }
}

func withDiscount(amount, reason string) saleOpt {
	return func(s *models.Sale) {
		s.TotalDiscount = dec(amount)
		s.DiscountReason = reason
	}
}

func withIncrease(amount string) saleOpt {
	return func(s *models.Sale) { s.TotalIncrease = dec(amount) }
}

func seedSale(t *testing.T, db *gorm.DB, at time.Time, amount string, opts ...saleOpt) *models.Sale {
	t.Helper()
	s := &models.Sale{
		CreatedAt:        at,
		StoreID:          1,
		ChannelID:        1,
		SaleStatusDesc:   models.SaleStatusCompleted,
		TotalAmountItems: dec(amount),
		TotalAmount:      dec(amount),
	}
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedLine(t *testing.T, db *gorm.DB, saleID, productID int64, qty float64, basePrice, totalPrice string) *models.ProductSale {
	t.Helper()
	ps := &models.ProductSale{
		SaleID:     saleID,
		ProductID:  productID,
		Quantity:   qty,
		BasePrice:  dec(basePrice),
		TotalPrice: dec(totalPrice),
	}
	require.NoError(t, db.Create(ps).Error)
	return ps
}

func seedAddOn(t *testing.T, db *gorm.DB, productSaleID, itemID int64, price string) {
	t.Helper()
	require.NoError(t, db.Create(&models.ItemProductSale{
		ProductSaleID:   productSaleID,
		ItemID:          itemID,
		Quantity:        1,
		AdditionalPrice: dec(price),
		Price:           dec(price),
	}).Error)
}

// seedJanuaryScenario loads the canonical three-sale window: one 100.00 sale
// on Jan 1 at noon, two 50.00 sales on Jan 2 (noon and 19:00), plus one
// cancelled sale that no revenue figure may include.
func seedJanuaryScenario(t *testing.T, db *gorm.DB) {
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "100.00")
	seedSale(t, db, utc(2024, 1, 2, 12, 0), "50.00")
	seedSale(t, db, utc(2024, 1, 2, 19, 0), "50.00")
	seedSale(t, db, utc(2024, 1, 2, 13, 0), "999.00", withStatus(models.SaleStatusCancelled))
}

func januaryFilter() analytics.SaleFilter {
	return analytics.SaleFilter{
		StartDate: ptrTime(utc(2024, 1, 1, 0, 0)),
		EndDate:   ptrTime(utc(2024, 1, 3, 0, 0)),
	}
}

func TestRevenueByDay(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)

	points, err := repo.Revenue(januaryFilter(), analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-01-01", points[0].Period)
	assertDec(t, "100", points[0].Revenue)
	assert.Equal(t, int64(1), points[0].SalesCount)
	assertDec(t, "100", points[0].AvgTicket)

	assert.Equal(t, "2024-01-02", points[1].Period)
	assertDec(t, "100", points[1].Revenue)
	assert.Equal(t, int64(2), points[1].SalesCount)
	assertDec(t, "50", points[1].AvgTicket)
}

func TestRevenueByMonth(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)
	seedSale(t, db, utc(2024, 2, 10, 12, 0), "40.00")

	points, err := repo.Revenue(analytics.SaleFilter{}, analytics.GranularityMonth)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-01", points[0].Period)
	assertDec(t, "200", points[0].Revenue)
	assert.Equal(t, "2024-02", points[1].Period)
	assertDec(t, "40", points[1].Revenue)
}

func TestMetricsSummary(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)

	summary, err := repo.MetricsSummary(januaryFilter())
	require.NoError(t, err)

	assertDec(t, "200", summary.TotalRevenue)
	assert.Equal(t, int64(3), summary.SalesCount)
	assertDec(t, "66.67", summary.AvgTicket)
	require.NotNil(t, summary.FirstSale)
	require.NotNil(t, summary.LastSale)
	assert.True(t, summary.FirstSale.Equal(utc(2024, 1, 1, 12, 0)))
	assert.True(t, summary.LastSale.Equal(utc(2024, 1, 2, 19, 0)))
}

func TestMetricsSummaryEmptyWindow(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)

	summary, err := repo.MetricsSummary(analytics.SaleFilter{
		StartDate: ptrTime(utc(2030, 1, 1, 0, 0)),
		EndDate:   ptrTime(utc(2030, 2, 1, 0, 0)),
	})
	require.NoError(t, err)

	assert.True(t, summary.TotalRevenue.IsZero())
	assert.Equal(t, int64(0), summary.SalesCount)
	assert.True(t, summary.AvgTicket.IsZero())
	assert.Nil(t, summary.FirstSale)
	assert.Nil(t, summary.LastSale)
}

// The revenue series and the summary aggregate the same rows, so the series
// must sum to the summary total for any shared filter.
func TestRevenueSumsToSummaryTotal(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)
	seedSale(t, db, utc(2024, 1, 2, 20, 0), "33.33", withStore(2), withChannel(2))

	f := januaryFilter()
	points, err := repo.Revenue(f, analytics.GranularityDay)
	require.NoError(t, err)
	summary, err := repo.MetricsSummary(f)
	require.NoError(t, err)

	sum := decimal.Zero
	var count int64
	for _, p := range points {
		sum = sum.Add(p.Revenue)
		count += p.SalesCount
	}
	assert.True(t, sum.Equal(summary.TotalRevenue), "series sum %s vs summary %s", sum, summary.TotalRevenue)
	assert.Equal(t, summary.SalesCount, count)
}

func TestSaleFilterPredicates(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	// 2024-01-01 is a Monday, 2024-01-02 a Tuesday.
	seedJanuaryScenario(t, db)

	// Extra sales on Friday January 5, still inside the filter window but
	// outside every day-of-week and hour assertion below.
	seedSale(t, db, utc(2024, 1, 5, 15, 0), "70.00", withStore(2))
	seedSale(t, db, utc(2024, 1, 5, 16, 0), "80.00", withChannel(2))

	window := analytics.SaleFilter{
		StartDate: ptrTime(utc(2024, 1, 1, 0, 0)),
		EndDate:   ptrTime(utc(2024, 1, 6, 0, 0)),
	}

	t.Run("store", func(t *testing.T) {
		f := window
		f.StoreID = ptrInt64(2)
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.SalesCount)
		assertDec(t, "70", summary.TotalRevenue)
	})

	t.Run("channel", func(t *testing.T) {
		f := window
		f.ChannelID = ptrInt64(2)
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.SalesCount)
		assertDec(t, "80", summary.TotalRevenue)
	})

	t.Run("monday selects only the January 1 sale", func(t *testing.T) {
		f := window
		f.DayOfWeek = ptrInt(0)
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.SalesCount)
		assertDec(t, "100", summary.TotalRevenue)
	})

	t.Run("tuesday selects only the January 2 sales", func(t *testing.T) {
		f := januaryFilter()
		f.DayOfWeek = ptrInt(1)
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), summary.SalesCount)
		assertDec(t, "100", summary.TotalRevenue)
	})

	t.Run("evening hours", func(t *testing.T) {
		f := januaryFilter()
		f.HourStart = ptrInt(18)
		f.HourEnd = ptrInt(23)
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.SalesCount)
		assertDec(t, "50", summary.TotalRevenue)
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		f := analytics.SaleFilter{
			StartDate: ptrTime(utc(2024, 1, 1, 12, 0)),
			EndDate:   ptrTime(utc(2024, 1, 2, 12, 0)),
		}
		summary, err := repo.MetricsSummary(f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), summary.SalesCount)
	})
}

// Applying the same filter twice only duplicates predicates; the result set
// must not change.
func TestApplySaleFilterIsIdempotent(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)

	f := januaryFilter()
	f.DayOfWeek = ptrInt(1)
	f.HourStart = ptrInt(10)
	f.HourEnd = ptrInt(20)

	var once, twice int64
	require.NoError(t, applySaleFilter(db.Table("sales s"), repo.d, "s", f).Count(&once).Error)
	tx := applySaleFilter(db.Table("sales s"), repo.d, "s", f)
	require.NoError(t, applySaleFilter(tx, repo.d, "s", f).Count(&twice).Error)

	assert.Positive(t, once)
	assert.Equal(t, once, twice)
}

func TestTopProducts(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	s1 := seedSale(t, db, utc(2024, 1, 1, 12, 0), "100.00")
	s2 := seedSale(t, db, utc(2024, 1, 2, 12, 0), "50.00")
	cancelled := seedSale(t, db, utc(2024, 1, 2, 13, 0), "60.00", withStatus(models.SaleStatusCancelled))

	seedLine(t, db, s1.ID, 1, 3, "20.00", "60.00")
	seedLine(t, db, s2.ID, 1, 2, "20.00", "40.00")
	seedLine(t, db, s1.ID, 2, 4, "10.00", "40.00")
	seedLine(t, db, cancelled.ID, 3, 99, "5.00", "495.00")

	ranked, err := repo.TopProducts(analytics.SaleFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Burger", ranked[0].ProductName)
	assertDec(t, "5", ranked[0].TotalQuantity)
	assert.Equal(t, int64(2), ranked[0].SalesCount)
	assertDec(t, "100", ranked[0].TotalRevenue)
	assertDec(t, "50", ranked[0].AvgPrice)

	assert.Equal(t, "Fries", ranked[1].ProductName)
	assertDec(t, "4", ranked[1].TotalQuantity)

	top1, err := repo.TopProducts(analytics.SaleFilter{}, 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, "Burger", top1[0].ProductName)
}

func TestChannelPerformance(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "30.00")
	seedSale(t, db, utc(2024, 1, 1, 13, 0), "30.00")
	seedSale(t, db, utc(2024, 1, 1, 14, 0), "90.00", withChannel(2))

	stats, err := repo.ChannelPerformance(analytics.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "iFood", stats[0].ChannelName)
	assert.Equal(t, models.ChannelTypeDelivery, stats[0].ChannelType)
	assertDec(t, "90", stats[0].TotalRevenue)
	assert.Equal(t, int64(1), stats[0].SalesCount)

	assert.Equal(t, "Counter", stats[1].ChannelName)
	assertDec(t, "60", stats[1].TotalRevenue)
	assertDec(t, "30", stats[1].AvgTicket)
}

func TestProductsMargin(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	s := seedSale(t, db, utc(2024, 1, 1, 12, 0), "100.00")

	// Burger 10.00, Fries 5.00, Soda free. The modeled cost is 70% of the
	// base price, so the free product has zero margin and must be excluded.
	seedLine(t, db, s.ID, 1, 1, "10.00", "10.00")
	seedLine(t, db, s.ID, 2, 2, "5.00", "10.00")
	seedLine(t, db, s.ID, 3, 1, "0.00", "0.00")

	margins, err := repo.ProductsMargin(analytics.SaleFilter{}, 20)
	require.NoError(t, err)
	require.Len(t, margins, 2)

	// Lowest margin first.
	assert.Equal(t, "Fries", margins[0].ProductName)
	assertDec(t, "5", margins[0].AvgPrice)
	assertDec(t, "3.5", margins[0].AvgCost)
	assertDec(t, "1.5", margins[0].Margin)
	assertDec(t, "30", margins[0].MarginPercentage)
	assertDec(t, "2", margins[0].TotalQuantity)

	assert.Equal(t, "Burger", margins[1].ProductName)
	assertDec(t, "3", margins[1].Margin)
	assertDec(t, "30", margins[1].MarginPercentage)
}

func TestPromotionsAnalysis(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "90.00", withDiscount("10.00", "Coupon"))
	seedSale(t, db, utc(2024, 1, 1, 13, 0), "95.00", withDiscount("5.00", "Coupon"))
	seedSale(t, db, utc(2024, 1, 1, 14, 0), "97.00", withDiscount("3.00", ""))
	seedSale(t, db, utc(2024, 1, 1, 15, 0), "104.00", withIncrease("4.00"))

	stats, err := repo.PromotionsAnalysis(analytics.SaleFilter{})
	require.NoError(t, err)

	assertDec(t, "18", stats.TotalDiscounts)
	assertDec(t, "4", stats.TotalIncreases)
	assert.Equal(t, int64(4), stats.TotalSales)
	assert.Equal(t, int64(3), stats.SalesWithDiscount)
	assert.Equal(t, int64(1), stats.SalesWithIncrease)
	assertDec(t, "4.5", stats.AvgDiscount)
	assertDec(t, "1", stats.AvgIncrease)
	assert.Equal(t, 75.0, stats.DiscountPercentage)
	assert.Equal(t, 25.0, stats.IncreasePercentage)

	require.Len(t, stats.DiscountReasons, 2)
	assert.Equal(t, "Coupon", stats.DiscountReasons[0].Reason)
	assert.Equal(t, int64(2), stats.DiscountReasons[0].Count)
	assertDec(t, "15", stats.DiscountReasons[0].TotalDiscount)
	assert.Equal(t, "No reason given", stats.DiscountReasons[1].Reason)
	assert.Equal(t, int64(1), stats.DiscountReasons[1].Count)
}

func TestInventoryTurnover(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	s1 := seedSale(t, db, utc(2024, 1, 5, 12, 0), "200.00")
	s2 := seedSale(t, db, utc(2024, 1, 20, 12, 0), "400.00")
	seedLine(t, db, s1.ID, 1, 20, "10.00", "200.00")
	seedLine(t, db, s2.ID, 1, 40, "10.00", "400.00")

	// A 30-day window: the daily velocity divides quantity by 30.
	f := analytics.SaleFilter{
		StartDate: ptrTime(utc(2024, 1, 1, 0, 0)),
		EndDate:   ptrTime(utc(2024, 1, 31, 0, 0)),
	}
	rows, err := repo.InventoryTurnover(f, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Burger", row.ProductName)
	assertDec(t, "60", row.TotalQuantitySold)
	assert.Equal(t, int64(2), row.SalesCount)
	assertDec(t, "30", row.AvgQuantityPerSale)
	assertDec(t, "600", row.TotalRevenue)
	assert.Equal(t, 2.0, row.DailyVelocity)
	assert.Equal(t, row.DailyVelocity, row.TurnoverScore)
}

// Every operation must yield a zero-valued shape for a window matching no
// sales; an empty window is an answer, not an error.
func TestEmptyWindowYieldsZeroShapes(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedJanuaryScenario(t, db)
	repo.now = func() time.Time { return utc(2030, 6, 1, 0, 0) }

	f := analytics.SaleFilter{
		StartDate: ptrTime(utc(2030, 1, 1, 0, 0)),
		EndDate:   ptrTime(utc(2030, 2, 1, 0, 0)),
	}

	points, err := repo.Revenue(f, analytics.GranularityDay)
	require.NoError(t, err)
	assert.Empty(t, points)

	products, err := repo.TopProducts(f, 10)
	require.NoError(t, err)
	assert.Empty(t, products)

	channels, err := repo.ChannelPerformance(f)
	require.NoError(t, err)
	assert.Empty(t, channels)

	summary, err := repo.MetricsSummary(f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.SalesCount)

	margins, err := repo.ProductsMargin(f, 20)
	require.NoError(t, err)
	assert.Empty(t, margins)

	delivery, err := repo.DeliveryPerformance(f, analytics.GranularityDay)
	require.NoError(t, err)
	assert.Empty(t, delivery)

	customers, err := repo.CustomerInsights(f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), customers.TotalCustomers)

	heatmap, err := repo.PeakHoursHeatmap(f)
	require.NoError(t, err)
	assert.Empty(t, heatmap)

	alerts, err := repo.AnomalyAlerts(f)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	items, err := repo.TopItems(f, 20)
	require.NoError(t, err)
	assert.Empty(t, items)

	custom, err := repo.ProductsWithMostCustomizations(f, 20)
	require.NoError(t, err)
	assert.Empty(t, custom)

	payments, err := repo.PaymentMixByChannel(f)
	require.NoError(t, err)
	assert.Empty(t, payments)

	cancellations, err := repo.CancellationsAnalysis(f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cancellations.TotalCancellations)
	assert.Equal(t, 0.0, cancellations.CancellationRate)

	regions, err := repo.DeliveryPerformanceByRegion(f, 50)
	require.NoError(t, err)
	assert.Empty(t, regions)

	growth, err := repo.StoreGrowthAnalysis(f, 5.0)
	require.NoError(t, err)
	assert.Empty(t, growth)

	seasonality, err := repo.ProductSeasonalityAnalysis(f, 0.3)
	require.NoError(t, err)
	assert.Empty(t, seasonality)

	promotions, err := repo.PromotionsAnalysis(f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), promotions.TotalSales)

	turnover, err := repo.InventoryTurnover(f, 20)
	require.NoError(t, err)
	assert.Empty(t, turnover)
}
