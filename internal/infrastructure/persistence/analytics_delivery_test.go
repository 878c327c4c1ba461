package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
)

func TestDeliveryPerformance(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "40.00", withDeliverySeconds(1800))
	seedSale(t, db, utc(2024, 1, 1, 19, 0), "40.00", withDeliverySeconds(2400))
	seedSale(t, db, utc(2024, 1, 2, 12, 0), "40.00", withDeliverySeconds(600))
	// No timer, no delivery.
	seedSale(t, db, utc(2024, 1, 1, 13, 0), "40.00")

	stats, err := repo.DeliveryPerformance(analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "2024-01-01", stats[0].Period)
	assert.Equal(t, int64(2), stats[0].TotalDeliveries)
	assert.Equal(t, 35.0, stats[0].AvgDeliveryTime)
	assert.Equal(t, 30.0, stats[0].MinDeliveryTime)
	assert.Equal(t, 40.0, stats[0].MaxDeliveryTime)

	assert.Equal(t, "2024-01-02", stats[1].Period)
	assert.Equal(t, int64(1), stats[1].TotalDeliveries)
	assert.Equal(t, 10.0, stats[1].AvgDeliveryTime)
}

func TestDeliveryPerformanceWeekBuckets(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	// 2024-01-01 falls in ISO week 2024-W01, 2024-01-08 in 2024-W02.
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "40.00", withDeliverySeconds(1200))
	seedSale(t, db, utc(2024, 1, 8, 12, 0), "40.00", withDeliverySeconds(1800))

	stats, err := repo.DeliveryPerformance(analytics.SaleFilter{}, analytics.GranularityWeek)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-W01", stats[0].Period)
	assert.Equal(t, "2024-W02", stats[1].Period)
}

func seedDelivery(t *testing.T, db *gorm.DB, at time.Time, secs int, neighborhood string) {
	t.Helper()
	s := seedSale(t, db, at, "35.00", withChannel(2), withDeliverySeconds(secs))
	ds := &models.DeliverySale{SaleID: s.ID, Status: "DELIVERED"}
	require.NoError(t, db.Create(ds).Error)
	require.NoError(t, db.Create(&models.DeliveryAddress{
		SaleID:         s.ID,
		DeliverySaleID: &ds.ID,
		Neighborhood:   neighborhood,
		City:           "São Paulo",
		State:          "SP",
	}).Error)
}

// Regions with fewer than five deliveries are dropped from the report.
func TestDeliveryPerformanceByRegionFloor(t *testing.T) {
	repo, db := newAnalyticsRepo(t)

	for i := 0; i < 5; i++ {
		seedDelivery(t, db, utc(2024, 1, 1+i, 20, 0), 1800+i*60, "Moema")
	}
	for i := 0; i < 4; i++ {
		seedDelivery(t, db, utc(2024, 1, 1+i, 21, 0), 900, "Pinheiros")
	}

	regions, err := repo.DeliveryPerformanceByRegion(analytics.SaleFilter{}, 50)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	region := regions[0]
	assert.Equal(t, "Moema", region.Neighborhood)
	assert.Equal(t, "São Paulo", region.City)
	assert.Equal(t, "SP", region.State)
	assert.Equal(t, int64(5), region.DeliveryCount)
	assert.Equal(t, 30.0, region.MinDeliveryTime)
	assert.Equal(t, 34.0, region.MaxDeliveryTime)
	assert.Equal(t, 32.0, region.AvgDeliveryTime)
	assertDec(t, "175", region.TotalRevenue)
}

func TestPeakHoursHeatmap(t *testing.T) {
	repo, db := newAnalyticsRepo(t)
	// 2024-01-01 is a Monday, 2024-01-07 a Sunday.
	seedSale(t, db, utc(2024, 1, 1, 12, 0), "10.00")
	seedSale(t, db, utc(2024, 1, 1, 12, 30), "20.00")
	seedSale(t, db, utc(2024, 1, 7, 19, 0), "30.00")

	cells, err := repo.PeakHoursHeatmap(analytics.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, cells, 2)

	// Day 0 is Sunday in the heatmap's native convention.
	assert.Equal(t, 0, cells[0].Day)
	assert.Equal(t, "Sun", cells[0].DayName)
	assert.Equal(t, 19, cells[0].Hour)
	assert.Equal(t, int64(1), cells[0].SalesCount)
	assertDec(t, "30", cells[0].TotalRevenue)

	assert.Equal(t, 1, cells[1].Day)
	assert.Equal(t, "Mon", cells[1].DayName)
	assert.Equal(t, 12, cells[1].Hour)
	assert.Equal(t, int64(2), cells[1].SalesCount)
	assertDec(t, "30", cells[1].TotalRevenue)
}

func TestPeriodKey(t *testing.T) {
	at := utc(2024, 1, 1, 12, 0)
	assert.Equal(t, "2024-01-01", periodKey(at, analytics.GranularityDay))
	assert.Equal(t, "2024-01", periodKey(at, analytics.GranularityMonth))
	year, week := at.ISOWeek()
	assert.Equal(t, fmt.Sprintf("%d-W%02d", year, week), periodKey(at, analytics.GranularityWeek))
}
