package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// DefaultTTL is how long a memoized aggregation result stays fresh.
const DefaultTTL = 300 * time.Second

// Service wraps the aggregation engine with read-through result caching.
// The cache is strictly best-effort: a nil cache, an unreachable store or a
// corrupt entry all degrade to computing fresh results, never to an error.
type Service struct {
	repo   analytics.Repository
	cache  analytics.ResultCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new analytics Service. cache may be nil to run
// without memoization.
func NewService(repo analytics.Repository, cache analytics.ResultCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    DefaultTTL,
		logger: logger,
	}
}

// WithTTL overrides the result TTL
func (s *Service) WithTTL(ttl time.Duration) *Service {
	s.ttl = ttl
	return s
}

// cached looks key up, falling back to fetch on any miss or cache failure,
// then stores the fresh result. Concurrent callers may compute the same
// result and race the write; the last write wins, which is harmless for
// idempotent reads.
func cached[T any](ctx context.Context, s *Service, key CacheKey, fetch func() (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return fetch()
	}
	keyStr := key.String()

	raw, hit, err := s.cache.Get(ctx, keyStr)
	if err != nil {
		s.logger.Warn("cache read failed, computing fresh result",
			zap.String("key", keyStr), zap.Error(err))
	} else if hit {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			s.logger.Warn("cache entry corrupt, computing fresh result",
				zap.String("key", keyStr), zap.Error(err))
		} else {
			return value, nil
		}
	}

	value, err := fetch()
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("result not cacheable", zap.String("key", keyStr), zap.Error(err))
		return value, nil
	}
	if err := s.cache.Set(ctx, keyStr, encoded, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", keyStr), zap.Error(err))
	}
	return value, nil
}

// Revenue returns revenue aggregated by period.
func (s *Service) Revenue(ctx context.Context, f analytics.SaleFilter, groupBy analytics.Granularity) ([]analytics.RevenuePoint, error) {
	key := NewCacheKey("revenue").WithFilter(f).WithString("group_by", string(groupBy))
	return cached(ctx, s, key, func() ([]analytics.RevenuePoint, error) {
		return s.repo.Revenue(f, groupBy)
	})
}

// TopProducts returns the product ranking by quantity sold.
func (s *Service) TopProducts(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.ProductRanking, error) {
	key := NewCacheKey("products").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.ProductRanking, error) {
		return s.repo.TopProducts(f, limit)
	})
}

// ChannelPerformance returns per-channel revenue stats.
func (s *Service) ChannelPerformance(ctx context.Context, f analytics.SaleFilter) ([]analytics.ChannelStats, error) {
	key := NewCacheKey("channels").WithFilter(f)
	return cached(ctx, s, key, func() ([]analytics.ChannelStats, error) {
		return s.repo.ChannelPerformance(f)
	})
}

// MetricsSummary returns the global summary for the window.
func (s *Service) MetricsSummary(ctx context.Context, f analytics.SaleFilter) (*analytics.MetricsSummary, error) {
	key := NewCacheKey("summary").WithFilter(f)
	return cached(ctx, s, key, func() (*analytics.MetricsSummary, error) {
		return s.repo.MetricsSummary(f)
	})
}

// ProductsMargin returns the lowest-margin products.
func (s *Service) ProductsMargin(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.ProductMargin, error) {
	key := NewCacheKey("margin").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.ProductMargin, error) {
		return s.repo.ProductsMargin(f, limit)
	})
}

// DeliveryPerformance returns delivery timer stats per period.
func (s *Service) DeliveryPerformance(ctx context.Context, f analytics.SaleFilter, groupBy analytics.Granularity) ([]analytics.DeliveryPeriodStats, error) {
	key := NewCacheKey("delivery").WithFilter(f).WithString("group_by", string(groupBy))
	return cached(ctx, s, key, func() ([]analytics.DeliveryPeriodStats, error) {
		return s.repo.DeliveryPerformance(f, groupBy)
	})
}

// CustomerInsights returns the customer base summary.
func (s *Service) CustomerInsights(ctx context.Context, f analytics.SaleFilter) (*analytics.CustomerInsights, error) {
	key := NewCacheKey("customers").WithFilter(f)
	return cached(ctx, s, key, func() (*analytics.CustomerInsights, error) {
		return s.repo.CustomerInsights(f)
	})
}

// PeakHoursHeatmap returns the day-by-hour sales heatmap.
func (s *Service) PeakHoursHeatmap(ctx context.Context, f analytics.SaleFilter) ([]analytics.HeatmapCell, error) {
	key := NewCacheKey("heatmap").WithFilter(f)
	return cached(ctx, s, key, func() ([]analytics.HeatmapCell, error) {
		return s.repo.PeakHoursHeatmap(f)
	})
}

// AnomalyAlerts returns heuristic anomaly alerts for the window.
func (s *Service) AnomalyAlerts(ctx context.Context, f analytics.SaleFilter) ([]analytics.Alert, error) {
	key := NewCacheKey("anomalies").WithFilter(f)
	return cached(ctx, s, key, func() ([]analytics.Alert, error) {
		return s.repo.AnomalyAlerts(f)
	})
}

// TopItems returns the add-on item ranking.
func (s *Service) TopItems(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.ItemRanking, error) {
	key := NewCacheKey("items").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.ItemRanking, error) {
		return s.repo.TopItems(f, limit)
	})
}

// ProductsWithMostCustomizations returns products ranked by add-on rate.
func (s *Service) ProductsWithMostCustomizations(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.ProductCustomization, error) {
	key := NewCacheKey("products_customizations").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.ProductCustomization, error) {
		return s.repo.ProductsWithMostCustomizations(f, limit)
	})
}

// PaymentMixByChannel returns the payment type mix per channel.
func (s *Service) PaymentMixByChannel(ctx context.Context, f analytics.SaleFilter) ([]analytics.PaymentMix, error) {
	key := NewCacheKey("payments").WithFilter(f)
	return cached(ctx, s, key, func() ([]analytics.PaymentMix, error) {
		return s.repo.PaymentMixByChannel(f)
	})
}

// CancellationsAnalysis returns the cancellation breakdown.
func (s *Service) CancellationsAnalysis(ctx context.Context, f analytics.SaleFilter) (*analytics.CancellationStats, error) {
	key := NewCacheKey("cancellations").WithFilter(f)
	return cached(ctx, s, key, func() (*analytics.CancellationStats, error) {
		return s.repo.CancellationsAnalysis(f)
	})
}

// DeliveryPerformanceByRegion returns delivery stats per address region.
func (s *Service) DeliveryPerformanceByRegion(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.RegionDeliveryStats, error) {
	key := NewCacheKey("delivery_regions").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.RegionDeliveryStats, error) {
		return s.repo.DeliveryPerformanceByRegion(f, limit)
	})
}

// StoreGrowthAnalysis returns per-store growth classification.
func (s *Service) StoreGrowthAnalysis(ctx context.Context, f analytics.SaleFilter, minGrowthRate float64) ([]analytics.StoreGrowth, error) {
	key := NewCacheKey("store_growth").WithFilter(f).WithFloat("min_growth_rate", minGrowthRate)
	return cached(ctx, s, key, func() ([]analytics.StoreGrowth, error) {
		return s.repo.StoreGrowthAnalysis(f, minGrowthRate)
	})
}

// ProductSeasonalityAnalysis returns per-product seasonality scores.
func (s *Service) ProductSeasonalityAnalysis(ctx context.Context, f analytics.SaleFilter, minSeasonalityThreshold float64) ([]analytics.ProductSeasonality, error) {
	key := NewCacheKey("product_seasonality").WithFilter(f).WithFloat("min_threshold", minSeasonalityThreshold)
	return cached(ctx, s, key, func() ([]analytics.ProductSeasonality, error) {
		return s.repo.ProductSeasonalityAnalysis(f, minSeasonalityThreshold)
	})
}

// PromotionsAnalysis returns the discounts and surcharges summary.
func (s *Service) PromotionsAnalysis(ctx context.Context, f analytics.SaleFilter) (*analytics.PromotionStats, error) {
	key := NewCacheKey("promotions").WithFilter(f)
	return cached(ctx, s, key, func() (*analytics.PromotionStats, error) {
		return s.repo.PromotionsAnalysis(f)
	})
}

// InventoryTurnover returns the sales velocity report.
func (s *Service) InventoryTurnover(ctx context.Context, f analytics.SaleFilter, limit int) ([]analytics.InventoryTurnover, error) {
	key := NewCacheKey("inventory").WithFilter(f).WithInt("limit", limit)
	return cached(ctx, s, key, func() ([]analytics.InventoryTurnover, error) {
		return s.repo.InventoryTurnover(f, limit)
	})
}

// Invalidate deletes every cached result matching the glob pattern and
// returns how many were removed.
func (s *Service) Invalidate(ctx context.Context, pattern string) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	keys, err := s.cache.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return s.cache.Delete(ctx, keys...)
}

// Flush clears the whole result cache.
func (s *Service) Flush(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.FlushAll(ctx)
}

// CacheStatus describes the health of the result cache.
type CacheStatus struct {
	Status    string `json:"status"`
	KeysCount int    `json:"keys_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Status reports whether the cache store is reachable and how many results
// it currently holds.
func (s *Service) Status(ctx context.Context) CacheStatus {
	if s.cache == nil {
		return CacheStatus{Status: "disconnected"}
	}
	if err := s.cache.Ping(ctx); err != nil {
		return CacheStatus{Status: "error", Error: err.Error()}
	}
	keys, err := s.cache.Keys(ctx, "*")
	if err != nil {
		return CacheStatus{Status: "error", Error: err.Error()}
	}
	return CacheStatus{Status: "connected", KeysCount: len(keys)}
}
