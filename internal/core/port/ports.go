package port

import (
	"context"
	"time"

	"chartflow/internal/core/domain"
)

// ChartCachePort is the key-value store consumed by the chart service.
// The store offers plain get/set/delete on opaque JSON values; no atomic
// compare-and-swap or multi-key operation is assumed.
type ChartCachePort interface {
	GetEntry(ctx context.Context, key string) (*domain.CacheEntry, error)
	SetEntry(ctx context.Context, key string, entry domain.CacheEntry) error

	GetLastUpdate(ctx context.Context, key string) (time.Time, bool, error)
	SetLastUpdate(ctx context.Context, key string, at time.Time) error
	DeleteLastUpdate(ctx context.Context, key string) error

	IsBusy(ctx context.Context, key string) (bool, error)
	SetBusy(ctx context.Context, key string, ttl time.Duration) error
	ClearBusy(ctx context.Context, key string) error

	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// HistoryRepositoryPort reads previously-ingested price history and asset
// category assignments from the relational store.
type HistoryRepositoryPort interface {
	// RecentHistory returns the most recent limit rows for the asset,
	// mapped to points in ascending timestamp order.
	RecentHistory(ctx context.Context, assetID string, limit int) ([]domain.TimeSeriesPoint, error)
	// AssetCategories returns the asset's category ids in insertion order.
	AssetCategories(ctx context.Context, assetID string) ([]string, error)
	ListCategorizedAssets(ctx context.Context) ([]string, error)
}

// QuoteProviderPort fetches a historical quote series from the upstream
// market data provider.
type QuoteProviderPort interface {
	HistoricalQuotes(ctx context.Context, assetID string, start, end time.Time, interval string) ([]domain.TimeSeriesPoint, error)
}

type ChartServicePort interface {
	GetChart(ctx context.Context, q domain.ChartQuery) (domain.ChartResult, error)
}

type RelatedServicePort interface {
	Related(ctx context.Context, assetID string, limit int) ([]domain.RelatedAsset, error)
}

// Pinger reports the health of an external dependency.
type Pinger interface {
	Ping(ctx context.Context) string
}
