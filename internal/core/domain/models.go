package domain

// TimeSeriesPoint is one sampled observation of an asset's market state.
type TimeSeriesPoint struct {
	Timestamp        int64   `json:"timestamp"` // milliseconds since epoch
	Price            float64 `json:"price"`
	Volume           float64 `json:"volume"`
	MarketCap        float64 `json:"marketCap"`
	PercentChange24h float64 `json:"percentChange24h"`
}

// CacheEntry is the cached series for one chart key. The last-update time
// lives under its own key so a forced refresh can clear it without dropping
// the series itself.
type CacheEntry struct {
	Series            []TimeSeriesPoint `json:"series"`
	LastDataTimestamp int64             `json:"lastDataTimestamp"`
}

// ChartSource tags which tier produced a chart result.
type ChartSource string

const (
	SourceFresh      ChartSource = "fresh"
	SourceCache      ChartSource = "cache"
	SourceStaleCache ChartSource = "stale-cache"
	SourceHistory    ChartSource = "history"
)

type ChartResult struct {
	Series []TimeSeriesPoint
	Source ChartSource
}

// RelatedAsset is one entry of the related-assets payload, scored by the
// number of categories shared with the subject asset.
type RelatedAsset struct {
	AssetID          string `json:"assetId"`
	SharedCategories int    `json:"sharedCategories"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Redis    string `json:"redis"`
	Postgres string `json:"postgres"`
}
