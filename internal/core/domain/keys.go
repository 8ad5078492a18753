package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// TimeRange is the requested chart span.
type TimeRange string

const (
	RangeDay   TimeRange = "1d"
	RangeWeek  TimeRange = "7d"
	RangeMonth TimeRange = "1m"
	RangeAll   TimeRange = "all"
)

// ParseTimeRange maps a raw token to a TimeRange. Unknown or empty tokens
// fall open to the broadest range rather than rejecting the request.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case RangeDay, RangeWeek, RangeMonth, RangeAll:
		return TimeRange(s)
	default:
		return RangeAll
	}
}

// defaultIntervals maps each range to its sampling interval when the caller
// does not override it: finest for the shortest range, coarsest for the
// broadest.
var defaultIntervals = map[TimeRange]string{
	RangeDay:   "5m",
	RangeWeek:  "1h",
	RangeMonth: "1d",
	RangeAll:   "7d",
}

// historyLimits is the number of persistent-store rows used for the
// degraded fallback, per range.
var historyLimits = map[TimeRange]int{
	RangeDay:   1,
	RangeWeek:  7,
	RangeMonth: 30,
	RangeAll:   90,
}

// allRangeYears bounds the upstream window for the "all" range.
const allRangeYears = 10

// intervalPattern whitelists interval overrides. Anything else falls back to
// the range default so a free-form token cannot smuggle the key separator
// into a derived key.
var intervalPattern = regexp.MustCompile(`^[0-9]+[mhd]$`)

// ChartQuery is a validated chart request. The same (asset, range, interval)
// triple always derives the same cache keys.
type ChartQuery struct {
	AssetID      string
	Range        TimeRange
	Interval     string
	ForceRefresh bool
}

func NewChartQuery(assetID, timeRange, interval string, forceRefresh bool) (ChartQuery, error) {
	if strings.TrimSpace(assetID) == "" {
		return ChartQuery{}, fmt.Errorf("%w: missing asset id", ErrInvalidRequest)
	}

	r := ParseTimeRange(timeRange)
	if !intervalPattern.MatchString(interval) {
		interval = defaultIntervals[r]
	}

	return ChartQuery{
		AssetID:      assetID,
		Range:        r,
		Interval:     interval,
		ForceRefresh: forceRefresh,
	}, nil
}

// Key returns the cache key for the chart series. The asset id is opaque
// and may contain the separator, so it is percent-encoded; range and
// interval come from fixed tables and need no escaping.
func (q ChartQuery) Key() string {
	return fmt.Sprintf("charts:%s:%s:%s", url.QueryEscape(q.AssetID), q.Range, q.Interval)
}

// BusyKey returns the key of the in-flight refresh marker.
func (q ChartQuery) BusyKey() string {
	return q.Key() + ":busy"
}

// LastUpdateKey returns the key holding the last successful refresh time.
func (q ChartQuery) LastUpdateKey() string {
	return q.Key() + ":updated_at"
}

// Window returns the upstream fetch window for the query's range.
func (q ChartQuery) Window(now time.Time) (start, end time.Time) {
	switch q.Range {
	case RangeDay:
		return now.AddDate(0, 0, -1), now
	case RangeWeek:
		return now.AddDate(0, 0, -7), now
	case RangeMonth:
		return now.AddDate(0, -1, 0), now
	default:
		return now.AddDate(-allRangeYears, 0, 0), now
	}
}

// HistoryLimit returns how many persistent-store rows the degraded
// fallback should request for this query.
func (q ChartQuery) HistoryLimit() int {
	return historyLimits[q.Range]
}

// RelatedKey returns the cache key for an asset's related-assets payload.
func RelatedKey(assetID string) string {
	return "related:" + assetID
}
