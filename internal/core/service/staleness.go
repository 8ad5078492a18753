package service

import (
	"strings"
	"time"

	"chartflow/internal/core/domain"
)

// Staleness windows per interval class. Finely sampled series go stale in
// minutes, hourly series within the hour, daily-or-coarser series once a day.
const (
	subHourWindow = 10 * time.Minute
	hourlyWindow  = time.Hour
	dailyWindow   = 24 * time.Hour
)

// stalenessWindow maps a sampling interval to the maximum cache age before
// a refresh is required. The mapping is a static table keyed on the
// interval's unit suffix, not derived from data.
func stalenessWindow(interval string) time.Duration {
	switch {
	case strings.HasSuffix(interval, "m"):
		return subHourWindow
	case strings.HasSuffix(interval, "h"):
		return hourlyWindow
	default:
		return dailyWindow
	}
}

// refreshNeeded decides purely on time and presence: no prior update, an
// exceeded window, or an empty cached series each force a refresh. It never
// inspects whether upstream data would actually differ.
func refreshNeeded(entry *domain.CacheEntry, lastUpdate time.Time, haveUpdate bool, now time.Time, window time.Duration) bool {
	if !haveUpdate {
		return true
	}
	if now.Sub(lastUpdate) > window {
		return true
	}
	return entry == nil || len(entry.Series) == 0
}
