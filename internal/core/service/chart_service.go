package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
)

const defaultBusyTTL = 30 * time.Second

// ChartService serves historical price series through a cache-aside chain:
// cache hit, upstream refresh, stale cache, persistent-store fallback, hard
// failure. A short-lived busy marker in the cache store de-duplicates
// concurrent refreshes of the same key.
type ChartService struct {
	cache    port.ChartCachePort
	history  port.HistoryRepositoryPort
	provider port.QuoteProviderPort
	logger   *slog.Logger

	busyTTL time.Duration
	now     func() time.Time
}

type ChartOption func(*ChartService)

func WithBusyTTL(ttl time.Duration) ChartOption {
	return func(s *ChartService) {
		if ttl > 0 {
			s.busyTTL = ttl
		}
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ChartOption {
	return func(s *ChartService) {
		s.now = now
	}
}

func NewChartService(
	cache port.ChartCachePort,
	history port.HistoryRepositoryPort,
	provider port.QuoteProviderPort,
	logger *slog.Logger,
	opts ...ChartOption,
) *ChartService {
	s := &ChartService{
		cache:    cache,
		history:  history,
		provider: provider,
		logger:   logger,
		busyTTL:  defaultBusyTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ port.ChartServicePort = (*ChartService)(nil)

func (s *ChartService) GetChart(ctx context.Context, q domain.ChartQuery) (domain.ChartResult, error) {
	if q.ForceRefresh {
		// Only the last-update key is cleared; the series survives so it can
		// still serve as a fallback if the forced refresh fails.
		if err := s.cache.DeleteLastUpdate(ctx, q.LastUpdateKey()); err != nil {
			s.logger.Warn("failed to clear last update for forced refresh",
				slog.String("key", q.Key()), slog.Any("error", err))
		}
	}

	busy, err := s.cache.IsBusy(ctx, q.BusyKey())
	if err != nil {
		s.logger.Warn("busy marker read failed, assuming not busy",
			slog.String("key", q.Key()), slog.Any("error", err))
		busy = false
	}
	if busy {
		// Another request is already refreshing this key. Serve whatever is
		// cached right now, stale included, rather than waiting on it.
		entry := s.loadEntry(ctx, q)
		var series []domain.TimeSeriesPoint
		if entry != nil {
			series = entry.Series
		}
		return domain.ChartResult{Series: series, Source: domain.SourceCache}, nil
	}

	// The check above and this set are not atomic; two requests can both
	// pass and refresh twice. Accepted as rare, low-cost duplication.
	if err := s.cache.SetBusy(ctx, q.BusyKey(), s.busyTTL); err != nil {
		s.logger.Warn("failed to set busy marker",
			slog.String("key", q.Key()), slog.Any("error", err))
	}
	defer func() {
		// The marker must go away on every exit path or the key could stay
		// unrefreshable until the marker TTL runs out.
		if err := s.cache.ClearBusy(context.WithoutCancel(ctx), q.BusyKey()); err != nil {
			s.logger.Warn("failed to clear busy marker",
				slog.String("key", q.Key()), slog.Any("error", err))
		}
	}()

	entry := s.loadEntry(ctx, q)
	lastUpdate, haveUpdate := s.loadLastUpdate(ctx, q)

	if !refreshNeeded(entry, lastUpdate, haveUpdate, s.now(), stalenessWindow(q.Interval)) {
		return domain.ChartResult{Series: entry.Series, Source: domain.SourceCache}, nil
	}

	return s.refresh(ctx, q, entry)
}

// refresh runs the tiered chain: upstream fetch, then stale cache, then the
// persistent store, then hard failure carrying the upstream error. Any
// previously-seen data beats a request failure; fabricating data never
// happens.
func (s *ChartService) refresh(ctx context.Context, q domain.ChartQuery, prev *domain.CacheEntry) (domain.ChartResult, error) {
	start, end := q.Window(s.now())

	points, err := s.provider.HistoricalQuotes(ctx, q.AssetID, start, end, q.Interval)
	if err == nil {
		s.storeEntry(ctx, q, domain.CacheEntry{
			Series:            points,
			LastDataTimestamp: maxTimestamp(points),
		})
		return domain.ChartResult{Series: points, Source: domain.SourceFresh}, nil
	}
	s.logger.Warn("upstream refresh failed",
		slog.String("key", q.Key()), slog.Any("error", err))

	if prev != nil && len(prev.Series) > 0 {
		s.logger.Info("serving stale cached series",
			slog.String("key", q.Key()), slog.Int("points", len(prev.Series)))
		return domain.ChartResult{Series: prev.Series, Source: domain.SourceStaleCache}, nil
	}

	rows, herr := s.history.RecentHistory(ctx, q.AssetID, q.HistoryLimit())
	if herr != nil {
		s.logger.Error("history fallback failed",
			slog.String("key", q.Key()), slog.Any("error", herr))
	} else if len(rows) > 0 {
		// Written back with a fresh last-update so the next request is a
		// plain cache hit instead of another attempt against an upstream
		// that just failed.
		s.storeEntry(ctx, q, domain.CacheEntry{
			Series:            rows,
			LastDataTimestamp: maxTimestamp(rows),
		})
		s.logger.Info("serving persistent-store fallback",
			slog.String("key", q.Key()), slog.Int("points", len(rows)))
		return domain.ChartResult{Series: rows, Source: domain.SourceHistory}, nil
	}

	return domain.ChartResult{}, fmt.Errorf("%w: %w", domain.ErrHardFailure, err)
}

// loadEntry treats cache read failures as a miss.
func (s *ChartService) loadEntry(ctx context.Context, q domain.ChartQuery) *domain.CacheEntry {
	entry, err := s.cache.GetEntry(ctx, q.Key())
	if err != nil {
		s.logger.Warn("cache entry read failed, treating as miss",
			slog.String("key", q.Key()), slog.Any("error", err))
		return nil
	}
	return entry
}

func (s *ChartService) loadLastUpdate(ctx context.Context, q domain.ChartQuery) (time.Time, bool) {
	at, ok, err := s.cache.GetLastUpdate(ctx, q.LastUpdateKey())
	if err != nil {
		s.logger.Warn("last update read failed, treating as absent",
			slog.String("key", q.Key()), slog.Any("error", err))
		return time.Time{}, false
	}
	return at, ok
}

// storeEntry writes the entry and stamps the last-update key. A caching
// failure never fails the request.
func (s *ChartService) storeEntry(ctx context.Context, q domain.ChartQuery, entry domain.CacheEntry) {
	if err := s.cache.SetEntry(ctx, q.Key(), entry); err != nil {
		s.logger.Error("failed to write cache entry",
			slog.String("key", q.Key()), slog.Any("error", err))
		return
	}
	if err := s.cache.SetLastUpdate(ctx, q.LastUpdateKey(), s.now()); err != nil {
		s.logger.Error("failed to write last update",
			slog.String("key", q.Key()), slog.Any("error", err))
	}
}

func maxTimestamp(points []domain.TimeSeriesPoint) int64 {
	var max int64
	for _, p := range points {
		if p.Timestamp > max {
			max = p.Timestamp
		}
	}
	return max
}
