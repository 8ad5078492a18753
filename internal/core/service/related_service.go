package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
)

const (
	defaultRelatedTTL  = time.Hour
	defaultRelatedTopN = 10
	relatedFanout      = 8
)

// RelatedService computes related assets by category overlap and caches the
// full payload under a single key with a fixed TTL. Unlike the chart path
// there is no busy marker here: the computation is idempotent and cheap
// enough to duplicate.
type RelatedService struct {
	cache   port.ChartCachePort
	history port.HistoryRepositoryPort
	logger  *slog.Logger

	ttl  time.Duration
	topN int
}

type RelatedOption func(*RelatedService)

func WithRelatedTTL(ttl time.Duration) RelatedOption {
	return func(s *RelatedService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithRelatedTopN(n int) RelatedOption {
	return func(s *RelatedService) {
		if n > 0 {
			s.topN = n
		}
	}
}

func NewRelatedService(
	cache port.ChartCachePort,
	history port.HistoryRepositoryPort,
	logger *slog.Logger,
	opts ...RelatedOption,
) *RelatedService {
	s := &RelatedService{
		cache:   cache,
		history: history,
		logger:  logger,
		ttl:     defaultRelatedTTL,
		topN:    defaultRelatedTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ port.RelatedServicePort = (*RelatedService)(nil)

func (s *RelatedService) Related(ctx context.Context, assetID string, limit int) ([]domain.RelatedAsset, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, fmt.Errorf("%w: missing asset id", domain.ErrInvalidRequest)
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	key := domain.RelatedKey(assetID)

	var cached []domain.RelatedAsset
	ok, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("related payload read failed, treating as miss",
			slog.String("key", key), slog.Any("error", err))
	} else if ok {
		return truncateRelated(cached, limit), nil
	}

	related, err := s.compute(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, related, s.ttl); err != nil {
		s.logger.Error("failed to cache related payload",
			slog.String("key", key), slog.Any("error", err))
	}

	return truncateRelated(related, limit), nil
}

type relatedScore struct {
	assetID string
	shared  int
	// earliest position in the subject's category list among shared
	// categories, used to break score ties
	firstShared int
}

func (s *RelatedService) compute(ctx context.Context, assetID string) ([]domain.RelatedAsset, error) {
	subject, err := s.history.AssetCategories(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("load subject categories: %w", err)
	}

	position := make(map[string]int, len(subject))
	for i, cat := range subject {
		position[cat] = i
	}

	candidates, err := s.history.ListCategorizedAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidate assets: %w", err)
	}

	var (
		mu     sync.Mutex
		scores []relatedScore
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(relatedFanout)
	for _, candidate := range candidates {
		if candidate == assetID {
			continue
		}
		g.Go(func() error {
			cats, err := s.history.AssetCategories(gctx, candidate)
			if err != nil {
				return fmt.Errorf("load categories for %s: %w", candidate, err)
			}

			shared := 0
			firstShared := len(subject)
			for _, cat := range cats {
				if pos, ok := position[cat]; ok {
					shared++
					if pos < firstShared {
						firstShared = pos
					}
				}
			}
			if shared == 0 {
				return nil
			}

			mu.Lock()
			scores = append(scores, relatedScore{assetID: candidate, shared: shared, firstShared: firstShared})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].shared != scores[j].shared {
			return scores[i].shared > scores[j].shared
		}
		if scores[i].firstShared != scores[j].firstShared {
			return scores[i].firstShared < scores[j].firstShared
		}
		return scores[i].assetID < scores[j].assetID
	})

	related := make([]domain.RelatedAsset, 0, len(scores))
	for _, sc := range scores {
		related = append(related, domain.RelatedAsset{AssetID: sc.assetID, SharedCategories: sc.shared})
	}
	return truncateRelated(related, s.topN), nil
}

func truncateRelated(related []domain.RelatedAsset, limit int) []domain.RelatedAsset {
	if len(related) > limit {
		return related[:limit]
	}
	return related
}
