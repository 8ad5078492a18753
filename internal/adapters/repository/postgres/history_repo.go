package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
)

var _ port.HistoryRepositoryPort = (*HistoryRepository)(nil)

// HistoryRepository reads ingested price history and category assignments
// from Postgres. It is the degraded fallback behind the live cache, not the
// primary data path.
type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *slog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Ping checks the connection to Postgres.
func (r *HistoryRepository) Ping(ctx context.Context) string {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Sprintf("down: %v", err)
	}
	return "up"
}

// RecentHistory returns the most recent limit rows for the asset as points
// in ascending timestamp order. Optional columns default to zero.
func (r *HistoryRepository) RecentHistory(ctx context.Context, assetID string, limit int) ([]domain.TimeSeriesPoint, error) {
	query := `
		SELECT ts, price, volume_24h, market_cap, percent_change_24h
		FROM asset_history
		WHERE asset_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TimeSeriesPoint
	for rows.Next() {
		var (
			ts     time.Time
			price  float64
			volume *float64
			mcap   *float64
			change *float64
		)
		if err := rows.Scan(&ts, &price, &volume, &mcap, &change); err != nil {
			r.logger.Error("failed to scan history row", slog.Any("error", err))
			continue
		}

		point := domain.TimeSeriesPoint{
			Timestamp: ts.UnixMilli(),
			Price:     price,
		}
		if volume != nil {
			point.Volume = *volume
		}
		if mcap != nil {
			point.MarketCap = *mcap
		}
		if change != nil {
			point.PercentChange24h = *change
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive newest-first; callers expect ascending order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}

// AssetCategories returns the asset's category ids in insertion order.
func (r *HistoryRepository) AssetCategories(ctx context.Context, assetID string) ([]string, error) {
	query := `
		SELECT category_id
		FROM asset_categories
		WHERE asset_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			r.logger.Error("failed to scan category row", slog.Any("error", err))
			continue
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *HistoryRepository) ListCategorizedAssets(ctx context.Context) ([]string, error) {
	query := `
		SELECT asset_id
		FROM asset_categories
		GROUP BY asset_id
		ORDER BY asset_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []string
	for rows.Next() {
		var assetID string
		if err := rows.Scan(&assetID); err != nil {
			r.logger.Error("failed to scan asset row", slog.Any("error", err))
			continue
		}
		assets = append(assets, assetID)
	}
	return assets, rows.Err()
}
