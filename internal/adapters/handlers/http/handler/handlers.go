package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
	"chartflow/pkg/jsonresponse"
)

const chartCacheControl = "public, max-age=300"

type ChartHandler struct {
	charts  port.ChartServicePort
	related port.RelatedServicePort
	cache   port.Pinger
	db      port.Pinger
	logger  *slog.Logger
}

func NewChartHandler(
	logger *slog.Logger,
	charts port.ChartServicePort,
	related port.RelatedServicePort,
	cache port.Pinger,
	db port.Pinger,
) *ChartHandler {
	return &ChartHandler{
		charts:  charts,
		related: related,
		cache:   cache,
		db:      db,
		logger:  logger,
	}
}

// GetChart serves `GET /charts/{assetID}`. The client receives either data
// (fresh or stale, indistinguishable) or a generic error.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	assetID := r.PathValue("assetID")
	query := r.URL.Query()

	q, err := domain.NewChartQuery(
		assetID,
		query.Get("timeRange"),
		query.Get("interval"),
		query.Get("refresh") == "true",
	)
	if err != nil {
		h.logger.Error("invalid chart request", slog.Any("error", err))
		jsonresponse.WriteError(w, jsonresponse.WrapError(
			jsonresponse.ErrInvalidInput,
			"Asset id must be provided",
			http.StatusBadRequest,
		))
		return
	}

	result, err := h.charts.GetChart(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to get chart", slog.String("key", q.Key()), slog.Any("error", err))
		jsonresponse.WriteError(w, jsonresponse.WrapError(
			jsonresponse.ErrInternalError,
			"Failed to get chart data",
			http.StatusInternalServerError,
		))
		return
	}

	series := result.Series
	if series == nil {
		series = []domain.TimeSeriesPoint{}
	}

	jsonresponse.WriteResponse(w, http.StatusOK, series, map[string]string{
		"Cache-Control": chartCacheControl,
	})
	h.logger.Info("Served chart",
		slog.String("key", q.Key()),
		slog.String("source", string(result.Source)),
		slog.Int("points", len(series)))
}

// GetRelated serves `GET /assets/{assetID}/related`.
func (h *ChartHandler) GetRelated(w http.ResponseWriter, r *http.Request) {
	assetID := r.PathValue("assetID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	related, err := h.related.Related(r.Context(), assetID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			jsonresponse.WriteError(w, jsonresponse.WrapError(
				jsonresponse.ErrInvalidInput,
				"Asset id must be provided",
				http.StatusBadRequest,
			))
			return
		}
		h.logger.Error("Failed to get related assets", slog.String("asset", assetID), slog.Any("error", err))
		jsonresponse.WriteError(w, jsonresponse.WrapError(
			jsonresponse.ErrInternalError,
			"Failed to get related assets",
			http.StatusInternalServerError,
		))
		return
	}

	if related == nil {
		related = []domain.RelatedAsset{}
	}
	jsonresponse.WriteResponse(w, http.StatusOK, related)
}

func (h *ChartHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := domain.HealthResponse{
		Status:   "ok",
		Redis:    h.cache.Ping(r.Context()),
		Postgres: h.db.Ping(r.Context()),
	}
	if resp.Redis != "up" || resp.Postgres != "up" {
		resp.Status = "degraded"
	}
	jsonresponse.WriteResponse(w, http.StatusOK, resp)
}
