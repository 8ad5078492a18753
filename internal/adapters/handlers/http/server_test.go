package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"chartflow/internal/adapters/handlers/http/handler"
	"chartflow/internal/core/domain"
)

type stubCharts struct{}

func (stubCharts) GetChart(context.Context, domain.ChartQuery) (domain.ChartResult, error) {
	return domain.ChartResult{
		Series: []domain.TimeSeriesPoint{{Timestamp: 1000, Price: 1.5}},
		Source: domain.SourceCache,
	}, nil
}

type stubRelated struct{}

func (stubRelated) Related(context.Context, string, int) ([]domain.RelatedAsset, error) {
	return nil, nil
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) string { return "up" }

func testServer() http.Handler {
	h := handler.NewChartHandler(slog.Default(), stubCharts{}, stubRelated{}, stubPinger{}, stubPinger{})
	return NewServer(slog.Default(), h)
}

func TestRoutes_MissingAssetSegmentIsBadRequest(t *testing.T) {
	srv := testServer()

	for _, path := range []string{"/charts", "/charts/"} {
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", path, rr.Code)
		}
	}
}

func TestRoutes_ChartWithAsset(t *testing.T) {
	srv := testServer()

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/charts/1027", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
