package http

import (
	"net/http"

	"chartflow/internal/adapters/handlers/http/handler"
)

func addRoutes(mux *http.ServeMux, chartHandler *handler.ChartHandler) {
	mux.HandleFunc("GET /charts/{assetID}", chartHandler.GetChart)
	// An absent asset segment is a missing asset id (400), not an unknown
	// route; the handler rejects the empty path value.
	mux.HandleFunc("GET /charts", chartHandler.GetChart)
	mux.HandleFunc("GET /charts/{$}", chartHandler.GetChart)
	mux.HandleFunc("GET /assets/{assetID}/related", chartHandler.GetRelated)
	mux.HandleFunc("GET /healthz", chartHandler.Health)
}
