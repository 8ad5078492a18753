package http

import (
	"log/slog"
	"net/http"

	"chartflow/internal/adapters/handlers/http/handler"
)

func NewServer(
	logger *slog.Logger,
	chartHandler *handler.ChartHandler,
) http.Handler {
	mux := http.NewServeMux()
	addRoutes(mux, chartHandler)

	var h http.Handler = mux
	h = requestLogging(logger, h)

	return h
}
