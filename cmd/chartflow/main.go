package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"chartflow/config"
	rediscache "chartflow/internal/adapters/cache/redis"
	httpserver "chartflow/internal/adapters/handlers/http"
	"chartflow/internal/adapters/handlers/http/handler"
	"chartflow/internal/adapters/repository/postgres"
	"chartflow/internal/core/service"
	pkgconfig "chartflow/pkg/config"
)

func init() {
	initialLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(initialLogger)
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	deps, err := pkgconfig.NewDependencies(
		ctx,
		pkgconfig.WithLogger(cfg.Server.LogLvl),
		pkgconfig.WithPostgres(
			cfg.Postgres.User,
			cfg.Postgres.Pass,
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.DBName,
		),
		pkgconfig.WithRedis(
			cfg.Redis.Addr,
			cfg.Redis.DB,
		),
		pkgconfig.WithUpstream(
			cfg.Upstream.APIKey,
			cfg.Upstream.BaseURL,
			time.Duration(cfg.Upstream.TimeoutSec)*time.Second,
		),
	)
	if err != nil {
		slog.Error("failed to load dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Close()
	slog.SetDefault(deps.Logger)

	cache := rediscache.NewChartCache(deps.Redis, deps.Logger)
	repo := postgres.NewHistoryRepository(deps.Postgres, deps.Logger)

	chartService := service.NewChartService(cache, repo, deps.Upstream, deps.Logger,
		service.WithBusyTTL(time.Duration(cfg.Chart.BusyTTLSec)*time.Second))
	relatedService := service.NewRelatedService(cache, repo, deps.Logger,
		service.WithRelatedTTL(time.Duration(cfg.Chart.RelatedTTLSec)*time.Second),
		service.WithRelatedTopN(cfg.Chart.RelatedTopN))

	chartHandler := handler.NewChartHandler(deps.Logger, chartService, relatedService, cache, repo)
	srv := httpserver.NewServer(deps.Logger, chartHandler)

	run(ctx, cfg, srv)
}

func run(ctx context.Context, cfg *config.Config, srv http.Handler) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv,
	}

	go func() {
		slog.Info("server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Info("error listening and serving", "error", err)
		}
	}()

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Gracefully shutting down...")

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Info("error shutting down http server", "error", err)
		}
	}()
	wg.Wait()
}
