package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"chartflow/internal/adapters/provider/coinmarket"
)

type Dependencies struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	Upstream *coinmarket.Client
	Logger   *slog.Logger
}

type Option func(context.Context, *Dependencies) error

func (d *Dependencies) Close() {
	if d == nil {
		return
	}

	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}

func NewDependencies(ctx context.Context, opts ...Option) (deps *Dependencies, err error) {
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	deps = &Dependencies{}

	for _, opt := range opts {
		if err := opt(ctx, deps); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

func WithPostgres(
	user string,
	password string,
	host string,
	port string,
	dbName string,
) Option {
	return func(ctx context.Context, d *Dependencies) error {
		format := "postgresql://%s:%s@%s:%s/%s?sslmode=disable"
		connString := fmt.Sprintf(format, user, password, host, port, dbName)

		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return err
		}

		d.Postgres = pool
		return nil
	}
}

func WithRedis(addr string, db int) Option {
	return func(ctx context.Context, d *Dependencies) error {
		client := redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}

		d.Redis = client
		return nil
	}
}

// WithUpstream builds the market data client. Order matters when combined
// with WithLogger: the client picks up whatever logger is configured before
// it.
func WithUpstream(apiKey, baseURL string, timeout time.Duration) Option {
	return func(_ context.Context, d *Dependencies) error {
		logger := d.Logger
		if logger == nil {
			logger = slog.Default()
		}

		d.Upstream = coinmarket.NewClient(
			apiKey,
			coinmarket.WithBaseURL(baseURL),
			coinmarket.WithTimeout(timeout),
			coinmarket.WithLogger(logger),
		)
		return nil
	}
}

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

func WithLogger(level string) Option {
	return func(_ context.Context, d *Dependencies) error {
		var logLvl slog.Level

		switch level {
		case EnvDev:
			logLvl = slog.LevelDebug
		case EnvProd:
			logLvl = slog.LevelInfo
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLvl,
		}))
		slog.SetDefault(logger)
		d.Logger = logger
		return nil
	}
}
