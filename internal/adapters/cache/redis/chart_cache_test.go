package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"chartflow/internal/core/domain"
)

func testCache(t *testing.T) (*ChartCache, *redis.Client) {
	t.Helper()
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	return NewChartCache(rdb, slog.Default()), rdb
}

func TestEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, rdb := testCache(t)

	key := "charts:testasset:1d:5m"
	entry := domain.CacheEntry{
		Series: []domain.TimeSeriesPoint{
			{Timestamp: 1000, Price: 1.5, Volume: 10},
			{Timestamp: 2000, Price: 1.6, Volume: 12},
		},
		LastDataTimestamp: 2000,
	}

	if err := cache.SetEntry(ctx, key, entry); err != nil {
		t.Fatalf("SetEntry failed: %v", err)
	}

	got, err := cache.GetEntry(ctx, key)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got == nil || len(got.Series) != 2 || got.LastDataTimestamp != 2000 {
		t.Fatalf("unexpected entry: %+v", got)
	}

	// Cleanup
	if err := rdb.Del(ctx, key).Err(); err != nil {
		t.Fatalf("Failed to cleanup Redis: %v", err)
	}
}

func TestGetEntry_Miss(t *testing.T) {
	ctx := context.Background()
	cache, _ := testCache(t)

	got, err := cache.GetEntry(ctx, "charts:doesnotexist:1d:5m")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil on miss, got %+v", got)
	}
}

func TestBusyMarker(t *testing.T) {
	ctx := context.Background()
	cache, rdb := testCache(t)

	key := "charts:testasset:1d:5m:busy"

	busy, err := cache.IsBusy(ctx, key)
	if err != nil || busy {
		t.Fatalf("marker should be absent: busy=%v err=%v", busy, err)
	}

	if err := cache.SetBusy(ctx, key, 30*time.Second); err != nil {
		t.Fatalf("SetBusy failed: %v", err)
	}
	busy, err = cache.IsBusy(ctx, key)
	if err != nil || !busy {
		t.Fatalf("marker should be present: busy=%v err=%v", busy, err)
	}

	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 {
		t.Fatal("busy marker must carry a TTL")
	}

	if err := cache.ClearBusy(ctx, key); err != nil {
		t.Fatalf("ClearBusy failed: %v", err)
	}
	busy, _ = cache.IsBusy(ctx, key)
	if busy {
		t.Fatal("marker should be gone after ClearBusy")
	}
}

func TestLastUpdate(t *testing.T) {
	ctx := context.Background()
	cache, rdb := testCache(t)

	key := "charts:testasset:1d:5m:updated_at"
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	_, ok, err := cache.GetLastUpdate(ctx, key)
	if err != nil || ok {
		t.Fatalf("last update should be absent: ok=%v err=%v", ok, err)
	}

	if err := cache.SetLastUpdate(ctx, key, at); err != nil {
		t.Fatalf("SetLastUpdate failed: %v", err)
	}
	got, ok, err := cache.GetLastUpdate(ctx, key)
	if err != nil || !ok {
		t.Fatalf("GetLastUpdate failed: ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Fatalf("want %v, got %v", at, got)
	}

	if err := cache.DeleteLastUpdate(ctx, key); err != nil {
		t.Fatalf("DeleteLastUpdate failed: %v", err)
	}
	_, ok, _ = cache.GetLastUpdate(ctx, key)
	if ok {
		t.Fatal("last update should be gone after delete")
	}

	// Cleanup
	if err := rdb.Del(ctx, key).Err(); err != nil {
		t.Fatalf("Failed to cleanup Redis: %v", err)
	}
}
