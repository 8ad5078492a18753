package service

import (
	"testing"
	"time"

	"chartflow/internal/core/domain"
)

func TestStalenessWindow(t *testing.T) {
	cases := map[string]time.Duration{
		"5m":  subHourWindow,
		"15m": subHourWindow,
		"1h":  hourlyWindow,
		"12h": hourlyWindow,
		"1d":  dailyWindow,
		"7d":  dailyWindow,
	}

	for interval, want := range cases {
		if got := stalenessWindow(interval); got != want {
			t.Fatalf("interval %s: want %v, got %v", interval, want, got)
		}
	}
}

func TestRefreshNeeded(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entry := &domain.CacheEntry{Series: []domain.TimeSeriesPoint{{Timestamp: 1, Price: 2}}}

	if !refreshNeeded(entry, time.Time{}, false, now, time.Hour) {
		t.Fatal("absent last update must force refresh")
	}
	if !refreshNeeded(entry, now.Add(-2*time.Hour), true, now, time.Hour) {
		t.Fatal("exceeded window must force refresh")
	}
	if refreshNeeded(entry, now.Add(-30*time.Minute), true, now, time.Hour) {
		t.Fatal("fresh entry must not refresh")
	}
	if !refreshNeeded(nil, now.Add(-time.Minute), true, now, time.Hour) {
		t.Fatal("missing entry must force refresh")
	}
	if !refreshNeeded(&domain.CacheEntry{}, now.Add(-time.Minute), true, now, time.Hour) {
		t.Fatal("empty series must force refresh")
	}
}

// The decision is monotone in time: once past the window every later
// instant also refreshes, and inside the window no instant does.
func TestRefreshNeeded_Monotonic(t *testing.T) {
	lastUpdate := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := time.Hour
	entry := &domain.CacheEntry{Series: []domain.TimeSeriesPoint{{Timestamp: 1, Price: 2}}}

	now1 := lastUpdate.Add(window + time.Minute)
	now2 := lastUpdate.Add(window + time.Hour)
	if !refreshNeeded(entry, lastUpdate, true, now1, window) || !refreshNeeded(entry, lastUpdate, true, now2, window) {
		t.Fatal("both instants past the window must refresh")
	}

	in1 := lastUpdate.Add(time.Minute)
	in2 := lastUpdate.Add(window - time.Minute)
	if refreshNeeded(entry, lastUpdate, true, in1, window) || refreshNeeded(entry, lastUpdate, true, in2, window) {
		t.Fatal("no instant inside the window may refresh")
	}
}
