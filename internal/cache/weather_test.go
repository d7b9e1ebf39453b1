package cache

import (
	"testing"
	"time"
)

func TestWeatherFirstRefreshIsDueImmediately(t *testing.T) {
	w := NewWeather(15 * time.Minute)

	if !w.NeedsRefresh(t0) {
		t.Fatalf("first refresh must be due")
	}
	if w.Snapshot().Valid {
		t.Fatalf("snapshot valid before any fetch")
	}
}

func TestWeatherSuccessfulUpdate(t *testing.T) {
	w := NewWeather(15 * time.Minute)

	w.Update(WeatherSnapshot{TemperatureC: 21, ConditionCode: 3}, true, t0)

	snap := w.Snapshot()
	if !snap.Valid {
		t.Fatalf("expected valid snapshot")
	}
	if snap.TemperatureC != 21 || snap.ConditionCode != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !snap.FetchedAt.Equal(t0) {
		t.Fatalf("expected FetchedAt %v, got %v", t0, snap.FetchedAt)
	}

	if w.NeedsRefresh(t0.Add(14 * time.Minute)) {
		t.Fatalf("refresh due inside the interval")
	}
	if !w.NeedsRefresh(t0.Add(16 * time.Minute)) {
		t.Fatalf("refresh not due after the interval")
	}
}

func TestWeatherFailedUpdateKeepsSnapshot(t *testing.T) {
	w := NewWeather(15 * time.Minute)
	w.Update(WeatherSnapshot{TemperatureC: 21, ConditionCode: 3}, true, t0)

	// A transient blip must not blank the display
	w.Update(WeatherSnapshot{}, false, t0.Add(15*time.Minute))

	snap := w.Snapshot()
	if !snap.Valid || snap.TemperatureC != 21 {
		t.Fatalf("failed refresh clobbered the snapshot: %+v", snap)
	}

	// The failure still moves the attempt clock, no hammering
	if w.NeedsRefresh(t0.Add(16 * time.Minute)) {
		t.Fatalf("retry due right after a failed attempt")
	}
}

func TestWeatherSeed(t *testing.T) {
	w := NewWeather(15 * time.Minute)

	w.Seed(WeatherSnapshot{TemperatureC: 9, ConditionCode: 61, Valid: true, FetchedAt: t0})
	if got := w.Snapshot(); !got.Valid || got.TemperatureC != 9 {
		t.Fatalf("seed not installed: %+v", got)
	}

	// An invalid persisted snapshot is ignored
	w2 := NewWeather(15 * time.Minute)
	w2.Seed(WeatherSnapshot{TemperatureC: 9})
	if w2.Snapshot().Valid {
		t.Fatalf("invalid seed accepted")
	}

	// Seeding does not suppress the first live fetch
	if !w.NeedsRefresh(t0) {
		t.Fatalf("seed suppressed the first refresh")
	}
}
