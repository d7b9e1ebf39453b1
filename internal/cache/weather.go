package cache

import "time"

// DefaultWeatherRefresh is the cadence of weather fetches.
const DefaultWeatherRefresh = 15 * time.Minute

// WeatherSnapshot is one fetched weather reading.
type WeatherSnapshot struct {
	TemperatureC  int
	ConditionCode int
	Valid         bool
	FetchedAt     time.Time
}

// Weather keeps the most recent weather snapshot. A failed refresh leaves
// the previous snapshot in place rather than clearing it, a transient
// network blip must not flicker the screen.
type Weather struct {
	refresh time.Duration
	snap    WeatherSnapshot

	lastAttempt time.Time
}

// NewWeather returns a weather cache refreshed on the given interval.
func NewWeather(refresh time.Duration) *Weather {
	if refresh <= 0 {
		refresh = DefaultWeatherRefresh
	}
	return &Weather{refresh: refresh}
}

// Seed installs a persisted snapshot, typically the one saved before the
// last restart, so the idle screen has something to show right away.
func (w *Weather) Seed(snap WeatherSnapshot) {
	if snap.Valid {
		w.snap = snap
	}
}

// NeedsRefresh reports whether a fetch is due. Attempts are paced on the
// refresh interval regardless of outcome so a failing endpoint is not
// hammered every tick.
func (w *Weather) NeedsRefresh(now time.Time) bool {
	if w.lastAttempt.IsZero() {
		return true
	}
	return now.Sub(w.lastAttempt) >= w.refresh
}

// Update records a fetch outcome. Only a successful fetch replaces the
// snapshot; a failure just moves the attempt clock forward.
func (w *Weather) Update(snap WeatherSnapshot, ok bool, now time.Time) {
	w.lastAttempt = now
	if !ok {
		return
	}

	snap.Valid = true
	snap.FetchedAt = now
	w.snap = snap
}

// Snapshot returns the latest weather reading, Valid=false when never fetched.
func (w *Weather) Snapshot() WeatherSnapshot {
	return w.snap
}
