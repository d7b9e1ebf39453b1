// Package freshness tracks the liveness of the device's independent data
// sources. It is pure timestamp bookkeeping, no I/O: each producer marks its
// source on new data and the mode arbiter queries staleness against the
// source's configured window.
package freshness

import "time"

// Source identifies one independently tracked data source.
type Source int

const (
	// Telemetry is the serial host link, windowed: stale means the host is gone.
	Telemetry Source = iota
	// NetworkLink is binary up/down, not time-windowed.
	NetworkLink
	// TimeSync latches once the clock has been synchronized and stays
	// fresh until restart.
	TimeSync
	// Weather is windowed on a long interval; staleness triggers a
	// background refresh and never blanks the display.
	Weather

	sourceCount
)

// String returns the source name for log fields.
func (s Source) String() string {
	switch s {
	case Telemetry:
		return "telemetry"
	case NetworkLink:
		return "network"
	case TimeSync:
		return "timesync"
	case Weather:
		return "weather"
	default:
		return "unknown"
	}
}

// Default staleness windows for the windowed sources.
const (
	DefaultTelemetryWindow = 5 * time.Second
	DefaultWeatherWindow   = 15 * time.Minute
)

// Tracker keeps the last-observed timestamp per source. The zero timestamp
// means never seen, which is always stale.
type Tracker struct {
	lastSeen [sourceCount]time.Time
	window   [sourceCount]time.Duration
	linkUp   bool
	synced   bool
}

// NewTracker returns a tracker with the given windows for the two windowed
// sources. Zero durations fall back to the defaults.
func NewTracker(telemetryWindow, weatherWindow time.Duration) *Tracker {
	if telemetryWindow <= 0 {
		telemetryWindow = DefaultTelemetryWindow
	}
	if weatherWindow <= 0 {
		weatherWindow = DefaultWeatherWindow
	}

	t := &Tracker{}
	t.window[Telemetry] = telemetryWindow
	t.window[Weather] = weatherWindow
	return t
}

// MarkFresh records that the source produced data at the given instant.
// For NetworkLink this also raises the link, for TimeSync it latches sync.
func (t *Tracker) MarkFresh(s Source, now time.Time) {
	t.lastSeen[s] = now

	switch s {
	case NetworkLink:
		t.linkUp = true
	case TimeSync:
		t.synced = true
	}
}

// MarkLinkDown lowers the binary network link state.
func (t *Tracker) MarkLinkDown() {
	t.linkUp = false
}

// IsFresh reports whether the source's last update falls inside its window.
// NetworkLink reports the binary link state, TimeSync the latched sync state.
func (t *Tracker) IsFresh(s Source, now time.Time) bool {
	switch s {
	case NetworkLink:
		return t.linkUp
	case TimeSync:
		return t.synced
	}

	last := t.lastSeen[s]
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < t.window[s]
}

// LastSeen returns the last-observed timestamp for a source, zero if never.
func (t *Tracker) LastSeen(s Source) time.Time {
	return t.lastSeen[s]
}
