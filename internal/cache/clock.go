// Package cache holds the device's self-sufficient display values: the
// locally synchronized clock and the last fetched weather reading. Both are
// refreshed on their own cadence, independent of the mode arbiter, and only
// feed it staleness state.
package cache

import "time"

// DefaultClockRefresh is the cadence of network clock refreshes when no
// serial time string is present.
const DefaultClockRefresh = time.Minute

// Clock keeps the best known wall time. A serial-provided time string takes
// precedence while the host link is alive, it is assumed local to the
// monitored machine; the network clock fills in when the link goes silent.
type Clock struct {
	refresh      time.Duration
	serialWindow time.Duration

	// serial-provided strings, verbatim from the last record
	serialTime string
	serialDate string
	serialAt   time.Time

	// network synced base time and the local instant it was taken at
	synced   time.Time
	syncedAt time.Time

	lastAttempt time.Time
}

// NewClock returns a clock refreshed from the network on the given interval.
// serialWindow bounds how long a serial-provided time stays authoritative.
func NewClock(refresh, serialWindow time.Duration) *Clock {
	if refresh <= 0 {
		refresh = DefaultClockRefresh
	}
	if serialWindow <= 0 {
		serialWindow = 5 * time.Second
	}
	return &Clock{refresh: refresh, serialWindow: serialWindow}
}

// SetSerial stores the serial-provided time and date strings. Empty values
// never clobber previous ones.
func (c *Clock) SetSerial(timeStr, dateStr string, now time.Time) {
	if timeStr != "" {
		c.serialTime = timeStr
		c.serialAt = now
	}
	if dateStr != "" {
		c.serialDate = dateStr
	}
}

// SetNetwork stores a network-synchronized base time.
func (c *Clock) SetNetwork(t, now time.Time) {
	c.synced = t
	c.syncedAt = now
}

// NeedsNetworkRefresh reports whether a network refresh attempt is due. A
// live serial time skips the refresh for this tick, the serial source is
// authoritative while it lasts. Attempts are paced on the refresh interval
// regardless of outcome.
func (c *Clock) NeedsNetworkRefresh(now time.Time) bool {
	if c.serialLive(now) {
		return false
	}
	if c.lastAttempt.IsZero() {
		return true
	}
	return now.Sub(c.lastAttempt) >= c.refresh
}

// MarkRefreshAttempt moves the attempt clock forward.
func (c *Clock) MarkRefreshAttempt(now time.Time) {
	c.lastAttempt = now
}

// Synced reports whether a network time base was ever established.
func (c *Clock) Synced() bool {
	return !c.syncedAt.IsZero()
}

// TimeText returns the clock display string: the live serial time when one
// is cached, otherwise the advanced network time, otherwise a placeholder.
func (c *Clock) TimeText(now time.Time) string {
	if c.serialLive(now) {
		return c.serialTime
	}
	if c.Synced() {
		return c.synced.Add(now.Sub(c.syncedAt)).Format("15:04")
	}
	if c.serialTime != "" {
		// Better a frozen timestamp than none at all
		return c.serialTime
	}
	return "--:--"
}

// DateText returns the date display string, empty when unknown.
func (c *Clock) DateText(now time.Time) string {
	if c.serialLive(now) && c.serialDate != "" {
		return c.serialDate
	}
	if c.Synced() {
		return c.synced.Add(now.Sub(c.syncedAt)).Format("02 Jan")
	}
	return c.serialDate
}

func (c *Clock) serialLive(now time.Time) bool {
	return !c.serialAt.IsZero() && now.Sub(c.serialAt) < c.serialWindow
}
