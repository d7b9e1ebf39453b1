package freshness

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 6, 7, 14, 32, 0, 0, time.UTC)

func TestNeverSeenIsStale(t *testing.T) {
	tr := NewTracker(0, 0)

	for s := Telemetry; s < sourceCount; s++ {
		if tr.IsFresh(s, t0) {
			t.Fatalf("source %s fresh before any data", s)
		}
	}
}

func TestTelemetryWindow(t *testing.T) {
	tr := NewTracker(5*time.Second, 0)
	tr.MarkFresh(Telemetry, t0)

	if !tr.IsFresh(Telemetry, t0.Add(4999*time.Millisecond)) {
		t.Fatalf("stale just inside the window")
	}
	if tr.IsFresh(Telemetry, t0.Add(5000*time.Millisecond)) {
		t.Fatalf("fresh at the window boundary")
	}
	if tr.IsFresh(Telemetry, t0.Add(time.Hour)) {
		t.Fatalf("fresh long after the window")
	}
}

func TestNetworkLinkIsBinary(t *testing.T) {
	tr := NewTracker(0, 0)

	tr.MarkFresh(NetworkLink, t0)
	if !tr.IsFresh(NetworkLink, t0.Add(24*time.Hour)) {
		t.Fatalf("link must not expire by time")
	}

	tr.MarkLinkDown()
	if tr.IsFresh(NetworkLink, t0) {
		t.Fatalf("link still fresh after going down")
	}
}

func TestTimeSyncLatches(t *testing.T) {
	tr := NewTracker(0, 0)

	tr.MarkFresh(TimeSync, t0)
	if !tr.IsFresh(TimeSync, t0.Add(1000*time.Hour)) {
		t.Fatalf("time sync must stay latched until restart")
	}
}

func TestWeatherWindow(t *testing.T) {
	tr := NewTracker(0, 15*time.Minute)
	tr.MarkFresh(Weather, t0)

	if !tr.IsFresh(Weather, t0.Add(14*time.Minute)) {
		t.Fatalf("stale inside the window")
	}
	if tr.IsFresh(Weather, t0.Add(16*time.Minute)) {
		t.Fatalf("fresh outside the window")
	}
}

func TestLastSeen(t *testing.T) {
	tr := NewTracker(0, 0)

	if !tr.LastSeen(Telemetry).IsZero() {
		t.Fatalf("expected zero timestamp before any data")
	}

	tr.MarkFresh(Telemetry, t0)
	if !tr.LastSeen(Telemetry).Equal(t0) {
		t.Fatalf("expected %v, got %v", t0, tr.LastSeen(Telemetry))
	}
}
