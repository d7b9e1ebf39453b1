package netlink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/telegauge/telegauge/internal/config"
)

func TestParseTimeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Time
		ok   bool
	}{
		{
			name: "unixtime preferred",
			body: `{"unixtime":1780000000,"datetime":"2026-06-07T14:32:00+00:00"}`,
			want: time.Unix(1780000000, 0),
			ok:   true,
		},
		{
			name: "datetime fallback",
			body: `{"datetime":"2026-06-07T14:32:00+02:00"}`,
			want: time.Date(2026, 6, 7, 14, 32, 0, 0, time.FixedZone("", 2*3600)),
			ok:   true,
		},
		{name: "empty object", body: `{}`},
		{name: "bad datetime", body: `{"datetime":"yesterday"}`},
		{name: "not json", body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTimeBody([]byte(tt.body))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("time = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseWeatherBody(t *testing.T) {
	body := `{"current_weather":{"temperature":18.6,"weathercode":61}}`
	snap, ok := parseWeatherBody([]byte(body))
	if !ok {
		t.Fatalf("expected ok")
	}
	if snap.TemperatureC != 19 {
		t.Fatalf("expected rounded 19, got %d", snap.TemperatureC)
	}
	if snap.ConditionCode != 61 {
		t.Fatalf("expected code 61, got %d", snap.ConditionCode)
	}

	if _, ok := parseWeatherBody([]byte(`{"latitude":52.52}`)); ok {
		t.Fatalf("payload without current_weather accepted")
	}
	if _, ok := parseWeatherBody([]byte(`not json`)); ok {
		t.Fatalf("garbage accepted")
	}
}

func TestManagerAgainstStubEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/time"):
			_, _ = w.Write([]byte(`{"unixtime":1780000000}`))
		case strings.HasPrefix(r.URL.Path, "/weather"):
			_, _ = w.Write([]byte(`{"current_weather":{"temperature":21.2,"weathercode":2}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	net := config.Network{
		TimeURL:        srv.URL + "/time",
		ConnectTimeout: time.Second,
		RetryEvery:     time.Hour, // a single probe per test run
	}
	weather := config.Weather{
		URL:       srv.URL + "/weather",
		Latitude:  52.52,
		Longitude: 13.40,
		Timeout:   time.Second,
	}

	m := NewManager(net, weather)
	ctx := context.Background()

	if !m.TryConnect(ctx) {
		t.Fatalf("probe against a live endpoint failed")
	}
	// The limiter holds the last known state between attempts
	if !m.TryConnect(ctx) {
		t.Fatalf("cached link state lost between probes")
	}

	got, ok := m.SyncClock(ctx)
	if !ok {
		t.Fatalf("clock sync failed")
	}
	if !got.Equal(time.Unix(1780000000, 0)) {
		t.Fatalf("unexpected synced time %v", got)
	}

	snap, ok := m.FetchWeather(ctx)
	if !ok {
		t.Fatalf("weather fetch failed")
	}
	if snap.TemperatureC != 21 || snap.ConditionCode != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestManagerFailuresReportStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	net := config.Network{
		TimeURL:        srv.URL + "/time",
		ConnectTimeout: time.Second,
		RetryEvery:     time.Hour,
	}
	weather := config.Weather{URL: srv.URL + "/weather", Timeout: time.Second}

	m := NewManager(net, weather)
	ctx := context.Background()

	if _, ok := m.SyncClock(ctx); ok {
		t.Fatalf("clock sync succeeded against a 502")
	}
	if _, ok := m.FetchWeather(ctx); ok {
		t.Fatalf("weather fetch succeeded against a 502")
	}
}

func TestWeatherQueryURL(t *testing.T) {
	got := weatherQueryURL(config.Weather{
		URL:       "https://api.open-meteo.com/v1/forecast",
		Latitude:  52.52,
		Longitude: 13.405,
	})

	want := "https://api.open-meteo.com/v1/forecast?current_weather=true&latitude=52.5200&longitude=13.4050"
	if got != want {
		t.Fatalf("query url:\n got %s\nwant %s", got, want)
	}
}
