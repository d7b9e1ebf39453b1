// Package netlink implements the device's fallible network collaborators:
// connectivity probing, clock synchronization and weather fetching. Every
// call carries its own timeout and failure simply leaves the corresponding
// source stale, the display loop never waits on a dead network for long.
package netlink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/telegauge/telegauge/internal/cache"
	"github.com/telegauge/telegauge/internal/config"
)

// Link is the collaborator surface consumed by the device loop.
type Link interface {
	// TryConnect probes connectivity and returns the link state. Probe
	// attempts are paced internally so a flapping link cannot spin the
	// tick loop; between attempts the last known state is returned.
	TryConnect(ctx context.Context) bool

	// SyncClock fetches the current wall time from the network time
	// endpoint.
	SyncClock(ctx context.Context) (time.Time, bool)

	// FetchWeather fetches the current weather reading.
	FetchWeather(ctx context.Context) (cache.WeatherSnapshot, bool)
}

// Manager is the HTTP implementation of Link.
type Manager struct {
	timeClient    *http.Client
	weatherClient *http.Client
	limiter       *rate.Limiter

	timeURL    string
	weatherURL string

	connected bool
}

// NewManager builds a manager from the network and weather configuration.
func NewManager(net config.Network, weather config.Weather) *Manager {
	every := net.RetryEvery
	if every <= 0 {
		every = 10 * time.Second
	}

	return &Manager{
		timeClient:    &http.Client{Timeout: net.ConnectTimeout},
		weatherClient: &http.Client{Timeout: weather.Timeout},
		limiter:       rate.NewLimiter(rate.Every(every), 1),
		timeURL:       net.TimeURL,
		weatherURL:    weatherQueryURL(weather),
	}
}

// TryConnect implements Link. The probe target is the time endpoint.
func (m *Manager) TryConnect(ctx context.Context) bool {
	if !m.limiter.Allow() {
		return m.connected
	}

	up := m.probe(ctx)
	if up != m.connected {
		log.Info().Bool("up", up).Msg("Network link state changed")
		m.connected = up
	}

	return m.connected
}

func (m *Manager) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.timeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.timeClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Connectivity probe failed")
		return false
	}
	_ = resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}

// SyncClock implements Link against a worldtimeapi-style JSON endpoint.
func (m *Manager) SyncClock(ctx context.Context) (time.Time, bool) {
	body, err := m.get(ctx, m.timeClient, m.timeURL)
	if err != nil {
		log.Debug().Err(err).Msg("Clock sync failed")
		return time.Time{}, false
	}

	t, ok := parseTimeBody(body)
	if !ok {
		log.Debug().Msg("Clock sync returned an unusable payload")
		return time.Time{}, false
	}

	log.Info().Time("synced", t).Msg("Clock synchronized from network")
	return t, true
}

// FetchWeather implements Link against an open-meteo style JSON endpoint.
func (m *Manager) FetchWeather(ctx context.Context) (cache.WeatherSnapshot, bool) {
	body, err := m.get(ctx, m.weatherClient, m.weatherURL)
	if err != nil {
		log.Debug().Err(err).Msg("Weather fetch failed")
		return cache.WeatherSnapshot{}, false
	}

	snap, ok := parseWeatherBody(body)
	if !ok {
		log.Debug().Msg("Weather fetch returned an unusable payload")
		return cache.WeatherSnapshot{}, false
	}

	log.Debug().
		Int("temp_c", snap.TemperatureC).
		Int("condition", snap.ConditionCode).
		Msg("Weather updated")
	return snap, true
}

func (m *Manager) get(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func weatherQueryURL(cfg config.Weather) string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", cfg.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", cfg.Longitude))
	q.Set("current_weather", "true")

	return cfg.URL + "?" + q.Encode()
}
