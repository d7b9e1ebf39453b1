package netlink

import (
	"encoding/json"
	"math"
	"time"

	"github.com/telegauge/telegauge/internal/cache"
)

// parseTimeBody extracts the wall time from a worldtimeapi-style payload.
// The unixtime field is preferred, the RFC3339 datetime string is the
// fallback for endpoints that omit it.
func parseTimeBody(body []byte) (time.Time, bool) {
	var payload struct {
		Unixtime int64  `json:"unixtime"`
		Datetime string `json:"datetime"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return time.Time{}, false
	}

	if payload.Unixtime > 0 {
		return time.Unix(payload.Unixtime, 0), true
	}

	if payload.Datetime != "" {
		if t, err := time.Parse(time.RFC3339, payload.Datetime); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseWeatherBody extracts the current reading from an open-meteo payload.
func parseWeatherBody(body []byte) (cache.WeatherSnapshot, bool) {
	var payload struct {
		Current *struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Current == nil {
		return cache.WeatherSnapshot{}, false
	}

	return cache.WeatherSnapshot{
		TemperatureC:  int(math.Round(payload.Current.Temperature)),
		ConditionCode: payload.Current.WeatherCode,
	}, true
}
