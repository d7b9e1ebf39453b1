package render

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/telegauge/telegauge/internal/arbiter"
)

// Headless logs frames instead of drawing them, for running without a
// terminal (systemd unit, CI). Frames are summarized at most once per
// second plus on every mode change.
type Headless struct {
	lastMode arbiter.Mode
	lastLog  time.Time
	started  bool
}

// NewHeadless returns a logging renderer.
func NewHeadless() *Headless {
	return &Headless{}
}

// Render implements Renderer.
func (h *Headless) Render(f Frame) {
	changed := !h.started || f.Mode != h.lastMode
	if !changed && f.Now.Sub(h.lastLog) < time.Second {
		return
	}
	h.started = true
	h.lastMode = f.Mode
	h.lastLog = f.Now

	ev := log.Debug().
		Str("mode", f.Mode.String()).
		Str("time", f.TimeText)

	if f.HaveTelemetry {
		ev = ev.
			Int("cpu", f.Telemetry.CPU).
			Int("gpu", f.Telemetry.GPU).
			Int("fps", f.Telemetry.FPS)
	}
	if f.HotTemp || f.HighLoad {
		ev = ev.Bool("hot", f.HotTemp).Bool("high_load", f.HighLoad)
	}
	if f.Weather.Valid {
		ev = ev.Int("weather_c", f.Weather.TemperatureC)
	}

	ev.Msg("Frame")
}

// Close implements Renderer.
func (h *Headless) Close() {}
