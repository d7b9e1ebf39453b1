// Package render draws the active display mode. Renderers are read-only
// with respect to core state: they receive a complete Frame once per tick
// and must not reach back into the device.
package render

import (
	"time"

	"github.com/telegauge/telegauge/internal/arbiter"
	"github.com/telegauge/telegauge/internal/cache"
	"github.com/telegauge/telegauge/internal/telemetry"
)

// PageCount is the number of selectable telemetry pages.
const PageCount = 3

// Telemetry page indices, cycled by the button.
const (
	PageDashboard = iota
	PageThermals
	PageGaming
)

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Mode arbiter.Mode
	Page int

	Telemetry     telemetry.Record
	HaveTelemetry bool
	TelemetryAge  time.Duration
	LinkFresh     bool

	TimeText string
	DateText string
	Weather  cache.WeatherSnapshot

	// HotTemp marks any temperature above the alert threshold, HighLoad
	// any utilization above its threshold. How they are visualized is
	// the renderer's business.
	HotTemp  bool
	HighLoad bool

	Now time.Time
}

// Renderer is the display surface contract, called once per tick after
// arbitration.
type Renderer interface {
	Render(f Frame)
	Close()
}
