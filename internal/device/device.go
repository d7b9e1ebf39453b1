// Package device owns the aggregate state of the display unit and drives
// the cooperative tick loop: drain the serial link, decode and parse lines,
// update the freshness tracker and caches, consume the button flag,
// arbitrate the display mode and render one frame. Everything runs to
// completion inside a single tick on one goroutine; the button flag is the
// only value touched from another execution context.
package device

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/telegauge/telegauge/internal/arbiter"
	"github.com/telegauge/telegauge/internal/cache"
	"github.com/telegauge/telegauge/internal/config"
	"github.com/telegauge/telegauge/internal/freshness"
	"github.com/telegauge/telegauge/internal/netlink"
	"github.com/telegauge/telegauge/internal/render"
	"github.com/telegauge/telegauge/internal/storage"
	"github.com/telegauge/telegauge/internal/telemetry"
)

// identityRecheck paces settings re-reads while the setup screen is shown.
const identityRecheck = 5 * time.Second

// drainReads bounds how many source reads a single tick performs.
const drainReads = 4

// Device is the explicitly owned state aggregate. No ambient globals: the
// arbiter, tracker and caches live here and are touched only from the tick
// goroutine.
type Device struct {
	caps arbiter.Capabilities

	src      io.Reader
	link     netlink.Link
	store    *storage.Repository
	renderer render.Renderer

	decoder *telemetry.LineDecoder
	tracker *freshness.Tracker
	arbiter *arbiter.Arbiter
	clock   *cache.Clock
	weather *cache.Weather

	// latest-value-wins telemetry cache
	telemetry  telemetry.Record
	haveRecord bool
	lastLine   uint64 // xxhash of the last accepted payload

	identity        string
	identityChecked time.Time
	bootResolved    bool

	// button is set from the input goroutine, consumed at the top of a
	// tick. It carries no other state.
	button      atomic.Bool
	buttonTaken time.Time
	page        int

	tickEvery      time.Duration
	debounce       time.Duration
	connectTimeout time.Duration
	weatherTimeout time.Duration

	readBuf []byte
}

// New assembles a device from its collaborators. link and store may be nil
// for deployments without network or persistence; renderer must not be nil.
func New(cfg *config.Config, src io.Reader, link netlink.Link, store *storage.Repository, renderer render.Renderer) *Device {
	caps := arbiter.Capabilities{
		Provisioning: cfg.Network.Provisioning,
		NetworkTime:  cfg.Network.TimeSync,
		Weather:      cfg.Weather.Enable,
	}
	if link == nil {
		caps.NetworkTime = false
		caps.Weather = false
	}

	d := &Device{
		caps:     caps,
		src:      src,
		link:     link,
		store:    store,
		renderer: renderer,

		decoder: telemetry.NewLineDecoder(cfg.Serial.MaxLine),
		tracker: freshness.NewTracker(cfg.Serial.Timeout, cfg.Weather.Interval),
		arbiter: arbiter.New(caps, cfg.Display.GamingCooldown),
		clock:   cache.NewClock(cfg.Network.SyncInterval, cfg.Serial.Timeout),
		weather: cache.NewWeather(cfg.Weather.Interval),

		tickEvery:      cfg.Display.Tick,
		debounce:       cfg.Display.Debounce,
		connectTimeout: cfg.Network.ConnectTimeout,
		weatherTimeout: cfg.Weather.Timeout,

		readBuf: make([]byte, 1024),
	}
	if d.tickEvery <= 0 {
		d.tickEvery = 50 * time.Millisecond
	}
	if d.debounce <= 0 {
		d.debounce = 250 * time.Millisecond
	}

	if store != nil {
		identity, err := store.Identity()
		if err != nil {
			log.Error().Err(err).Msg("Failed to read stored identity")
		}
		d.identity = identity

		snap, err := store.LoadWeather()
		if err != nil {
			log.Error().Err(err).Msg("Failed to load persisted weather")
		}
		d.weather.Seed(snap)
	}

	return d
}

// PressButton registers a button press. Safe to call from any goroutine;
// it only sets a flag, all real work happens at the top of the next tick.
func (d *Device) PressButton() {
	d.button.Store(true)
}

// Mode returns the currently active display mode.
func (d *Device) Mode() arbiter.Mode {
	return d.arbiter.Mode()
}

// Run drives the tick loop until the context is canceled.
func (d *Device) Run(ctx context.Context) {
	// Splash before the boot attempts, they can take seconds
	d.render(time.Now())
	d.resolveBoot(ctx)

	ticker := time.NewTicker(d.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.tick(ctx, now)
		}
	}
}

// resolveBoot performs the initial connectivity and time-sync attempts.
// Boot is resolved once they finish, successfully or not, and the arbiter
// never returns to it.
func (d *Device) resolveBoot(ctx context.Context) {
	defer func() { d.bootResolved = true }()

	if d.link == nil {
		return
	}

	attempt, cancel := context.WithTimeout(ctx, d.connectTimeout)
	up := d.link.TryConnect(attempt)
	cancel()

	if up {
		d.tracker.MarkFresh(freshness.NetworkLink, time.Now())
	} else {
		d.tracker.MarkLinkDown()
		return
	}

	if d.caps.NetworkTime {
		d.syncClock(ctx, time.Now())
	}
}

// tick runs one full pass of the cooperative loop.
func (d *Device) tick(ctx context.Context, now time.Time) {
	d.consumeButton(now)
	d.drainSource(now)
	d.maintainNetwork(ctx, now)
	d.recheckIdentity(now)

	prev := d.arbiter.Mode()
	mode := d.arbiter.Evaluate(arbiter.Inputs{
		BootResolved:   d.bootResolved,
		IdentitySet:    d.identity != "",
		TelemetryFresh: d.tracker.IsFresh(freshness.Telemetry, now),
		// The serial time string dies with the telemetry link, so the
		// network-synced clock is the only independent source.
		ClockAvailable: d.tracker.IsFresh(freshness.TimeSync, now),
		FPS:            d.telemetry.FPS,
	}, now)

	// Jump to the gaming page when a game starts, the button still cycles.
	if mode == arbiter.Gaming && prev != arbiter.Gaming {
		d.page = render.PageGaming
	}

	d.render(now)
}

// consumeButton applies a pending button press. Debouncing is a pure
// function of the flag, the last accepted press and the window.
func (d *Device) consumeButton(now time.Time) {
	if !d.button.Swap(false) {
		return
	}
	if !d.buttonTaken.IsZero() && now.Sub(d.buttonTaken) < d.debounce {
		return
	}

	d.buttonTaken = now
	d.page = (d.page + 1) % render.PageCount
	log.Debug().Int("page", d.page).Msg("Page switched")
}

// drainSource pulls whatever bytes are available without blocking the tick.
func (d *Device) drainSource(now time.Time) {
	for i := 0; i < drainReads; i++ {
		n, err := d.src.Read(d.readBuf)
		if n == 0 {
			if err != nil && err != io.EOF {
				log.Debug().Err(err).Msg("Source read failed")
			}
			return
		}

		for _, b := range d.readBuf[:n] {
			if line, ok := d.decoder.Feed(b); ok {
				d.ingestLine(line, now)
			}
		}
	}
}

// ingestLine decodes one complete protocol line into the telemetry cache.
// The sender repeats identical payloads when nothing changed, so an exact
// repeat of the previous line skips the JSON decode and only refreshes the
// source.
func (d *Device) ingestLine(line []byte, now time.Time) {
	sum := xxhash.Sum64(line)
	if d.haveRecord && sum == d.lastLine {
		d.tracker.MarkFresh(freshness.Telemetry, now)
		return
	}

	rec, ok := telemetry.Parse(line)
	if !ok {
		// Best-effort protocol: drop and move on
		log.Trace().Int("len", len(line)).Msg("Discarded malformed line")
		return
	}

	rec.Apply(&d.telemetry)
	d.haveRecord = true
	d.lastLine = sum
	d.tracker.MarkFresh(freshness.Telemetry, now)
	d.clock.SetSerial(d.telemetry.Time, d.telemetry.Date, now)

	log.Trace().
		Int("cpu", d.telemetry.CPU).
		Int("gpu", d.telemetry.GPU).
		Int("fps", d.telemetry.FPS).
		Msg("Telemetry record cached")
}

// maintainNetwork keeps the link, clock and weather on their own cadences.
// The collaborators carry their own timeouts, a dead network costs at most
// one bounded call per tick.
func (d *Device) maintainNetwork(ctx context.Context, now time.Time) {
	if d.link == nil || !d.bootResolved {
		return
	}

	attempt, cancel := context.WithTimeout(ctx, d.connectTimeout)
	up := d.link.TryConnect(attempt)
	cancel()

	if up {
		d.tracker.MarkFresh(freshness.NetworkLink, now)
	} else {
		d.tracker.MarkLinkDown()
		return
	}

	if d.caps.NetworkTime && d.clock.NeedsNetworkRefresh(now) {
		d.syncClock(ctx, now)
	}

	if d.caps.Weather && d.weather.NeedsRefresh(now) {
		d.refreshWeather(ctx, now)
	}
}

func (d *Device) syncClock(ctx context.Context, now time.Time) {
	d.clock.MarkRefreshAttempt(now)

	attempt, cancel := context.WithTimeout(ctx, d.connectTimeout)
	defer cancel()

	t, ok := d.link.SyncClock(attempt)
	if !ok {
		return
	}

	d.clock.SetNetwork(t, now)
	d.tracker.MarkFresh(freshness.TimeSync, now)
}

func (d *Device) refreshWeather(ctx context.Context, now time.Time) {
	attempt, cancel := context.WithTimeout(ctx, d.weatherTimeout)
	defer cancel()

	snap, ok := d.link.FetchWeather(attempt)
	d.weather.Update(snap, ok, now)
	if !ok {
		return
	}

	d.tracker.MarkFresh(freshness.Weather, now)

	if d.store != nil {
		if err := d.store.SaveWeather(d.weather.Snapshot()); err != nil {
			log.Error().Err(err).Msg("Failed to persist weather snapshot")
		}
	}
}

// recheckIdentity re-reads the settings store while the setup screen is up,
// so completing provisioning takes effect without a restart.
func (d *Device) recheckIdentity(now time.Time) {
	if !d.caps.Provisioning || d.identity != "" || d.store == nil {
		return
	}
	if now.Sub(d.identityChecked) < identityRecheck {
		return
	}
	d.identityChecked = now

	identity, err := d.store.Identity()
	if err != nil {
		log.Error().Err(err).Msg("Failed to re-read identity")
		return
	}
	if identity != "" {
		log.Info().Str("identity", identity).Msg("Device provisioned")
		d.identity = identity
	}
}

// render builds the frame for the active mode and hands it to the renderer.
// Renderers are read-only with respect to device state.
func (d *Device) render(now time.Time) {
	telemetryAge := time.Duration(0)
	if last := d.tracker.LastSeen(freshness.Telemetry); !last.IsZero() {
		telemetryAge = now.Sub(last)
	}

	d.renderer.Render(render.Frame{
		Mode: d.arbiter.Mode(),
		Page: d.page,

		Telemetry:     d.telemetry,
		HaveTelemetry: d.haveRecord,
		TelemetryAge:  telemetryAge,
		LinkFresh:     d.tracker.IsFresh(freshness.Telemetry, now),

		TimeText: d.clock.TimeText(now),
		DateText: d.clock.DateText(now),
		Weather:  d.weather.Snapshot(),

		HotTemp:  d.telemetry.MaxTemp() > 80,
		HighLoad: d.telemetry.CPU > 90 || d.telemetry.GPU > 90,

		Now: now,
	})
}
