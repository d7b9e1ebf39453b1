// Package arbiter selects the single active display mode from the state of
// the device's data sources. It is evaluated once per tick and applies a
// cooldown when leaving the gaming screen so that transient gaps in the
// sender's FPS reading do not cause visible mode flapping.
package arbiter

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Mode is the active display mode. Exactly one is active at any time.
type Mode int

const (
	// Boot is the transient startup mode, exited once the initial
	// connectivity and time-sync attempts resolve, never re-entered.
	Boot Mode = iota
	// Provisioning is shown while the device has no network identity.
	// It supersedes every other mode.
	Provisioning
	// Offline is the explicit no-data-at-all state: telemetry is stale
	// and no independent clock source exists.
	Offline
	// Idle is the clock and ambient weather screen.
	Idle
	// Gaming is the FPS-focused screen, entered while the host reports
	// a non-zero frame rate.
	Gaming
)

// String returns the mode name for log fields and captions.
func (m Mode) String() string {
	switch m {
	case Boot:
		return "boot"
	case Provisioning:
		return "provisioning"
	case Offline:
		return "offline"
	case Idle:
		return "idle"
	case Gaming:
		return "gaming"
	default:
		return "unknown"
	}
}

// DefaultGamingCooldown is how long a zero FPS reading is tolerated before
// the gaming screen is abandoned.
const DefaultGamingCooldown = 3 * time.Second

// Capabilities describes which states exist in this deployment. Absent
// capabilities remove states and transitions rather than branching the
// evaluation logic.
type Capabilities struct {
	// Provisioning enables the provisioning screen for devices that
	// require a stored network identity.
	Provisioning bool
	// NetworkTime enables the network clock fallback. Without it the
	// offline state is reachable whenever telemetry disappears.
	NetworkTime bool
	// Weather enables the ambient weather display on the idle screen.
	Weather bool
}

// Inputs is the per-tick snapshot of source state the arbiter decides on.
type Inputs struct {
	// BootResolved is set once the initial connect and time-sync
	// attempts have finished, successfully or not.
	BootResolved bool
	// IdentitySet reports whether a network identity is stored.
	IdentitySet bool
	// TelemetryFresh is the windowed freshness of the serial host link.
	TelemetryFresh bool
	// ClockAvailable reports whether a clock source independent of the
	// telemetry link exists, in practice a latched network time sync.
	ClockAvailable bool
	// FPS is the frame rate of the latest cached telemetry record.
	FPS int
}

// Arbiter owns the display mode and its transition bookkeeping.
type Arbiter struct {
	caps        Capabilities
	cooldown    time.Duration
	mode        Mode
	lastFPSSeen time.Time
	changedAt   time.Time
}

// New returns an arbiter in Boot mode. A non-positive cooldown falls back
// to the default.
func New(caps Capabilities, cooldown time.Duration) *Arbiter {
	if cooldown <= 0 {
		cooldown = DefaultGamingCooldown
	}
	return &Arbiter{
		caps:     caps,
		cooldown: cooldown,
		mode:     Boot,
	}
}

// Mode returns the currently active display mode.
func (a *Arbiter) Mode() Mode {
	return a.mode
}

// ChangedAt returns the instant of the last mode transition.
func (a *Arbiter) ChangedAt() time.Time {
	return a.changedAt
}

// Evaluate picks the active mode for this tick. The rules are checked in
// fixed priority order: provisioning is absolute, loss of all data must be
// visually distinct from idle-but-healthy, gaming resists flicker through
// the cooldown, and idle never starves, so the screen is never left blank.
func (a *Arbiter) Evaluate(in Inputs, now time.Time) Mode {
	next := a.decide(in, now)

	if next != a.mode {
		log.Info().
			Str("from", a.mode.String()).
			Str("to", next.String()).
			Msg("Display mode changed")
		a.mode = next
		a.changedAt = now
	}

	return a.mode
}

func (a *Arbiter) decide(in Inputs, now time.Time) Mode {
	if a.mode == Boot && !in.BootResolved {
		return Boot
	}

	if a.caps.Provisioning && !in.IdentitySet {
		return Provisioning
	}

	if !in.TelemetryFresh && !in.ClockAvailable {
		return Offline
	}

	if in.TelemetryFresh && in.FPS > 0 {
		a.lastFPSSeen = now
		return Gaming
	}

	if a.mode == Gaming && now.Sub(a.lastFPSSeen) < a.cooldown {
		return Gaming
	}

	return Idle
}
