// Package telemetry implements the serial wire protocol: line framing,
// record decoding and field validation.
//
// The host agent emits one JSON object per line, newline-terminated, once
// per second. The protocol is best-effort and receiver-only: there is no
// acknowledgment and no retransmission, the latest valid record wins.
package telemetry

// Field capacity limits. Values outside their range are saturated at
// ingestion, never rejected as a whole record.
const (
	MaxPercent  = 100
	MaxTempC    = 120
	MaxFPS      = 9999
	MaxClockMHz = 9999

	// Meaningful string capacities, longer input is truncated.
	TimeLen = 5  // "14:32"
	DateLen = 11 // "07 Jun"
)

// Record is the latest known snapshot of host metrics. It is owned by the
// device state, never destroyed, only overwritten field by field.
type Record struct {
	CPU      int // load, percent
	GPU      int // load, percent
	RAM      int // usage, percent
	CPUTemp  int // celsius
	GPUTemp  int // celsius
	FPS      int
	CPUClock int // MHz
	GPUClock int // MHz

	// Time and Date keep their previous value when a record arrives
	// without them, so a valid cached clock is never clobbered by a
	// sender that stopped including it.
	Time string
	Date string
}

// Apply overwrites the numeric fields of dst with the values of r and
// updates the string fields only when r carries non-empty ones.
func (r Record) Apply(dst *Record) {
	time, date := dst.Time, dst.Date
	*dst = r

	if r.Time == "" {
		dst.Time = time
	}
	if r.Date == "" {
		dst.Date = date
	}
}

// MaxTemp returns the hotter of the CPU and GPU temperature readings.
func (r Record) MaxTemp() int {
	if r.GPUTemp > r.CPUTemp {
		return r.GPUTemp
	}
	return r.CPUTemp
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
