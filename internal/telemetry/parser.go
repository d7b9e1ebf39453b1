package telemetry

import (
	jsoniter "github.com/json-iterator/go"
)

// json is tuned for the per-second hot path, the payload is one small flat object.
var json = jsoniter.ConfigFastest

// wireRecord mirrors the JSON keys of the protocol. All keys are optional
// and default to zero / empty string.
type wireRecord struct {
	CPU      int    `json:"cpu"`
	GPU      int    `json:"gpu"`
	RAM      int    `json:"ram"`
	CPUTemp  int    `json:"cpu_temp"`
	GPUTemp  int    `json:"gpu_temp"`
	FPS      int    `json:"fps"`
	CPUClock int    `json:"cpu_clk"`
	GPUClock int    `json:"gpu_clk"`
	Time     string `json:"time"`
	Date     string `json:"date"`
}

// Parse decodes one protocol line into a Record. Malformed input (bad
// syntax, wrong types) yields ok=false and the line is discarded whole, no
// partial application. On success every numeric field is clamped to its
// declared range and strings are truncated to capacity.
func Parse(line []byte) (Record, bool) {
	var w wireRecord
	if err := json.Unmarshal(line, &w); err != nil {
		return Record{}, false
	}

	return Record{
		CPU:      clamp(w.CPU, MaxPercent),
		GPU:      clamp(w.GPU, MaxPercent),
		RAM:      clamp(w.RAM, MaxPercent),
		CPUTemp:  clamp(w.CPUTemp, MaxTempC),
		GPUTemp:  clamp(w.GPUTemp, MaxTempC),
		FPS:      clamp(w.FPS, MaxFPS),
		CPUClock: clamp(w.CPUClock, MaxClockMHz),
		GPUClock: clamp(w.GPUClock, MaxClockMHz),
		Time:     truncate(w.Time, TimeLen),
		Date:     truncate(w.Date, DateLen),
	}, true
}
