// Package fake generates synthetic telemetry lines for development and
// demos, so the display can be exercised without a host agent on the wire.
package fake

import (
	"fmt"
	"math/rand"
	"time"
)

// sendInterval matches the cadence of the real host agent.
const sendInterval = time.Second

// Generator emits protocol lines that drift like a real host under load.
// It implements io.Reader and hands out at most one line per second, the
// rest of the reads return empty, just like a quiet serial port.
type Generator struct {
	lastEmit time.Time
	pending  []byte

	cpu, gpu, ram int
	cpuT, gpuT    int
	fps           int
	gamingUntil   time.Time
	idleUntil     time.Time
}

// NewGenerator returns a generator idling at desktop-like load.
func NewGenerator() *Generator {
	return &Generator{
		cpu: 12, gpu: 5, ram: 38,
		cpuT: 42, gpuT: 38,
		idleUntil: time.Now().Add(10 * time.Second),
	}
}

// Read implements io.Reader over the synthetic line stream.
func (g *Generator) Read(p []byte) (int, error) {
	if len(g.pending) == 0 {
		now := time.Now()
		if now.Sub(g.lastEmit) < sendInterval {
			return 0, nil
		}
		g.lastEmit = now
		g.pending = g.nextLine(now)
	}

	n := copy(p, g.pending)
	g.pending = g.pending[n:]
	return n, nil
}

func (g *Generator) nextLine(now time.Time) []byte {
	// Alternate between ~10s desktop phases and ~20s gaming phases
	switch {
	case !g.gamingUntil.IsZero() && now.After(g.gamingUntil):
		g.gamingUntil = time.Time{}
		g.idleUntil = now.Add(time.Duration(8+rand.Intn(8)) * time.Second)
		g.fps = 0
	case !g.idleUntil.IsZero() && now.After(g.idleUntil):
		g.idleUntil = time.Time{}
		g.gamingUntil = now.Add(time.Duration(15+rand.Intn(15)) * time.Second)
		g.fps = 60 + rand.Intn(80)
	}

	gaming := g.fps > 0

	g.cpu = drift(g.cpu, pick(gaming, 55, 12), 5)
	g.gpu = drift(g.gpu, pick(gaming, 92, 6), 7)
	g.ram = drift(g.ram, pick(gaming, 61, 40), 2)
	g.cpuT = drift(g.cpuT, pick(gaming, 71, 44), 2)
	g.gpuT = drift(g.gpuT, pick(gaming, 83, 39), 2)
	if gaming {
		g.fps = drift(g.fps, 90, 6)
	}

	line := fmt.Sprintf(
		`{"cpu":%d,"gpu":%d,"ram":%d,"cpu_temp":%d,"gpu_temp":%d,"fps":%d,"cpu_clk":%d,"gpu_clk":%d,"time":%q,"date":%q}`+"\n",
		g.cpu, g.gpu, g.ram, g.cpuT, g.gpuT, g.fps,
		3800+rand.Intn(900), 2200+rand.Intn(400),
		now.Format("15:04"), now.Format("02 Jan"),
	)
	return []byte(line)
}

// drift nudges v towards target with a little jitter, clamped at zero.
func drift(v, target, step int) int {
	switch {
	case v < target:
		v += rand.Intn(step + 1)
	case v > target:
		v -= rand.Intn(step + 1)
	}
	if v < 0 {
		return 0
	}
	return v
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
