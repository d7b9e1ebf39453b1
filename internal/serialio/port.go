// Package serialio wraps the serial port behind a polling byte source the
// tick loop can drain without blocking. The port is opened lazily and
// reopened after failures, an unplugged cable only means silence upstream,
// never a dead loop.
package serialio

import (
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// readTimeout bounds a single Read so one tick can never stall on a quiet
// port.
const readTimeout = 5 * time.Millisecond

// reopenEvery paces open attempts while the port is unavailable.
const reopenEvery = 2 * time.Second

// Port is a self-healing serial byte source. Read never blocks longer than
// the poll timeout and returns n=0 while the port is missing.
type Port struct {
	path string
	baud int
	port serial.Port

	lastOpen time.Time
}

// NewPort returns an unopened port for the given device path. The path
// "auto" probes the first enumerated serial device on each open attempt.
func NewPort(path string, baud int) *Port {
	return &Port{path: path, baud: baud}
}

// Read drains available bytes into p. It opens the port on demand, swallows
// timeouts and demotes hard I/O errors to a close-and-retry.
func (p *Port) Read(b []byte) (int, error) {
	if p.port == nil && !p.open() {
		return 0, nil
	}

	n, err := p.port.Read(b)
	if err != nil {
		log.Warn().Err(err).Str("port", p.path).Msg("Serial read failed, reopening")
		p.Close()
		return 0, nil
	}

	return n, nil
}

// Close releases the underlying port if open.
func (p *Port) Close() {
	if p.port != nil {
		_ = p.port.Close()
		p.port = nil
	}
}

func (p *Port) open() bool {
	now := time.Now()
	if !p.lastOpen.IsZero() && now.Sub(p.lastOpen) < reopenEvery {
		return false
	}
	p.lastOpen = now

	path := p.path
	if path == "auto" {
		ports, err := serial.GetPortsList()
		if err != nil || len(ports) == 0 {
			log.Debug().Err(err).Msg("No serial ports found")
			return false
		}
		path = ports[0]
	}

	port, err := serial.Open(path, &serial.Mode{BaudRate: p.baud})
	if err != nil {
		log.Debug().Err(err).Str("port", path).Msg("Failed to open serial port")
		return false
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		log.Warn().Err(err).Str("port", path).Msg("Failed to set serial read timeout")
		_ = port.Close()
		return false
	}

	log.Info().Str("port", path).Int("baud", p.baud).Msg("Serial port opened")
	p.port = port
	return true
}
