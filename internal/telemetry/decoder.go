package telemetry

// LineDecoder accumulates serial bytes into complete lines. A line is
// terminated by '\n' or '\r'; empty lines are swallowed so CRLF senders do
// not produce phantom records. When the buffer grows past the limit without
// a terminator the whole buffer is dropped silently: a stuck or binary
// garbage sender must not halt the render loop, and the next properly
// terminated line afterwards parses normally.
type LineDecoder struct {
	buf []byte
	max int
}

// NewLineDecoder returns a decoder that drops unterminated input beyond max bytes.
func NewLineDecoder(max int) *LineDecoder {
	if max <= 0 {
		max = 512
	}
	return &LineDecoder{
		buf: make([]byte, 0, max),
		max: max,
	}
}

// Feed consumes one byte from the serial stream. When the byte completes a
// non-empty line, Feed returns it with ok=true. The returned slice aliases
// the internal buffer and is only valid until the next Feed call.
func (d *LineDecoder) Feed(b byte) (line []byte, ok bool) {
	if b == '\n' || b == '\r' {
		if len(d.buf) == 0 {
			return nil, false
		}
		line = d.buf
		d.buf = d.buf[:0]
		return line, true
	}

	if len(d.buf) >= d.max {
		// Overflow protection, silent drop
		d.buf = d.buf[:0]
		return nil, false
	}

	d.buf = append(d.buf, b)
	return nil, false
}

// Pending reports how many bytes are buffered without a terminator.
func (d *LineDecoder) Pending() int {
	return len(d.buf)
}
