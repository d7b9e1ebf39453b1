package telemetry

import (
	"strings"
	"testing"
)

func feedString(t *testing.T, d *LineDecoder, s string) []string {
	t.Helper()

	var lines []string
	for i := 0; i < len(s); i++ {
		if line, ok := d.Feed(s[i]); ok {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func TestDecoderEmitsOnTerminator(t *testing.T) {
	d := NewLineDecoder(512)

	lines := feedString(t, d, "{\"cpu\":5}\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0] != `{"cpu":5}` {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if d.Pending() != 0 {
		t.Fatalf("expected empty buffer, got %d pending", d.Pending())
	}
}

func TestDecoderSwallowsEmptyLines(t *testing.T) {
	d := NewLineDecoder(512)

	// CRLF sender: the LF after CR must not produce a phantom line
	lines := feedString(t, d, "{\"cpu\":5}\r\n{\"cpu\":6}\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestDecoderOverflowDropsBuffer(t *testing.T) {
	d := NewLineDecoder(512)

	garbage := strings.Repeat("x", 600)
	if lines := feedString(t, d, garbage); len(lines) != 0 {
		t.Fatalf("expected no lines from unterminated garbage, got %d", len(lines))
	}
	if d.Pending() >= 512 {
		t.Fatalf("buffer was not dropped, %d pending", d.Pending())
	}

	// The tail of the garbage is still in the buffer, the terminator
	// flushes it as one bogus line which the parser will discard,
	// and the next proper line must parse normally.
	lines := feedString(t, d, "\n{\"cpu\":7}\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if _, ok := Parse([]byte(lines[0])); ok {
		t.Fatalf("garbage tail unexpectedly parsed")
	}
	rec, ok := Parse([]byte(lines[1]))
	if !ok {
		t.Fatalf("line after overflow did not parse")
	}
	if rec.CPU != 7 {
		t.Fatalf("expected cpu=7, got %d", rec.CPU)
	}
}

func TestDecoderBoundIsExact(t *testing.T) {
	d := NewLineDecoder(8)

	for i := 0; i < 8; i++ {
		if _, ok := d.Feed('a'); ok {
			t.Fatalf("unexpected line at byte %d", i)
		}
	}
	if d.Pending() != 8 {
		t.Fatalf("expected 8 pending, got %d", d.Pending())
	}

	// Ninth byte overflows and clears everything accumulated so far
	if _, ok := d.Feed('a'); ok {
		t.Fatalf("unexpected line on overflow")
	}
	if d.Pending() != 0 {
		t.Fatalf("expected cleared buffer, got %d pending", d.Pending())
	}
}
