package telemetry

import (
	"strings"
	"testing"
)

func TestParseClampsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "above range saturates",
			line: `{"cpu":150,"fps":0}`,
			want: Record{CPU: 100},
		},
		{
			name: "negative saturates to zero",
			line: `{"gpu":-20,"cpu_temp":-5}`,
			want: Record{},
		},
		{
			name: "temps cap at 120",
			line: `{"cpu_temp":300,"gpu_temp":121}`,
			want: Record{CPUTemp: 120, GPUTemp: 120},
		},
		{
			name: "fps and clocks cap at 9999",
			line: `{"fps":100000,"cpu_clk":12000,"gpu_clk":9999}`,
			want: Record{FPS: 9999, CPUClock: 9999, GPUClock: 9999},
		},
		{
			name: "in range passes through",
			line: `{"cpu":42,"gpu":17,"ram":63,"fps":144}`,
			want: Record{CPU: 42, GPU: 17, RAM: 63, FPS: 144},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Parse([]byte(tt.line))
			if !ok {
				t.Fatalf("expected record for %q", tt.line)
			}
			if rec != tt.want {
				t.Fatalf("got %+v, want %+v", rec, tt.want)
			}
		})
	}
}

func TestParseMissingKeysDefaultToZero(t *testing.T) {
	rec, ok := Parse([]byte(`{}`))
	if !ok {
		t.Fatalf("empty object must parse")
	}
	if rec != (Record{}) {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	lines := []string{
		``,
		`{`,
		`not json at all`,
		`{"cpu":}`,
		`{"cpu":"fifty"}`,
		`[1,2,3`,
	}

	for _, line := range lines {
		if _, ok := Parse([]byte(line)); ok {
			t.Fatalf("expected %q to be rejected", line)
		}
	}
}

func TestParseTruncatesStrings(t *testing.T) {
	rec, ok := Parse([]byte(`{"time":"14:32:59","date":"07 June 2026 AD"}`))
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.Time != "14:32" {
		t.Fatalf("expected time truncated to %q, got %q", "14:32", rec.Time)
	}
	if len(rec.Date) != DateLen {
		t.Fatalf("expected date truncated to %d chars, got %q", DateLen, rec.Date)
	}
}

func TestApplyKeepsCachedStrings(t *testing.T) {
	cached := Record{CPU: 10, Time: "14:32", Date: "07 Jun"}

	// A later protocol revision may drop time/date; a blank must not
	// clobber the cached clock.
	update, ok := Parse([]byte(`{"cpu":55}`))
	if !ok {
		t.Fatalf("expected record")
	}
	update.Apply(&cached)

	if cached.CPU != 55 {
		t.Fatalf("expected cpu=55, got %d", cached.CPU)
	}
	if cached.Time != "14:32" || cached.Date != "07 Jun" {
		t.Fatalf("cached strings clobbered: %+v", cached)
	}

	// A non-empty time replaces the cached one
	update, _ = Parse([]byte(`{"time":"15:00"}`))
	update.Apply(&cached)
	if cached.Time != "15:00" {
		t.Fatalf("expected time updated, got %q", cached.Time)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	line := []byte(`{"cpu":42,"fps":60,"time":"14:32"}`)

	first, ok := Parse(line)
	if !ok {
		t.Fatalf("expected record")
	}
	second, ok := Parse(line)
	if !ok {
		t.Fatalf("expected record")
	}
	if first != second {
		t.Fatalf("same line produced different records: %+v vs %+v", first, second)
	}

	var cached Record
	first.Apply(&cached)
	first.Apply(&cached)
	if cached != first {
		t.Fatalf("repeated apply drifted: %+v vs %+v", cached, first)
	}
}

func TestParseOversizedStringsDoNotGrowRecord(t *testing.T) {
	long := strings.Repeat("9", 100)
	rec, ok := Parse([]byte(`{"time":"` + long + `"}`))
	if !ok {
		t.Fatalf("expected record")
	}
	if len(rec.Time) != TimeLen {
		t.Fatalf("expected %d chars, got %d", TimeLen, len(rec.Time))
	}
}
