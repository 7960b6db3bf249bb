package estimate

import (
	"testing"
)

func TestParseMarker_JSON(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		minutes  int
		fixed    bool
		hasFixed bool
	}{
		{"fixed true", `{"duration":"45m","fixed":true}`, 45, true, true},
		{"fixed false", `{"duration":"20m","fixed":false}`, 20, false, true},
		{"no fixed flag", `{"duration":"20m"}`, 20, false, false},
		{"embedded in text", `call the bank {"duration":"15m","fixed":true} before noon`, 15, true, true},
		{"quantized", `{"duration":"37m","fixed":false}`, 35, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ParseMarker(tt.desc, 5)
			if !ok {
				t.Fatal("expected a marker")
			}
			if m.Minutes != tt.minutes || m.Fixed != tt.fixed || m.HasFixed != tt.hasFixed {
				t.Errorf("got %+v, want {%d %v %v}", m, tt.minutes, tt.fixed, tt.hasFixed)
			}
		})
	}
}

func TestParseMarker_Legacy(t *testing.T) {
	m, ok := ParseMarker("review slides 25m", 5)
	if !ok {
		t.Fatal("expected a marker")
	}
	if m.Minutes != 25 || m.HasFixed {
		t.Errorf("got %+v, want legacy {25, no fixed flag}", m)
	}

	// Last token wins.
	m, ok = ParseMarker("was 10m, now 40m", 5)
	if !ok || m.Minutes != 40 {
		t.Errorf("expected last legacy token 40, got %+v (ok=%v)", m, ok)
	}
}

func TestParseMarker_None(t *testing.T) {
	for _, desc := range []string{"", "plain text", "{}", `{"fixed":true}`} {
		if _, ok := ParseMarker(desc, 5); ok {
			t.Errorf("%q: expected no marker", desc)
		}
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	originals := []string{
		`{"duration":"45m","fixed":true}`,
		`{"duration":"20m","fixed":false}`,
		`{"duration":"5m","fixed":true}`,
	}

	for _, original := range originals {
		m, ok := ParseMarker(original, 5)
		if !ok {
			t.Fatalf("%q: expected a marker", original)
		}
		if got := ApplyMarker(original, m.Minutes, m.Fixed); got != original {
			t.Errorf("round trip changed marker: %q -> %q", original, got)
		}
	}
}

func TestApplyMarker(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{
			name: "empty description",
			desc: "",
			want: `{"duration":"20m","fixed":false}`,
		},
		{
			name: "appended to text",
			desc: "buy milk",
			want: `buy milk {"duration":"20m","fixed":false}`,
		},
		{
			name: "replaces existing marker",
			desc: `notes {"duration":"45m","fixed":true} more notes`,
			want: `notes {"duration":"20m","fixed":false} more notes`,
		},
		{
			name: "legacy token untouched",
			desc: "took 30m last time",
			want: `took 30m last time {"duration":"20m","fixed":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyMarker(tt.desc, 20, false); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{1, 1},
		{3, 5},
		{7, 5},
		{8, 10},
		{37, 35},
		{45, 45},
	}

	for _, tt := range tests {
		if got := Quantize(tt.in, 5); got != tt.want {
			t.Errorf("Quantize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
