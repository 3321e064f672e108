package etfflow

import "testing"

func Test_Coerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{name: "nil", in: nil, want: 0},
		{name: "float", in: 120.5, want: 120.5},
		{name: "int", in: 42, want: 42},
		{name: "plain string", in: "120.5", want: 120.5},
		{name: "negative string", in: "-30.2", want: -30.2},
		{name: "thousands separators", in: "1,234.5", want: 1234.5},
		{name: "empty", in: "", want: 0},
		{name: "dash", in: "-", want: 0},
		{name: "en dash", in: "–", want: 0},
		{name: "em dash", in: "—", want: 0},
		{name: "accounting negative", in: "(12.5)", want: -12.5},
		{name: "accounting garbage", in: "(n/a)", want: 0},
		{name: "billions suffix", in: "1.2b", want: 1200},
		{name: "billions suffix upper", in: "1.2B", want: 1200},
		{name: "millions suffix", in: "3.5m", want: 3.5},
		{name: "millions suffix upper", in: "3.5M", want: 3.5},
		{name: "non breaking space", in: "\u00a012.5\u00a0", want: 12.5},
		{name: "internal whitespace", in: "  12.5  ", want: 12.5},
		{name: "garbage", in: "n/a", want: 0},
		{name: "unexpected type", in: []any{"12.5"}, want: 0},
		{name: "double suffix is garbage", in: "1.2bb", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.in); got != tt.want {
				t.Errorf("Coerce(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func Test_Coerce_neverPanics(t *testing.T) {
	// every failure mode must degrade to zero, a malformed field must not
	// abort a whole payload.
	for _, in := range []any{"(", ")", "()", "(-)", "--", "1.2.3", "b", map[string]any{}} {
		if got := Coerce(in); got != 0 {
			t.Errorf("Coerce(%#v) = %v, want 0", in, got)
		}
	}
}
