package date

import (
	"encoding/json"
	"testing"
	"time"
)

func Test_Parse(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		err  bool
	}{
		{in: "2024-03-14", want: New(2024, time.March, 14)},
		{in: "2024/03/14", want: New(2024, time.March, 14)},
		{in: "14 Mar 2024", want: New(2024, time.March, 14)},
		{in: "2 Jan 2024", want: New(2024, time.January, 2)},
		{in: "not a date", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("Parse(%q) expected an error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func Test_Add_rollsOverMonths(t *testing.T) {
	d := New(2024, time.February, 29).Add(1)
	if got, want := d.String(), "2024-03-01"; got != want {
		t.Errorf("Add(1) = %s, want %s", got, want)
	}
	d = New(2024, time.March, 1).Add(-1)
	if got, want := d.String(), "2024-02-29"; got != want {
		t.Errorf("Add(-1) = %s, want %s", got, want)
	}
}

func Test_Compare(t *testing.T) {
	a, b := MustParse("2024-03-14"), MustParse("2024-03-15")
	if !a.Before(b) || b.Before(a) {
		t.Error("Before() is inconsistent")
	}
	if !b.After(a) {
		t.Error("After() is inconsistent")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare() is inconsistent")
	}
}

func Test_jsonRoundTrip(t *testing.T) {
	d := MustParse("2024-03-14")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if string(b) != `"2024-03-14"` {
		t.Errorf("Marshal() = %s, want %q", b, "2024-03-14")
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}
