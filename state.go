package etfflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/etfflow/date"
)

// State is the small blob persisted across runs: the last notified day per
// asset, and the rolling monthly upstream-call usage. A single scheduled run
// owns the file at a time; there is no locking.
type State struct {
	// LastNotified maps an asset kind to the ISO date last notified for it.
	LastNotified map[string]string `json:"last_notified"`
	// CallsUsed maps a "YYYY-MM" UTC bucket to the number of upstream calls
	// issued that month. Old buckets are retained, never purged.
	CallsUsed map[string]int `json:"calls_used"`
}

// NewState returns an empty state with non-nil maps.
func NewState() *State {
	return &State{
		LastNotified: make(map[string]string),
		CallsUsed:    make(map[string]int),
	}
}

// LoadState reads the state blob from path. A missing file is a fresh start,
// not an error; a corrupt file is an error since silently resetting it would
// both re-notify and forget quota usage.
func LoadState(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, err
	}
	st := NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("corrupt state file %q: %w", path, err)
	}
	if st.LastNotified == nil {
		st.LastNotified = make(map[string]string)
	}
	if st.CallsUsed == nil {
		st.CallsUsed = make(map[string]int)
	}
	return st, nil
}

// Save writes the state blob to path.
func (s *State) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ShouldNotify reports whether the given day has not yet been notified for
// the asset. Re-running on an already-notified day is a silent no-op.
func (s *State) ShouldNotify(a Asset, d date.Date) bool {
	return s.LastNotified[string(a)] != d.String()
}

// RecordNotified remembers the day as notified for the asset.
func (s *State) RecordNotified(a Asset, d date.Date) {
	s.LastNotified[string(a)] = d.String()
}

// MonthKey returns the UTC year-month quota bucket for t, e.g. "2024-03".
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// ReserveQuota reports whether needed more calls fit under the monthly
// ceiling for the given bucket. It does not consume anything: usage is
// recorded per actual call with RecordUsage.
func (s *State) ReserveQuota(month string, needed, ceiling int) bool {
	return s.CallsUsed[month]+needed <= ceiling
}

// RecordUsage adds calls to the month's bucket. Usage counts whether or not
// the call succeeded, since a failed call still consumed upstream capacity.
func (s *State) RecordUsage(month string, calls int) {
	s.CallsUsed[month] += calls
}
