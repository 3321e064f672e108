package etfflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/etfflow/date"
)

func Test_State_dedup(t *testing.T) {
	st := NewState()
	d := date.MustParse("2024-03-14")

	if !st.ShouldNotify(BTC, d) {
		t.Error("fresh state should notify")
	}
	st.RecordNotified(BTC, d)
	if st.ShouldNotify(BTC, d) {
		t.Error("same day again should not notify")
	}
	if !st.ShouldNotify(ETH, d) {
		t.Error("dedup is per asset")
	}
	if !st.ShouldNotify(BTC, d.Add(1)) {
		t.Error("next day should notify again")
	}
}

func Test_State_quota(t *testing.T) {
	st := NewState()
	const month = "2024-03"

	if !st.ReserveQuota(month, 4, 1000) {
		t.Error("empty bucket should fit 4 calls")
	}
	st.RecordUsage(month, 998)
	if st.ReserveQuota(month, 4, 1000) {
		t.Error("998+4 should not fit under 1000")
	}
	if !st.ReserveQuota(month, 2, 1000) {
		t.Error("998+2 should exactly fit under 1000")
	}
	// buckets are independent
	if !st.ReserveQuota("2024-04", 4, 1000) {
		t.Error("next month's bucket should be empty")
	}
}

func Test_MonthKey(t *testing.T) {
	// the bucket is UTC: late evening in a western zone is already next month
	tz := time.FixedZone("UTC-5", -5*60*60)
	at := time.Date(2024, 2, 29, 20, 0, 0, 0, tz)
	if got := MonthKey(at); got != "2024-03" {
		t.Errorf("MonthKey() = %q, want 2024-03", got)
	}
}

func Test_State_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "efs_state.json")

	st := NewState()
	st.RecordNotified(BTC, date.MustParse("2024-03-14"))
	st.RecordUsage("2024-03", 7)
	if err := st.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState() failed: %v", err)
	}
	if got.ShouldNotify(BTC, date.MustParse("2024-03-14")) {
		t.Error("notified day lost in round trip")
	}
	if got.CallsUsed["2024-03"] != 7 {
		t.Errorf("calls used = %d, want 7", got.CallsUsed["2024-03"])
	}
}

func Test_LoadState_missingIsFresh(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadState() on a missing file failed: %v", err)
	}
	if len(st.LastNotified) != 0 || len(st.CallsUsed) != 0 {
		t.Errorf("missing file should yield a fresh state, got %+v", st)
	}
}

func Test_LoadState_corruptIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Error("corrupt state file should be an error, not a silent reset")
	}
}
