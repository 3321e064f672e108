package sosovalue

import (
	"encoding/json"
	"testing"

	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/date"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("test payload does not parse: %v", err)
	}
	return payload
}

func Test_extractHistory_shapes(t *testing.T) {
	// the same two rows under every body shape the feed has been seen to use
	rows := `[
		{"date":"2024-03-13","cumNetInflow":11800000000,"totalNetInflow":-100000000},
		{"date":"2024-03-14","cumNetInflow":12000000000,"totalNetInflow":200000000}
	]`
	for _, body := range []string{
		rows,
		`{"data":` + rows + `}`,
		`{"data":{"list":` + rows + `}}`,
		`{"data":{"records":` + rows + `}}`,
		`{"list":` + rows + `}`,
	} {
		h := extractHistory(decode(t, body))
		if len(h) != 2 {
			t.Errorf("extractHistory(%s) = %d points, want 2", body, len(h))
			continue
		}
		if h[1].Date != date.MustParse("2024-03-14") || h[1].Daily != 2e8 {
			t.Errorf("last point = %+v", h[1])
		}
	}
}

func Test_extractHistory_sortsAndSkips(t *testing.T) {
	h := extractHistory(decode(t, `{"data":{"list":[
		{"date":"2024-03-14","cumulativeNetInflow":"12000000000","dailyNetInflow":"200000000"},
		{"date":"2024-03-12","cumNetInflow":1,"totalNetInflow":1},
		{"date":"latest","cumNetInflow":1,"totalNetInflow":1},
		{"date":"2024-03-13","cumNetInflow":2},
		{"cumNetInflow":3,"totalNetInflow":3},
		"not an object"
	]}}`))

	if len(h) != 2 {
		t.Fatalf("extractHistory() = %d points, want 2 (partial rows skipped)", len(h))
	}
	if h[0].Date != date.MustParse("2024-03-12") {
		t.Errorf("points not sorted ascending: first is %s", h[0].Date)
	}
	if h[1].Cumulative != 12e9 {
		t.Errorf("alternate cum key not probed: %v", h[1].Cumulative)
	}
}

func Test_History_confirmation(t *testing.T) {
	h := History{
		{Date: date.MustParse("2024-03-13")},
		{Date: date.MustParse("2024-03-14")},
	}

	if !h.Confirmed(date.MustParse("2024-03-14")) {
		t.Error("day present in history should be confirmed")
	}
	if h.Confirmed(date.MustParse("2024-03-15")) {
		t.Error("day beyond the history must never be confirmed")
	}

	// unconfirmed target falls back to the latest confirmed day, flagged stale
	d, stale, ok := h.ReportDate(date.MustParse("2024-03-15"))
	if !ok || !stale || d != date.MustParse("2024-03-14") {
		t.Errorf("ReportDate(2024-03-15) = %s stale=%v ok=%v, want 2024-03-14 stale", d, stale, ok)
	}
	d, stale, ok = h.ReportDate(date.MustParse("2024-03-14"))
	if !ok || stale || d != date.MustParse("2024-03-14") {
		t.Errorf("ReportDate(2024-03-14) = %s stale=%v ok=%v, want same day fresh", d, stale, ok)
	}

	if _, _, ok := History(nil).ReportDate(date.MustParse("2024-03-14")); ok {
		t.Error("empty history carries no reportable day")
	}
}

func Test_History_At(t *testing.T) {
	h := History{
		{Date: date.MustParse("2024-03-13"), Daily: 1},
		{Date: date.MustParse("2024-03-14"), Daily: 2},
	}
	if pt, ok := h.At(date.MustParse("2024-03-13")); !ok || pt.Daily != 1 {
		t.Errorf("At(present) = %+v, %v", pt, ok)
	}
	if pt, ok := h.At(date.MustParse("2024-03-20")); !ok || pt.Daily != 2 {
		t.Errorf("At(absent) = %+v, %v, want tail fallback", pt, ok)
	}
}

func Test_Aggregate(t *testing.T) {
	payload := decode(t, `{"data":{"dailyNetInflow":{
		"lastUpdateDate":"2024-03-14","value":90300000
	}}}`)

	day, err := Aggregate(payload, etfflow.BTC)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if day.Date != date.MustParse("2024-03-14") {
		t.Errorf("aggregate date = %s", day.Date)
	}
	want := etfflow.FlowRecord{Name: "Total (All BTC ETFs)", Net: 90.3}
	if len(day.Items) != 1 || day.Items[0] != want {
		t.Errorf("aggregate items = %v, want [%v]", day.Items, want)
	}
}

func Test_Aggregate_missing(t *testing.T) {
	for _, body := range []string{
		`{"data":{}}`,
		`{"data":{"dailyNetInflow":"90300000"}}`,
		`{"data":{"dailyNetInflow":{"value":90300000}}}`,
		`{"data":{"dailyNetInflow":{"date":"2024-03-14"}}}`,
	} {
		if _, err := Aggregate(decode(t, body), etfflow.BTC); err == nil {
			t.Errorf("Aggregate(%s) should fail", body)
		}
	}
}
