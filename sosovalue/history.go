package sosovalue

import (
	"sort"

	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/date"
)

// HistoryPoint is one finalized day in the append-only history feed.
// Values are plain USD, as published.
type HistoryPoint struct {
	Date       date.Date
	Cumulative float64
	Daily      float64
}

// History is the finalized flow history for one asset, sorted ascending.
type History []HistoryPoint

// Field name candidates vary by API version; probed in order.
var (
	historyCumKeys   = []string{"cumNetInflow", "cumulativeNetInflow", "cum_net_inflow"}
	historyDailyKeys = []string{"totalNetInflow", "dailyNetInflow", "total_net_inflow"}
	historyListKeys  = []string{"list", "records", "items", "rows"}
)

// History fetches the historical inflow chart for the asset kind. Rows
// missing a date or either value are skipped, not errors.
func (c *Client) History(kind etfflow.Asset) (History, error) {
	payload, err := c.post(historyPath, kind)
	if err != nil {
		return nil, err
	}
	return extractHistory(payload), nil
}

// extractHistory locates the record array in the payload (the array-locating
// heuristic of the normalizer, degenerately applied at the top level) and
// reads the per-day points out of it.
func extractHistory(payload any) History {
	var h History
	for _, row := range extractList(payload) {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		var pt HistoryPoint
		for _, k := range []string{"date", "statDate", "dateStr"} {
			if v, present := m[k]; present {
				if d, ok := etfflow.AsDate(v); ok {
					pt.Date = d
					break
				}
			}
		}
		if pt.Date.IsZero() {
			continue
		}
		cum, cumOK := firstPresent(m, historyCumKeys)
		daily, dailyOK := firstPresent(m, historyDailyKeys)
		if !cumOK || !dailyOK {
			continue
		}
		pt.Cumulative = etfflow.Coerce(cum)
		pt.Daily = etfflow.Coerce(daily)
		h = append(h, pt)
	}
	sort.Slice(h, func(i, j int) bool { return h[i].Date.Before(h[j].Date) })
	return h
}

// extractList absorbs the shape variations of the history body: a bare array,
// an array under data, or an array under one of the usual wrapper keys at
// either level.
func extractList(payload any) []any {
	if lst, ok := payload.([]any); ok {
		return lst
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	switch data := m["data"].(type) {
	case []any:
		return data
	case map[string]any:
		for _, k := range historyListKeys {
			if lst, ok := data[k].([]any); ok {
				return lst
			}
		}
	}
	for _, k := range historyListKeys {
		if lst, ok := m[k].([]any); ok {
			return lst
		}
	}
	return nil
}

// firstPresent returns the value of the first candidate key present with a
// non-nil value.
func firstPresent(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, present := m[k]; present && v != nil {
			return v, true
		}
	}
	return nil, false
}

// LatestDate returns the maximum date present in the history.
func (h History) LatestDate() (date.Date, bool) {
	if len(h) == 0 {
		return date.Date{}, false
	}
	return h[len(h)-1].Date, true
}

// Confirmed reports whether the target day's figure is final: the upstream
// source publishes provisional same-day estimates, and a day counts as
// confirmed only once the history feed has reached it. A day strictly newer
// than the latest history date must never be reported.
func (h History) Confirmed(target date.Date) bool {
	latest, ok := h.LatestDate()
	return ok && !latest.Before(target)
}

// ReportDate picks the day to report for the target: the target itself when
// confirmed, otherwise the most recent confirmed day, flagged stale.
// ok is false when the history carries no usable day at all.
func (h History) ReportDate(target date.Date) (d date.Date, stale, ok bool) {
	latest, ok := h.LatestDate()
	if !ok {
		return date.Date{}, false, false
	}
	if latest.Before(target) {
		return latest, true, true
	}
	return target, false, true
}

// At returns the point for the given date, falling back to the last point of
// the series when the date is absent.
func (h History) At(d date.Date) (HistoryPoint, bool) {
	if len(h) == 0 {
		return HistoryPoint{}, false
	}
	for _, pt := range h {
		if pt.Date == d {
			return pt, true
		}
	}
	return h[len(h)-1], true
}
