package etfflow

import (
	"fmt"
	"slices"
	"sort"

	"github.com/etnz/etfflow/date"
)

// The upstream schema is not contractually stable across API versions or
// vendors, so extraction is heuristic: at every mapping of the payload tree,
// ordered candidate-key lists are probed and the first match wins. The probe
// order below is the tie-break policy on ambiguous payloads; changing it
// changes behavior, so it is explicit and tested.
var (
	dateKeys    = []string{"date", "tradingDay", "day", "statDate", "dateStr"}
	itemKeys    = []string{"items", "funds", "etfs", "records", "list", "rows", "data"}
	nameKeys    = []string{"ticker", "fund", "name", "etf", "symbol"}
	netKeys     = []string{"net", "netFlow", "net_flow", "netUsd", "flow"}
	inflowKeys  = []string{"inflow", "inFlowUsd", "spotInflow"}
	outflowKeys = []string{"outflow", "outFlowUsd", "spotOutflow"}
)

// AsDate reads a calendar date out of an arbitrary payload value.
func AsDate(v any) (date.Date, bool) {
	s := normSpace(fmt.Sprint(v))
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, false
	}
	return d, true
}

// Normalize scans an arbitrary payload tree for date-keyed groups of named
// flow records and returns them as a Series: one group per date, sorted
// ascending, items from independently discovered groups concatenated in
// discovery order. A payload with no recognizable group yields an empty
// Series, never an error.
func Normalize(payload any) Series {
	var groups []DayGroup
	walk(payload, &groups)

	byDate := make(map[date.Date][]FlowRecord)
	for _, g := range groups {
		byDate[g.Date] = append(byDate[g.Date], g.Items...)
	}
	merged := make(Series, 0, len(byDate))
	for d, items := range byDate {
		merged = append(merged, DayGroup{Date: d, Items: items})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

// walk performs the depth-first traversal. Map children are visited in sorted
// key order so two runs on the same payload discover groups in the same order.
// Traversal continues into children even after a node produced a group: a
// payload may legitimately nest groups at several depths.
func walk(x any, out *[]DayGroup) {
	switch n := x.(type) {
	case map[string]any:
		if g, ok := groupOf(n); ok {
			*out = append(*out, g)
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			walk(n[k], out)
		}
	case []any:
		for _, v := range n {
			walk(v, out)
		}
	}
}

// groupOf attempts to build a DayGroup from a single mapping node. The node
// must carry a date under one of the date keys, and a sequence under one of
// the item keys with at least one parseable record.
func groupOf(n map[string]any) (DayGroup, bool) {
	var day date.Date
	for _, k := range dateKeys {
		v, present := n[k]
		if !present {
			continue
		}
		// A present key whose value does not parse does not veto the
		// remaining candidates.
		if d, ok := AsDate(v); ok {
			day = d
			break
		}
	}
	if day.IsZero() {
		return DayGroup{}, false
	}

	var items []any
	for _, k := range itemKeys {
		if seq, ok := n[k].([]any); ok {
			items = seq
			break
		}
	}
	if items == nil {
		return DayGroup{}, false
	}

	g := DayGroup{Date: day}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if rec, ok := recordOf(m); ok {
			g.Items = append(g.Items, rec)
		}
	}
	if len(g.Items) == 0 {
		return DayGroup{}, false
	}
	return g, true
}

// recordOf extracts one FlowRecord from an item mapping. Items carrying
// neither a name nor a determinable value are dropped silently.
func recordOf(m map[string]any) (FlowRecord, bool) {
	var name any
	for _, k := range nameKeys {
		if v, present := m[k]; present {
			name = v
			break
		}
	}

	var val any
	for _, k := range netKeys {
		if v, present := m[k]; present {
			val = v
			break
		}
	}
	valued := val != nil
	if !valued {
		// Fall back to inflow − outflow, but only when at least one side
		// actually carries a value.
		var inflow, outflow any
		for _, k := range inflowKeys {
			if v, present := m[k]; present {
				inflow = v
				break
			}
		}
		for _, k := range outflowKeys {
			if v, present := m[k]; present {
				outflow = v
				break
			}
		}
		if inflow != nil || outflow != nil {
			val = Coerce(inflow) - Coerce(outflow)
			valued = true
		}
	}

	if name == nil && !valued {
		return FlowRecord{}, false
	}

	label := "ETF"
	if name != nil {
		if s := normSpace(fmt.Sprint(name)); s != "" {
			label = s
		}
	}
	return FlowRecord{Name: label, Net: Coerce(val)}, true
}
