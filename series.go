package etfflow

import (
	"strings"

	"github.com/etnz/etfflow/date"
)

// Asset is an upstream asset kind identifier, as spelled on the wire.
type Asset string

const (
	BTC Asset = "us-btc-spot"
	ETH Asset = "us-eth-spot"
)

// Symbol returns the short display symbol for the asset ("BTC", "ETH").
func (a Asset) Symbol() string {
	parts := strings.Split(string(a), "-")
	if len(parts) == 3 {
		return strings.ToUpper(parts[1])
	}
	return strings.ToUpper(string(a))
}

// FlowRecord is one fund's net flow for one day, in millions of USD.
type FlowRecord struct {
	Name string
	Net  float64
}

// DayGroup is one calendar day's flows across all tracked funds for one asset.
// All items share the group's date.
type DayGroup struct {
	Date  date.Date
	Items []FlowRecord
}

// Net returns the day's total net flow, summing every item.
func (g DayGroup) Net() float64 {
	var total float64
	for _, it := range g.Items {
		total += it.Net
	}
	return total
}

// Series is a sequence of DayGroup sorted ascending by date, with at most one
// group per date.
type Series []DayGroup

// On returns the group for the given date, if any.
func (s Series) On(d date.Date) (DayGroup, bool) {
	for _, g := range s {
		if g.Date == d {
			return g, true
		}
	}
	return DayGroup{}, false
}

// Latest returns the most recent group of the series, if any.
func (s Series) Latest() (DayGroup, bool) {
	if len(s) == 0 {
		return DayGroup{}, false
	}
	return s[len(s)-1], true
}
