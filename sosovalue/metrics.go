package sosovalue

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/etfflow"
)

// CurrentMetrics fetches the current ETF data metrics for the asset kind and
// returns the parsed body as-is. Version differences in body shape are
// absorbed by etfflow.Normalize, not here.
func (c *Client) CurrentMetrics(kind etfflow.Asset) (any, error) {
	return c.post(currentMetricsPath, kind)
}

// aggregateValueKeys are the candidate value keys inside the dailyNetInflow
// sub-structure, probed in order.
var aggregateValueKeys = []string{"value", "netInflow", "usd", "total"}

// DailyAggregate is the degraded-path adapter for credentials that only expose
// asset-level totals: it fetches the current metrics and extracts the
// aggregate instead of running the full normalizer.
func (c *Client) DailyAggregate(kind etfflow.Asset) (etfflow.DayGroup, error) {
	payload, err := c.post(currentMetricsPath, kind)
	if err != nil {
		return etfflow.DayGroup{}, err
	}
	return Aggregate(payload, kind)
}

// Aggregate probes the known data.dailyNetInflow sub-structure of a
// current-metrics payload and synthesizes a single-record group representing
// the whole asset. Values there are plain USD and are normalized to millions.
func Aggregate(payload any, kind etfflow.Asset) (etfflow.DayGroup, error) {
	jval, err := jsonpath.Get("$.data.dailyNetInflow", payload)
	if err != nil {
		return etfflow.DayGroup{}, fmt.Errorf("no data.dailyNetInflow in %s payload: %w", kind, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	m, ok := jval.(map[string]any)
	if !ok {
		return etfflow.DayGroup{}, fmt.Errorf("data.dailyNetInflow in %s payload is a %T, want an object", kind, jval)
	}

	var day etfflow.DayGroup
	for _, k := range []string{"date", "lastUpdateDate", "statDate"} {
		if v, present := m[k]; present {
			if d, ok := etfflow.AsDate(v); ok {
				day.Date = d
				break
			}
		}
	}
	if day.Date.IsZero() {
		return etfflow.DayGroup{}, fmt.Errorf("data.dailyNetInflow in %s payload carries no date", kind)
	}

	for _, k := range aggregateValueKeys {
		if v, present := m[k]; present && v != nil {
			day.Items = []etfflow.FlowRecord{{
				Name: fmt.Sprintf("Total (All %s ETFs)", kind.Symbol()),
				Net:  etfflow.Coerce(v) / 1e6, // USD → $m
			}}
			return day, nil
		}
	}
	return etfflow.DayGroup{}, fmt.Errorf("data.dailyNetInflow in %s payload carries no value", kind)
}
