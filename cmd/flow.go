package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/date"
	"github.com/etnz/etfflow/discord"
	"github.com/etnz/etfflow/sosovalue"
	"github.com/google/subcommands"
)

// Worst case upstream calls per asset for a flow run: the history probe and
// the current metrics fetch (the aggregate fallback reuses the latter's
// payload).
const flowCallsPerAsset = 2

type flowCmd struct {
	date      string
	statePath string
	force     bool
	dryRun    bool
}

func (*flowCmd) Name() string     { return "flow" }
func (*flowCmd) Synopsis() string { return "notify the channel about one day's per-fund ETF net flows" }
func (*flowCmd) Usage() string {
	return `efs flow [-d <date>] [-force] [-n]

  Fetches the day's net flows for each tracked asset, and posts one message
  per asset that is confirmed and not yet notified. A day whose figure is not
  final yet falls back to the most recent confirmed day, tagged stale.
`
}

func (c *flowCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day to report (defaults to yesterday in the reporting zone)")
	f.StringVar(&c.statePath, "state", "", "Path to the state file")
	f.BoolVar(&c.force, "force", false, "Bypass the date-confirmation gate")
	f.BoolVar(&c.dryRun, "n", false, "Build the messages but print them instead of delivering")
}

func (c *flowCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	if c.statePath != "" {
		cfg.StatePath = c.statePath
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	target, err := targetDate(c.date)
	if err != nil {
		return fail(err)
	}
	log.Printf("[info] target day = %s", target)

	st, err := etfflow.LoadState(cfg.StatePath)
	if err != nil {
		return fail(err)
	}
	client, err := sosovalue.New(cfg)
	if err != nil {
		return fail(err)
	}
	month := etfflow.MonthKey(time.Now())
	client.OnCall = func() { st.RecordUsage(month, 1) }

	assets := cfg.Assets()
	needed := flowCallsPerAsset * len(assets)
	if !st.ReserveQuota(month, needed, cfg.MonthlyCeiling) {
		warning := quotaEmbed(month, st.CallsUsed[month], needed, cfg.MonthlyCeiling)
		log.Printf("[warn] monthly call budget exhausted (%s: %d used, %d needed, ceiling %d)",
			month, st.CallsUsed[month], needed, cfg.MonthlyCeiling)
		if c.dryRun {
			c.preview(warning)
			return subcommands.ExitSuccess
		}
		if err := discord.Send(cfg.Webhook, warning); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	var embeds []any
	type delivery struct {
		asset etfflow.Asset
		day   date.Date
	}
	var deliveries []delivery

	for _, asset := range assets {
		group, day, stale, err := c.fetchDay(client, asset, target)
		if err != nil {
			return fail(err)
		}
		if len(group.Items) == 0 {
			continue
		}
		if !st.ShouldNotify(asset, day) {
			log.Printf("[info] %s already sent for %s (dedup)", asset.Symbol(), day)
			continue
		}
		title := fmt.Sprintf("%s (%s)", day.Format("02 Jan 2006"), asset.Symbol())
		if stale {
			title += " (stale)"
		}
		embeds = append(embeds, etfflow.BuildEmbed(title, group.Items, cfg.MaxFields))
		deliveries = append(deliveries, delivery{asset, day})
	}

	if len(embeds) == 0 {
		log.Println("[info] no data yet (silent or already sent)")
		if err := st.Save(cfg.StatePath); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	if c.dryRun {
		c.preview(embeds...)
		return subcommands.ExitSuccess
	}

	// A failed delivery deliberately skips the state write: nothing is
	// recorded as notified, so the next scheduled run retries.
	if err := discord.Send(cfg.Webhook, embeds...); err != nil {
		return fail(err)
	}
	for _, d := range deliveries {
		st.RecordNotified(d.asset, d.day)
	}
	if err := st.Save(cfg.StatePath); err != nil {
		return fail(err)
	}
	log.Printf("[ok] sent embeds x%d", len(embeds))
	return subcommands.ExitSuccess
}

// fetchDay resolves the day to report for one asset and extracts its flows.
// An unconfirmed target falls back to the most recent confirmed day (stale);
// -force skips the probe entirely and trusts the target. An empty group means
// "no data yet" for the asset, which is not an error.
func (c *flowCmd) fetchDay(client *sosovalue.Client, asset etfflow.Asset, target date.Date) (group etfflow.DayGroup, day date.Date, stale bool, err error) {
	day = target
	if c.force {
		log.Printf("[warn] %s: confirmation gate bypassed", asset.Symbol())
	} else {
		hist, err := client.History(asset)
		if err != nil {
			return etfflow.DayGroup{}, date.Date{}, false, err
		}
		var ok bool
		day, stale, ok = hist.ReportDate(target)
		if !ok {
			log.Printf("[info] %s: no confirmed history at all, skipping", asset.Symbol())
			return etfflow.DayGroup{}, date.Date{}, false, nil
		}
		if stale {
			log.Printf("[info] %s: %s not confirmed yet, falling back to %s (stale)", asset.Symbol(), target, day)
		}
	}

	payload, err := client.CurrentMetrics(asset)
	if err != nil {
		return etfflow.DayGroup{}, date.Date{}, false, err
	}
	series := etfflow.Normalize(payload)
	group, found := series.On(day)

	// The same payload sometimes carries a published aggregate total. Per-fund
	// wins when it parsed, but a disagreement is worth surfacing.
	if agg, aggErr := sosovalue.Aggregate(payload, asset); aggErr == nil && agg.Date == day {
		if !found {
			log.Printf("[info] %s: no per-fund breakdown for %s, using aggregate", asset.Symbol(), day)
			return agg, day, stale, nil
		}
		if diff := group.Net() - agg.Net(); math.Abs(diff) > 0.05 {
			log.Printf("[warn] %s: per-fund sum %.1f $m differs from published aggregate %.1f $m",
				asset.Symbol(), group.Net(), agg.Net())
		}
	}
	if !found {
		log.Printf("[debug] %s: no row for %s in normalized series (%d days parsed)", asset.Symbol(), day, len(series))
		return etfflow.DayGroup{}, day, stale, nil
	}
	return group, day, stale, nil
}

// preview renders embeds as markdown on the terminal for dry runs.
func (c *flowCmd) preview(embeds ...any) {
	for _, e := range embeds {
		b, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			continue
		}
		printMarkdown(fmt.Sprintf("```json\n%s\n```\n", b))
	}
}
