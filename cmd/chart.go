package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/date"
	"github.com/etnz/etfflow/discord"
	"github.com/etnz/etfflow/renderer"
	"github.com/etnz/etfflow/sosovalue"
	"github.com/google/subcommands"
)

const (
	chartTitle = "Cumulative Net Inflow (US Spot ETFs)"
	chartName  = "etf_cum_flow.svg"
)

type chartCmd struct {
	date      string
	statePath string
	force     bool
	dryRun    bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "post the cumulative net inflow chart" }
func (*chartCmd) Usage() string {
	return `efs chart [-d <date>] [-force] [-n]

  Fetches the full flow history of each tracked asset, renders the cumulative
  net inflow chart, and posts it with the latest confirmed figures. Skips
  silently when no tracked asset is confirmed for the target day.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day to report (defaults to yesterday in the reporting zone)")
	f.StringVar(&c.statePath, "state", "", "Path to the state file")
	f.BoolVar(&c.force, "force", false, "Post even when no asset is confirmed for the day")
	f.BoolVar(&c.dryRun, "n", false, "Write the chart locally and print the message instead of delivering")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if !st.ReserveQuota(month, len(assets), cfg.MonthlyCeiling) {
		warning := quotaEmbed(month, st.CallsUsed[month], len(assets), cfg.MonthlyCeiling)
		log.Printf("[warn] monthly call budget exhausted for %s", month)
		if c.dryRun {
			return subcommands.ExitSuccess
		}
		if err := discord.Send(cfg.Webhook, warning); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	// One history fetch per asset serves both the confirmation probe and the
	// chart data.
	hists := make(map[etfflow.Asset]sosovalue.History, len(assets))
	confirmed := false
	for _, asset := range assets {
		hist, err := client.History(asset)
		if err != nil {
			return fail(err)
		}
		hists[asset] = hist
		if hist.Confirmed(target) {
			confirmed = true
		}
	}
	if !confirmed && !c.force {
		log.Printf("[info] skip chart: no tracked asset confirmed for %s", target)
		if err := st.Save(cfg.StatePath); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	var lines []renderer.Line
	for _, asset := range assets {
		lines = append(lines, renderer.Line{Label: asset.Symbol() + " ETFs", History: hists[asset]})
	}
	svg := renderer.Cumulative(chartTitle, lines...)

	content := chartContent(assets, hists, target)
	payload := discord.Payload{
		Content: content,
		Embeds: []any{etfflow.Embed{
			Title:  chartTitle,
			Image:  &etfflow.EmbedImage{URL: "attachment://" + chartName},
			Footer: &etfflow.EmbedFooter{Text: "Source: SoSoValue API"},
		}},
	}

	if c.dryRun {
		if err := os.WriteFile(chartName, svg, 0o644); err != nil {
			return fail(err)
		}
		log.Printf("[info] chart written -> %s", chartName)
		printMarkdown(content + "\n")
		return subcommands.ExitSuccess
	}

	if err := discord.SendFile(cfg.Webhook, payload, chartName, svg); err != nil {
		return fail(err)
	}
	if err := st.Save(cfg.StatePath); err != nil {
		return fail(err)
	}
	log.Println("[ok] chart sent")
	return subcommands.ExitSuccess
}

// chartContent builds the message body: the latest confirmed cumulative and
// daily figure per asset, in billions, with per-asset stale tags when the
// reported day is older than the target.
func chartContent(assets []etfflow.Asset, hists map[etfflow.Asset]sosovalue.History, target date.Date) string {
	var figures, tags []string
	var last date.Date
	for _, asset := range assets {
		hist := hists[asset]
		day, stale, ok := hist.ReportDate(target)
		if !ok {
			continue
		}
		pt, _ := hist.At(day)
		figures = append(figures, fmt.Sprintf("%s: %.2f B  (day %+.3f B)",
			asset.Symbol(), pt.Cumulative/1e9, pt.Daily/1e9))
		tag := fmt.Sprintf("%s@%s", asset.Symbol(), day)
		if stale {
			tag += " (stale)"
		}
		tags = append(tags, tag)
		if day.After(last) {
			last = day
		}
	}
	return fmt.Sprintf("**ETF cumulative net inflow (up to %s)**\n%s\n%s",
		last, strings.Join(figures, "\n"), strings.Join(tags, ", "))
}
