package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/agent"
	"github.com/etnz/etfflow/sosovalue"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type noteCmd struct {
	date      string
	statePath string
}

func (*noteCmd) Name() string     { return "note" }
func (*noteCmd) Synopsis() string { return "generate a short AI market note on the latest flows" }
func (*noteCmd) Usage() string {
	return `efs note [-d <date>]

  Fetches the latest confirmed figures and prints a one-paragraph neutral
  comment generated by the Gemini API (requires GEMINI_API_KEY).
`
}

func (c *noteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day to comment on (defaults to yesterday in the reporting zone)")
	f.StringVar(&c.statePath, "state", "", "Path to the state file")
}

func (c *noteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	if c.statePath != "" {
		cfg.StatePath = c.statePath
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
		return fail(fmt.Errorf("monthly call budget exhausted for %s", month))
	}

	var summary []string
	for _, asset := range assets {
		hist, err := client.History(asset)
		if err != nil {
			return fail(err)
		}
		day, stale, ok := hist.ReportDate(target)
		if !ok {
			continue
		}
		pt, _ := hist.At(day)
		line := fmt.Sprintf("%s ETFs on %s: daily net flow %s, cumulative %.2f $B",
			asset.Symbol(), day, etfflow.SignedMillions(pt.Daily/1e6), pt.Cumulative/1e9)
		if stale {
			line += " (stale)"
		}
		summary = append(summary, line)
	}
	if len(summary) == 0 {
		log.Println("[info] no confirmed history, nothing to comment on")
		return subcommands.ExitSuccess
	}

	gclient, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("cannot initialize the Gemini client: %w", err))
	}
	note, err := agent.Note(ctx, gclient, strings.Join(summary, "\n"))
	if err != nil {
		return fail(err)
	}
	printMarkdown(note + "\n")

	if err := st.Save(cfg.StatePath); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
