// Package cmd implements the CLI application behind the efs tool.
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/etfflow"
	"github.com/etnz/etfflow/date"
	"github.com/google/subcommands"
)

// Commands lists every subcommand; a main package registers them all.
var Commands = []subcommands.Command{
	&flowCmd{},
	&chartCmd{},
	&noteCmd{},
	&stateCmd{},
	&topicCmd{},
}

// reportingZone is where "yesterday" is observed: the upstream finalizes US
// figures during the UTC+9 morning, so that zone's yesterday is the freshest
// day that can possibly be confirmed.
var reportingZone = time.FixedZone("UTC+9", 9*60*60)

// loadConfig builds the configuration from the environment, once, at the
// boundary. Components receive it explicitly.
func loadConfig() (etfflow.Config, error) {
	cfg := etfflow.Config{
		BaseURL:      os.Getenv("SOSO_BASE"),
		ClientID:     os.Getenv("SOSO_CLIENT_ID"),
		ClientSecret: os.Getenv("SOSO_CLIENT_SECRET"),
		APIKey:       os.Getenv("SOSO_API_KEY"),
		Webhook:      os.Getenv("DISCORD_WEBHOOK"),
		SendETH:      os.Getenv("SEND_ETH") == "1",
	}
	if v := os.Getenv("EFS_MONTHLY_CEILING"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid EFS_MONTHLY_CEILING %q: %w", v, err)
		}
		cfg.MonthlyCeiling = n
	}
	if v := os.Getenv("EFS_MAX_FIELDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid EFS_MAX_FIELDS %q: %w", v, err)
		}
		cfg.MaxFields = n
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// targetDate resolves the -d flag, defaulting to yesterday in the reporting
// zone.
func targetDate(flagValue string) (date.Date, error) {
	if flagValue == "" {
		return date.YesterdayIn(reportingZone), nil
	}
	return date.Parse(flagValue)
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails (e.g. no usable terminal profile).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// quotaEmbed is the single warning sent instead of data when a run would
// break the monthly budget.
func quotaEmbed(month string, used, needed, ceiling int) etfflow.Embed {
	return etfflow.Embed{
		Title: "Monthly API budget exhausted",
		Description: fmt.Sprintf("Skipping this run: %d calls used in %s, %d more needed, ceiling is %d.",
			used, month, needed, ceiling),
		Color:  etfflow.ColorNegative,
		Footer: &etfflow.EmbedFooter{Text: "No upstream calls were made."},
	}
}

// fail reports a fatal error on stderr, shared by all subcommands.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
