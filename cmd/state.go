package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/etnz/etfflow"
	"github.com/google/subcommands"
)

type stateCmd struct {
	statePath string
}

func (*stateCmd) Name() string     { return "state" }
func (*stateCmd) Synopsis() string { return "print the persisted dedup and quota state" }
func (*stateCmd) Usage() string {
	return `efs state [-state <path>]

  Prints the persisted state blob: the last notified day per asset and the
  monthly upstream-call usage buckets.
`
}

func (c *stateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.statePath, "state", etfflow.DefaultStatePath, "Path to the state file")
}

func (c *stateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := etfflow.LoadState(c.statePath)
	if err != nil {
		return fail(err)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(b))
	return subcommands.ExitSuccess
}
