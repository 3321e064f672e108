package cmd

import (
	"context"
	"flag"

	"github.com/etnz/etfflow/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `efs topic [<topic>...]

  Show documentation for the given topics. Without argument, shows the
  overview with the list of available topics.
`
}

func (*topicCmd) SetFlags(_ *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	for _, topic := range topics {
		doc, err := docs.Topic(topic)
		if err != nil {
			return fail(err)
		}
		printMarkdown(doc)
	}
	return subcommands.ExitSuccess
}
