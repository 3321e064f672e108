// Command efs notifies a Discord channel about daily net capital flows into
// US spot BTC/ETH ETFs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/etnz/etfflow/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
