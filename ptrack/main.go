package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/chanv/portrack/cmd"
)

func main() {
	// Shell completion, a no-op outside a completion context.
	sub := make(map[string]*complete.Command, len(cmd.CommandNames()))
	for _, name := range cmd.CommandNames() {
		sub[name] = &complete.Command{Flags: map[string]complete.Predictor{}}
	}
	complete.Complete("ptrack", &complete.Command{
		Sub:   sub,
		Flags: map[string]complete.Predictor{"config": predict.Dirs("*")},
	})

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
