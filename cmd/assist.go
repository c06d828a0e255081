package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/chanv/portrack/agent"
	"github.com/chanv/portrack/renderer"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "starts an interactive analyst chat about the portfolio" }
func (*assistCmd) Usage() string {
	return `ptrack assist [question...]

  Starts an interactive chat with an analyst grounded on the current
  report. Requires a Gemini API key in the configuration or in the
  GEMINI_API_KEY environment variable.

`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := compute(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	apiKey := cfg.Gemini.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no Gemini API key configured")
		return subcommands.ExitFailure
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	analyst := agent.NewAnalyst(cfg.Gemini.Model, func() string {
		return renderer.ReportMarkdown(report)
	})
	a := agent.New(os.Stdout, os.Stdin, analyst)
	if err := a.Run(ctx, client, f.Args()...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
