// Package agent runs an interactive analyst chat grounded on the
// current portfolio report.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

const prompt = "analyst> "

// Agent is the interactive chat session.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	analyst *Analyst
}

// New creates an Agent talking to the given analyst, reading user
// input from r and writing to w.
func New(w io.Writer, r io.Reader, analyst *Analyst) *Agent {
	return &Agent{w: w, r: bufio.NewReader(r), analyst: analyst}
}

// Run starts the REPL. Initial prompts are consumed before reading
// from the user; 'bye' or EOF ends the session.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if err := a.analyst.Start(ctx, client); err != nil {
		return err
	}

	fmt.Fprintln(a.w, "Portfolio analyst ready. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)

		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		answer, err := a.analyst.Ask(ctx, strings.TrimSpace(input))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}
