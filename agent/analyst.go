package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Analyst is a chat with a portfolio analyst. The analyst can pull the
// current report through a function tool, so its answers stay grounded
// in the actual numbers.
type Analyst struct {
	Model string
	// Report returns the current report rendered as markdown.
	Report func() string

	chat *genai.Chat
}

// NewAnalyst creates an analyst over the given report source. model
// may be empty to use the default.
func NewAnalyst(model string, report func() string) *Analyst {
	if model == "" {
		model = defaultModel
	}
	return &Analyst{Model: model, Report: report}
}

const instruction = `You are a portfolio analyst. The user asks about the
performance, risk and composition of their stock portfolio.

Always ground your answers in the numbers of the current report, which
you can fetch with the portfolio_report function. Cite the figures you
use. Time-weighted return is reported as a growth factor (1.0 means
flat). Never invent holdings that are not in the report, and never give
buy or sell advice.`

// Start opens the chat session.
func (a *Analyst) Start(ctx context.Context, client *genai.Client) error {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{FunctionDeclarations: []*genai.FunctionDeclaration{a.declaration()}},
		},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}
	chat, err := client.Chats.Create(ctx, a.Model, config, nil)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

func (a *Analyst) declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "portfolio_report",
		Description: "Returns the current portfolio report as markdown: daily valuation summary, open and closed positions, risk statistics.",
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The report in markdown.",
		},
	}
}

// Ask sends a question and resolves function calls until the analyst
// produces a text answer.
func (a *Analyst) Ask(ctx context.Context, question string) (string, error) {
	return a.send(ctx, &genai.Part{Text: question})
}

func (a *Analyst) send(ctx context.Context, part *genai.Part) (string, error) {
	resp, err := a.chat.Send(ctx, part)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from analyst")
	}

	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		fresp := &genai.FunctionResponse{
			ID:   part0.FunctionCall.ID,
			Name: part0.FunctionCall.Name,
		}
		if part0.FunctionCall.Name == "portfolio_report" {
			fresp.Response = map[string]any{"output": a.Report()}
		} else {
			fresp.Response = map[string]any{"error": fmt.Sprintf("unknown function %s", part0.FunctionCall.Name)}
		}
		// Hand the result back until a text answer comes out.
		return a.send(ctx, &genai.Part{FunctionResponse: fresp})
	}
	return part0.Text, nil
}
