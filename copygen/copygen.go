// Package copygen invokes the generative model to turn a prompt into copy.
package copygen

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Placeholder is returned when the model produces no usable candidate. An
// empty result is not an error, only transport or auth failures are.
const Placeholder = "no copy generated"

// Error wraps a generative model call failure.
type Error struct {
	Err error
}

func (e Error) Error() string {
	return fmt.Sprintf("copygen: %v", e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

func New(llm llms.Model) Generator {
	return Generator{
		llm: llm,
	}
}

type Generator struct {
	llm llms.Model
}

// Generate returns the first candidate's text, trimmed.
func (g Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", Error{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Placeholder, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return Placeholder, nil
	}
	return text, nil
}
