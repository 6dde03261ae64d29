package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/medbot/internal/prompts"
)

// Completer sends one fixed-instruction request to the language model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// SpecialistInput is empty: every specialist tool forwards a hardcoded
// instruction, so the model has nothing to fill in.
type SpecialistInput struct{}

var SpecialistInputSchema = GenerateSchema[SpecialistInput]()

// Specialist builds the tool for one role. Calling it issues exactly one
// request with the role's instruction and returns the model's text as-is.
func Specialist(spec prompts.Specialist, c Completer) ToolDefinition {
	return ToolDefinition{
		Name:        spec.Tool,
		Description: spec.Description,
		InputSchema: SpecialistInputSchema,
		Function: func(ctx context.Context, _ json.RawMessage) (string, error) {
			text, err := c.Complete(ctx, spec.System, spec.Instruction)
			if err != nil {
				return "", fmt.Errorf("%s: %w", spec.Tool, err)
			}
			return text, nil
		},
	}
}
