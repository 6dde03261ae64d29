// Package supervisor picks which specialist acts next, or FINISH.
//
// The model is forced to call a single "route" tool whose input schema
// enumerates the labels, so the answer arrives as structured JSON:
//
//	{"next": "GreetingAgent"}
package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/medbot/internal/prompts"
	"github.com/petasbytes/medbot/internal/provider"
	"github.com/petasbytes/medbot/internal/route"
	"github.com/petasbytes/medbot/internal/runner"
	"github.com/petasbytes/medbot/internal/telemetry"
	"github.com/petasbytes/medbot/internal/windowing"
	"github.com/petasbytes/medbot/memory"
	"github.com/petasbytes/medbot/tools"
)

// ToolName is the name of the forced routing tool.
const ToolName = "route"

// MissingNextMessage is printed when the model's answer carries no usable label.
const MissingNextMessage = "Error: 'next' not found in operator response."

// RouteInput is the routing tool's input.
type RouteInput struct {
	Next string `json:"next" jsonschema_description:"The role that should act next, or FINISH." jsonschema:"enum=GreetingAgent,enum=FarewellAgent,enum=MedicineAgent,enum=MedicalHospitalAgent,enum=MedicalDepartmentAgent,enum=FINISH"`
}

var routeTool = tools.ToolDefinition{
	Name:        ToolName,
	Description: "Select the next role.",
	InputSchema: tools.GenerateSchema[RouteInput](),
}

type Supervisor struct {
	Client    *anthropic.Client
	Catalog   *prompts.Catalog
	Model     anthropic.Model
	MaxTokens int64
	Budget    int
	// Out receives the "Operator selected" line.
	Out    io.Writer
	Logger *slog.Logger
}

type Option func(*Supervisor)

func WithModel(m anthropic.Model) Option { return func(s *Supervisor) { s.Model = m } }

func WithMaxTokens(n int64) Option { return func(s *Supervisor) { s.MaxTokens = n } }

func WithBudget(n int) Option { return func(s *Supervisor) { s.Budget = n } }

func WithOutput(w io.Writer) Option {
	return func(s *Supervisor) {
		if w != nil {
			s.Out = w
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.Logger = l
		}
	}
}

func New(client *anthropic.Client, cat *prompts.Catalog, opts ...Option) *Supervisor {
	s := &Supervisor{
		Client:    client,
		Catalog:   cat,
		Model:     provider.DefaultModel,
		MaxTokens: provider.DefaultMaxTokens,
		Budget:    runner.DefaultBudget,
		Out:       io.Discard,
		Logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next asks the model who should act on history. An answer without a
// recognized label yields route.Finish; transport and API errors are returned.
func (s *Supervisor) Next(ctx context.Context, history []memory.Message) (route.Route, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	window, stats := windowing.PrepareSendWindow(runner.ToParams(history), s.Budget, windowing.HeuristicCounter{})
	fields := stats.Fields()
	fields["turn_id"] = turnID
	fields["model"] = string(s.Model)
	fields["agent"] = "Operator"
	telemetry.Emit("window_prepared", fields)
	if stats.OverBudgetNewest {
		return "", windowing.ErrWindowEmpty
	}
	window = windowing.LeadWithUser(window)
	window = append(window, anthropic.NewUserMessage(anthropic.NewTextBlock(s.Catalog.RouteInstruction())))

	msg, err := s.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:      s.Model,
		MaxTokens:  s.MaxTokens,
		System:     []anthropic.TextBlockParam{{Text: s.Catalog.SupervisorSystem()}},
		Messages:   window,
		Tools:      []anthropic.ToolUnionParam{routeTool.Param()},
		ToolChoice: anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: ToolName}},
	})
	if err != nil {
		return "", fmt.Errorf("supervisor: %w", err)
	}

	next, ok := parseNext(msg)
	if !ok {
		fmt.Fprintln(s.Out, MissingNextMessage)
		s.Logger.Warn("routing fell back to FINISH", "stop_reason", string(msg.StopReason))
		next = route.Finish
	} else {
		fmt.Fprintf(s.Out, "Operator selected: %s\n", next)
	}
	telemetry.Emit("route_selected", map[string]any{
		"turn_id":  turnID,
		"route":    string(next),
		"fallback": !ok,
	})
	return next, nil
}

// parseNext reads the "next" field of the route tool call in msg.
func parseNext(msg *anthropic.Message) (route.Route, bool) {
	for _, block := range msg.Content {
		v, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok || v.Name != ToolName {
			continue
		}
		next := gjson.Get(v.JSON.Input.Raw(), "next")
		if !next.Exists() || next.Type != gjson.String {
			return "", false
		}
		return route.Parse(next.String())
	}
	return "", false
}
