package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/medbot/internal/provider"
	"github.com/petasbytes/medbot/internal/telemetry"
	"github.com/petasbytes/medbot/internal/windowing"
	"github.com/petasbytes/medbot/memory"
	"github.com/petasbytes/medbot/tools"
)

const (
	DefaultBudget   = 8000
	DefaultMaxSteps = 4
)

// ErrWindowEmpty is returned when no user message fits the token budget.
var ErrWindowEmpty = windowing.ErrWindowEmpty

type Runner struct {
	Client    *anthropic.Client
	Tools     []tools.ToolDefinition
	Name      string
	Model     anthropic.Model
	System    string
	MaxTokens int64
	Budget    int
	MaxSteps  int
	Logger    *slog.Logger
}

func New(client *anthropic.Client, toolDefs []tools.ToolDefinition, opts ...Option) *Runner {
	r := &Runner{
		Client:    client,
		Tools:     toolDefs,
		Model:     provider.DefaultModel,
		MaxTokens: provider.DefaultMaxTokens,
		Budget:    DefaultBudget,
		MaxSteps:  DefaultMaxSteps,
		Logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) toolParams() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.Tools))
	for _, t := range r.Tools {
		out = append(out, t.Param())
	}
	return out
}

// Run answers history with this agent. It loops until the model stops
// calling tools or MaxSteps is reached, then returns the text of the last
// assistant message. If that message has no text, the last tool output is
// returned instead; an empty string means the agent produced nothing.
func (r *Runner) Run(ctx context.Context, history []memory.Message) (string, error) {
	ctx, _ = telemetry.EnsureTurnID(ctx)
	conv := ToParams(history)

	var reply, lastToolOutput string
	for step := 0; step < r.MaxSteps; step++ {
		msg, toolResults, err := r.RunOneStep(ctx, conv)
		if err != nil {
			return "", err
		}
		conv = append(conv, msg.ToParam())
		reply = provider.Text(msg)
		if len(toolResults) == 0 {
			break
		}
		if out := resultText(toolResults); out != "" {
			lastToolOutput = out
		}
		conv = append(conv, anthropic.NewUserMessage(toolResults...))
	}
	if reply == "" {
		reply = lastToolOutput
	}
	if reply == "" {
		r.Logger.Warn(fmt.Sprintf("%s agent did not return a message.", r.Name))
	}
	return reply, nil
}

// RunOneStep sends the windowed conversation and executes any tool calls,
// returning the tool results to append as the next user message.
func (r *Runner) RunOneStep(ctx context.Context, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	window, stats := windowing.PrepareSendWindow(conv, r.Budget, windowing.HeuristicCounter{})
	fields := stats.Fields()
	fields["turn_id"] = turnID
	fields["model"] = string(r.Model)
	fields["agent"] = r.Name
	telemetry.Emit("window_prepared", fields)

	r.Logger.Debug("window prepared",
		"agent", r.Name,
		"budget", stats.Budget,
		"est_total", stats.Total,
		"groups_in", stats.IncludedGroups,
		"groups_skip", stats.SkippedGroups,
	)

	if stats.OverBudgetNewest {
		return nil, nil, ErrWindowEmpty
	}
	window = windowing.LeadWithUser(window)
	if len(window) == 0 {
		return nil, nil, ErrWindowEmpty
	}

	params := anthropic.MessageNewParams{
		Model:     r.Model,
		MaxTokens: r.MaxTokens,
		Messages:  window,
		Tools:     r.toolParams(),
	}
	if r.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.System}}
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	toolResults := []anthropic.ContentBlockParamUnion{}
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			input := json.RawMessage(v.JSON.Input.Raw())
			toolResults = append(toolResults, r.execTool(ctx, v.ID, v.Name, input))
		}
	}
	return msg, toolResults, nil
}

func (r *Runner) execTool(ctx context.Context, id, name string, input json.RawMessage) anthropic.ContentBlockParamUnion {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()

	emit := func(outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"agent":       r.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(input),
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}

	def := tools.Find(r.Tools, name)
	if def == nil {
		emit(0, "tool not found")
		body := tools.ToolError{Code: tools.CodeToolNotFound, Message: "no tool named " + name}
		return anthropic.NewToolResultBlock(id, body.Error(), true)
	}

	resp, err := def.Function(ctx, input)
	if err != nil {
		// Telemetry gets a generic string; the model gets the detail.
		emit(0, "tool error")
		r.Logger.Error("tool failed", "tool", name, "err", err)
		body := tools.ToolError{Code: tools.CodeToolFailed, Message: err.Error()}
		return anthropic.NewToolResultBlock(id, body.Error(), true)
	}
	emit(len(resp), "")
	return anthropic.NewToolResultBlock(id, resp, false)
}

// resultText returns the text of the last successful tool_result in blocks.
func resultText(blocks []anthropic.ContentBlockParamUnion) string {
	out := ""
	for _, b := range blocks {
		tr := b.OfToolResult
		if tr == nil || tr.IsError.Value {
			continue
		}
		for _, c := range tr.Content {
			if c.OfText != nil && c.OfText.Text != "" {
				out = c.OfText.Text
			}
		}
	}
	return out
}

// ToParams converts the chat log into request messages, skipping empty text.
func ToParams(history []memory.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		if m.Text == "" {
			continue
		}
		if m.Role == memory.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
	}
	return out
}
