package workflow

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/medbot/internal/prompts"
	"github.com/petasbytes/medbot/internal/provider"
	"github.com/petasbytes/medbot/internal/route"
	"github.com/petasbytes/medbot/internal/runner"
	"github.com/petasbytes/medbot/memory"
	"github.com/petasbytes/medbot/tools"
)

// Settings tunes the specialist agents built by Specialists.
type Settings struct {
	Model     anthropic.Model
	MaxTokens int64
	Budget    int
	MaxSteps  int
	Logger    *slog.Logger
}

func (s Settings) runnerOptions() []runner.Option {
	var opts []runner.Option
	if s.Model != "" {
		opts = append(opts, runner.WithModel(s.Model))
	}
	if s.MaxTokens > 0 {
		opts = append(opts, runner.WithMaxTokens(s.MaxTokens))
	}
	if s.Budget > 0 {
		opts = append(opts, runner.WithBudget(s.Budget))
	}
	if s.MaxSteps > 0 {
		opts = append(opts, runner.WithMaxSteps(s.MaxSteps))
	}
	return append(opts, runner.WithLogger(s.Logger))
}

// Specialists builds one node per catalog entry. Each node is an agent bound
// to its single tool; the tool forwards the entry's fixed instruction.
func Specialists(cat *prompts.Catalog, client *anthropic.Client, s Settings) map[route.Route]Node {
	completer := &provider.Completer{Client: client, Model: s.Model, MaxTokens: s.MaxTokens}
	registry := tools.Registry(cat, completer)
	nodes := make(map[route.Route]Node, len(registry))
	for _, m := range route.Members {
		spec, ok := cat.Specialist(m)
		if !ok {
			continue
		}
		def := tools.Find(registry, spec.Tool)
		if def == nil {
			continue
		}
		opts := append(s.runnerOptions(),
			runner.WithName(string(m)),
			runner.WithSystem(cat.AgentSystemFor(spec)),
		)
		nodes[m] = agentNode(string(m), runner.New(client, []tools.ToolDefinition{*def}, opts...))
	}
	return nodes
}

func agentNode(name string, r *runner.Runner) Node {
	return func(ctx context.Context, history []memory.Message) (memory.Message, error) {
		text, err := r.Run(ctx, history)
		if err != nil {
			return memory.Message{}, err
		}
		return memory.AgentMessage(name, text), nil
	}
}
