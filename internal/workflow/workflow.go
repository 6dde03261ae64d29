// Package workflow wires the supervisor to the specialists: each user turn
// is classified once and dispatched to at most one node.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/petasbytes/medbot/internal/route"
	"github.com/petasbytes/medbot/internal/telemetry"
	"github.com/petasbytes/medbot/memory"
)

// Router chooses the next route for history.
type Router interface {
	Next(ctx context.Context, history []memory.Message) (route.Route, error)
}

// Node answers history as one specialist. A zero Message means no reply.
type Node func(ctx context.Context, history []memory.Message) (memory.Message, error)

// Result describes one step.
type Result struct {
	Route route.Route
	// Reply is set when a node answered with text.
	Reply    memory.Message
	Replied  bool
	Finished bool
}

type Workflow struct {
	router Router
	nodes  map[route.Route]Node
}

func New(router Router, nodes map[route.Route]Node) *Workflow {
	return &Workflow{router: router, nodes: nodes}
}

// Step runs one turn over conv: the user message already appended is passed
// through unchanged, the router picks a route, and the matching node's reply
// (if any) is appended. FINISH and labels without a node append nothing.
func (w *Workflow) Step(ctx context.Context, conv *memory.Conversation) (Result, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	next, err := w.router.Next(ctx, conv.Messages())
	if err != nil {
		return Result{}, err
	}
	res := Result{Route: next}

	node, ok := w.nodes[next]
	if !ok || next == route.Finish {
		res.Finished = true
		return res, nil
	}

	start := time.Now()
	reply, err := node(ctx, conv.Messages())
	if err != nil {
		return res, fmt.Errorf("%s: %w", next, err)
	}
	telemetry.Emit("agent_reply", map[string]any{
		"turn_id":     turnID,
		"agent":       string(next),
		"duration_ms": time.Since(start).Milliseconds(),
		"reply_size":  len(reply.Text),
		"empty":       reply.Text == "",
	})
	if reply.Text == "" {
		return res, nil
	}
	if reply.Name == "" {
		reply.Name = string(next)
	}
	conv.Append(reply)
	res.Reply = reply
	res.Replied = true
	return res, nil
}
