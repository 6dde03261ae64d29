package tools

import (
	"github.com/petasbytes/medbot/internal/prompts"
	"github.com/petasbytes/medbot/internal/route"
)

// Registry returns the five specialist tools in member order.
func Registry(cat *prompts.Catalog, c Completer) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(route.Members))
	for _, m := range route.Members {
		if spec, ok := cat.Specialist(m); ok {
			defs = append(defs, Specialist(spec, c))
		}
	}
	return defs
}
