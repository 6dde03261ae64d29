package telemetry

import (
	"context"

	"github.com/petasbytes/medbot/internal/metrics"
)

// EmitLocalFeatures records size features of the user's input for a turn.
func EmitLocalFeatures(ctx context.Context, user string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"user":             metrics.CountFeatures(user).Fields(),
	})
}
