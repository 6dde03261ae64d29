package telemetry_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/petasbytes/medbot/internal/telemetry"
)

func TestTurnID_RoundTrip(t *testing.T) {
	ctx := telemetry.WithTurnID(context.Background(), "turn-123")
	got, ok := telemetry.TurnIDFromContext(ctx)
	if !ok || got != "turn-123" {
		t.Fatalf("want turn-123,true; got %q,%v", got, ok)
	}
}

func TestTurnID_EmptyIDRejectedOnRead(t *testing.T) {
	ctx := telemetry.WithTurnID(context.Background(), "")
	got, ok := telemetry.TurnIDFromContext(ctx)
	if ok || got != "" {
		t.Fatalf("want empty,false; got %q,%v", got, ok)
	}
}

func TestTurnID_ParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	child := telemetry.WithTurnID(parent, "t1")
	cancel()

	select {
	case <-child.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("child context did not observe parent cancellation")
	}
}

func TestTurnID_LastWriteWins(t *testing.T) {
	ctx := telemetry.WithTurnID(telemetry.WithTurnID(context.Background(), "t1"), "t2")
	got, ok := telemetry.TurnIDFromContext(ctx)
	if !ok || got != "t2" {
		t.Fatalf("want t2,true; got %q,%v", got, ok)
	}
}

func TestTurnID_MissingValue(t *testing.T) {
	got, ok := telemetry.TurnIDFromContext(context.Background())
	if ok || got != "" {
		t.Fatalf("want empty,false; got %q,%v", got, ok)
	}
}

func TestEnsureTurnID_KeepsExisting(t *testing.T) {
	ctx := telemetry.WithTurnID(context.Background(), "turn-keep")
	_, id := telemetry.EnsureTurnID(ctx)
	if id != "turn-keep" {
		t.Fatalf("want turn-keep, got %q", id)
	}
}

func TestEnsureTurnID_GeneratesUnique(t *testing.T) {
	ctx1, id1 := telemetry.EnsureTurnID(context.Background())
	_, id2 := telemetry.EnsureTurnID(context.Background())
	if !strings.HasPrefix(id1, "turn-") || id1 == id2 {
		t.Fatalf("expected distinct turn- ids, got %q and %q", id1, id2)
	}
	if got, _ := telemetry.TurnIDFromContext(ctx1); got != id1 {
		t.Fatalf("context does not carry generated id: %q vs %q", got, id1)
	}
}
