package windowing

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive
	End   int // exclusive
}

var logger = slog.New(slog.DiscardHandler)

// SetLogger routes exclusion diagnostics to l at debug level.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l.With("component", "windowing")
	}
}

func debugf(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// GroupBlocks groups messages into atomic units that preserve tool-use pairs.
// A pair is exactly two adjacent messages, assistant(tool_use...) then
// user(tool_result...), where:
//   - all tool_result blocks precede any other block in the user message,
//   - the results cover every tool_use id, and carry no extra ids.
//
// Errored tool results group the same as successful ones.
func GroupBlocks(msgs []anthropic.MessageParam) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); i++ {
		if reason, ok := pairsWithNext(msgs, i); ok {
			groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
			i++
			continue
		} else if reason != "" {
			debugf("exclude pair", "reason", reason, "idx", i)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
	}
	return groups
}

// pairsWithNext reports whether msgs[i] and msgs[i+1] form a valid pair.
// A non-empty reason explains why an assistant tool_use was left unpaired.
func pairsWithNext(msgs []anthropic.MessageParam, i int) (reason string, ok bool) {
	if msgs[i].Role != anthropic.MessageParamRoleAssistant {
		return "", false
	}
	useIDs := toolUseIDs(msgs[i])
	if len(useIDs) == 0 {
		return "", false
	}
	if i+1 >= len(msgs) || msgs[i+1].Role != anthropic.MessageParamRoleUser {
		return "not_followed_by_user", false
	}
	resultIDs, ordered := leadingToolResultIDs(msgs[i+1])
	switch {
	case !ordered:
		return "ordering_invalid", false
	case !covers(resultIDs, useIDs):
		return "missing_results", false
	case !covers(useIDs, resultIDs):
		return "extra_results", false
	}
	return "", true
}

func toolUseIDs(m anthropic.MessageParam) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, blk := range m.Content {
		if tu := blk.OfToolUse; tu != nil && tu.ID != "" {
			ids[tu.ID] = struct{}{}
		}
	}
	return ids
}

// leadingToolResultIDs collects tool_result ids from the leading segment of a
// user message. ordered is false when a tool_result follows any other block.
func leadingToolResultIDs(m anthropic.MessageParam) (ids map[string]struct{}, ordered bool) {
	ids = make(map[string]struct{})
	seenOther := false
	for _, blk := range m.Content {
		tr := blk.OfToolResult
		if tr == nil {
			seenOther = true
			continue
		}
		if seenOther {
			return ids, false
		}
		if tr.ToolUseID != "" {
			ids[tr.ToolUseID] = struct{}{}
		}
	}
	return ids, true
}

// covers reports whether every id in want is present in have.
func covers(have, want map[string]struct{}) bool {
	for id := range want {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}
