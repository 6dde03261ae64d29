package windowing

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
)

// ErrWindowEmpty is returned by callers when nothing sendable fits the budget.
var ErrWindowEmpty = errors.New("windowing: newest group exceeds token budget; raise token_budget")

// Stats summarizes the result of window preparation.
//
//   - Total: estimated tokens for included groups only.
//   - Budget: the input token budget used.
//   - IncludedGroups / SkippedGroups: groups sent and left out.
//   - OverBudgetNewest: the newest group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// Fields flattens s for a window_prepared telemetry event.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"budget":             s.Budget,
		"total_estimated":    s.Total,
		"included_groups":    s.IncludedGroups,
		"skipped_groups":     s.SkippedGroups,
		"over_budget_newest": s.OverBudgetNewest,
	}
}

// PrepareSendWindow returns the newest suffix of msgs (oldest→newest) made of
// whole groups whose estimated cost fits within budget.
//
// If the newest group alone exceeds budget, or budget ≤ 0, the window is empty
// and OverBudgetNewest is set (when any group exists).
func PrepareSendWindow(msgs []anthropic.MessageParam, budget int, c TokenCounter) ([]anthropic.MessageParam, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}
	groups := GroupBlocks(msgs)
	stats := Stats{Budget: budget, SkippedGroups: len(groups)}

	if budget <= 0 {
		stats.OverBudgetNewest = true
		return nil, stats
	}

	start := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if stats.Total+cost > budget {
			if stats.IncludedGroups == 0 {
				debugf("newest group over budget", "budget", budget, "cost", cost)
				stats.OverBudgetNewest = true
			}
			break
		}
		stats.Total += cost
		stats.IncludedGroups++
		start = gi
	}
	stats.SkippedGroups = len(groups) - stats.IncludedGroups

	if stats.IncludedGroups == 0 {
		return nil, stats
	}
	return msgs[groups[start].Start:], stats
}

// LeadWithUser drops leading messages until the window opens with a user
// message that is not a bare tool_result, as the Messages API requires.
func LeadWithUser(window []anthropic.MessageParam) []anthropic.MessageParam {
	for i, m := range window {
		if m.Role != anthropic.MessageParamRoleUser {
			continue
		}
		if len(m.Content) > 0 && m.Content[0].OfToolResult != nil {
			continue
		}
		return window[i:]
	}
	return nil
}
