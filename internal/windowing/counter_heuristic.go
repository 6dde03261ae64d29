package windowing

import (
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m anthropic.MessageParam) int
	CountGroup(g Group, all []anthropic.MessageParam) int
}

// HeuristicCounter is a deterministic estimator:
//   - text blocks cost their rune count,
//   - tool_result blocks cost the runes of their text payload,
//   - every block adds a fixed overhead.
type HeuristicCounter struct{}

// blockOverhead is the fixed per-block cost.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m anthropic.MessageParam) int {
	total := 0
	for _, blk := range m.Content {
		total += countBlock(blk)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []anthropic.MessageParam) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(blk anthropic.ContentBlockParamUnion) int {
	if tb := blk.OfText; tb != nil {
		return utf8.RuneCountInString(tb.Text) + blockOverhead
	}
	if tr := blk.OfToolResult; tr != nil {
		n := 0
		for _, c := range tr.Content {
			if ct := c.OfText; ct != nil {
				n += utf8.RuneCountInString(ct.Text)
			}
		}
		return n + blockOverhead
	}
	// tool_use, images, documents: overhead only.
	return blockOverhead
}
