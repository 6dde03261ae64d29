package windowing_test

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/petasbytes/medbot/internal/windowing"
)

// T builds a text block.
func T(text string) anthropic.ContentBlockParamUnion {
	return anthropic.NewTextBlock(text)
}

// TU builds a tool_use block.
func TU(id string) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{ID: id, Name: "greeting_tool"}}
}

// TR builds a tool_result block without payload.
func TR(id string, isErr bool) anthropic.ContentBlockParamUnion {
	tr := anthropic.ToolResultBlockParam{ToolUseID: id}
	if isErr {
		tr.IsError = param.NewOpt(true)
	}
	return anthropic.ContentBlockParamUnion{OfToolResult: &tr}
}

// TRString builds a tool_result block with a text payload.
func TRString(id, s string) anthropic.ContentBlockParamUnion {
	return anthropic.NewToolResultBlock(id, s, false)
}

func Asst(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: blocks}
}

func User(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{Role: anthropic.MessageParamRoleUser, Content: blocks}
}

func single(start int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupSingleton, Start: start, End: start + 1}
}

func pair(start int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupPair, Start: start, End: start + 2}
}

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
