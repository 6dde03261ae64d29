// Package windowing selects which part of a conversation is sent to the model.
//
// Messages are grouped into atomic units first: an assistant tool_use message
// and the user tool_result message answering it form one pair, everything else
// is a singleton. A window is the newest run of whole groups that fits the
// token budget, so a tool_use is never sent without its tool_result.
//
// The in-process conversation log is never modified; only the outgoing request
// is narrowed.
package windowing
