// Package runner drives one specialist agent: the model bound to its tool.
//
// Invariant:
//   - tool_use and the corresponding tool_result are kept adjacent within a turn.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
