package tools

import "encoding/json"

// Codes reported in ToolError.Code.
const (
	CodeToolNotFound = "TOOL_NOT_FOUND"
	CodeToolFailed   = "TOOL_FAILED"
)

// ToolError is the machine-readable body of a failed tool_result.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns compact single-line JSON, ready for a tool_result payload.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}
