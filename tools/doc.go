// Package tools defines tool contracts and the specialist tool implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Specialist tools: one per role, each forwarding a fixed instruction to
//     the language model and returning its raw text.
package tools
