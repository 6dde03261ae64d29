// Package memory holds the in-process conversation log.
//
// Model:
//   - One ordered sequence of messages (role, optional speaker name, text).
//   - The log only grows; nothing is pruned, deduplicated or indexed.
//   - Nothing is written to disk; the log lives for one process.
package memory
