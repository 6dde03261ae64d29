// Package telemetry writes privacy-preserving JSONL events about each turn:
// routing decisions, tool executions, reply sizes. Message text is never
// recorded; only sizes, labels, durations and turn IDs.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/sjson"
)

const eventsFile = "events.jsonl"

var writeMu sync.Mutex

// Emit appends a single JSON line to <ArtifactsDir>/events.jsonl when
// observation is enabled. The line carries fields plus "time" (RFC3339Nano)
// and "event" (name); the caller's map is left untouched.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}

	b, err := json.Marshal(fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}
	if b, err = sjson.SetBytes(b, "time", time.Now().UTC().Format(time.RFC3339Nano)); err == nil {
		b, err = sjson.SetBytes(b, "event", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: stamp %s: %v\n", name, err)
		return
	}

	dir := ArtifactsDir()
	writeMu.Lock()
	defer writeMu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}
	path := filepath.Join(dir, eventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}
