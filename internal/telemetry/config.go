package telemetry

import (
	"os"
	"sync"
)

const defaultArtifactsDir = ".medbot"

// Settings controls JSONL emission. Environment variables win over Settings
// so a single run can be observed without touching the config file:
//   - MEDBOT_OBSERVE_JSON=1|0
//   - MEDBOT_ARTIFACTS_DIR=<dir>
type Settings struct {
	Observe bool
	Dir     string
}

var (
	mu       sync.RWMutex
	settings = Settings{Dir: defaultArtifactsDir}
)

// Configure replaces the process-wide telemetry settings.
func Configure(s Settings) {
	if s.Dir == "" {
		s.Dir = defaultArtifactsDir
	}
	mu.Lock()
	settings = s
	mu.Unlock()
}

// ObserveEnabled reports whether events are written.
func ObserveEnabled() bool {
	if v, ok := os.LookupEnv("MEDBOT_OBSERVE_JSON"); ok && v != "" {
		return v == "1"
	}
	mu.RLock()
	defer mu.RUnlock()
	return settings.Observe
}

// ArtifactsDir is the directory holding events.jsonl.
func ArtifactsDir() string {
	if v := os.Getenv("MEDBOT_ARTIFACTS_DIR"); v != "" {
		return v
	}
	mu.RLock()
	defer mu.RUnlock()
	return settings.Dir
}
