package dispatch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// progressLog appends ndjson events to <state dir>/progress.ndjson. Writes
// are best-effort observability: a failed append warns on stderr and never
// fails the dispatch.
type progressLog struct {
	mu   sync.Mutex
	path string
}

func newProgressLog(stateDir string) *progressLog {
	return &progressLog{path: filepath.Join(stateDir, "progress.ndjson")}
}

func (p *progressLog) append(ev map[string]any) {
	if p == nil || p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ev["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnai: encode progress event: %v\n", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "omnai: create state dir: %v\n", err)
		return
	}
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnai: open %s: %v\n", p.path, err)
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "omnai: write %s: %v\n", p.path, err)
	}
}
