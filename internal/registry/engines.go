// Package registry knows the fixed set of supported engines and models and
// which engines are actually runnable on this host. The tables are
// package-level and immutable after init.
package registry

import (
	"os/exec"
	"strings"
)

type EngineKind string

const (
	EngineCloud EngineKind = "cloud"
	EngineLocal EngineKind = "local"
)

type EngineDescriptor struct {
	ID           string
	Name         string
	Command      string
	Kind         EngineKind
	DefaultModel string
	Aliases      []string
}

// engines is ordered by detection priority: most capable general-purpose
// agents first, local inference next, narrower assistants last. The order is
// a deliberate capability preference, not alphabetical, and must stay
// deterministic.
var engines = []EngineDescriptor{
	{ID: "claude", Name: "Claude CLI", Command: "claude", Kind: EngineCloud, DefaultModel: "claude-sonnet-4-20250514", Aliases: []string{"claude-code"}},
	{ID: "opencode", Name: "OpenCode", Command: "opencode", Kind: EngineCloud, DefaultModel: "gpt-4o"},
	{ID: "codex", Name: "Codex CLI", Command: "codex", Kind: EngineCloud, DefaultModel: "deepseek-v3"},
	{ID: "ollama", Name: "Ollama", Command: "ollama", Kind: EngineLocal, DefaultModel: "qwen2.5-coder:7b"},
	{ID: "aider", Name: "Aider", Command: "aider", Kind: EngineCloud},
	{ID: "qwen", Name: "Qwen-Code CLI", Command: "qwen", Kind: EngineCloud},
	{ID: "cursor", Name: "Cursor Agent", Command: "cursor-agent", Kind: EngineCloud},
	{ID: "goose", Name: "Goose CLI", Command: "goose", Kind: EngineCloud},
	{ID: "copilot", Name: "GitHub Copilot CLI", Command: "copilot", Kind: EngineCloud},
}

// lookPath is swappable in tests so detection does not depend on the host.
var lookPath = exec.LookPath

// Engines returns the supported engines in detection priority order.
func Engines() []EngineDescriptor {
	return append([]EngineDescriptor{}, engines...)
}

// CanonicalEngineID resolves aliases (claude-code -> claude) and normalizes
// case/whitespace. Returns "" for an unknown engine.
func CanonicalEngineID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	for _, e := range engines {
		if e.ID == id {
			return e.ID
		}
		for _, a := range e.Aliases {
			if a == id {
				return e.ID
			}
		}
	}
	return ""
}

// EngineByID looks up a descriptor by id or alias.
func EngineByID(id string) (EngineDescriptor, bool) {
	canonical := CanonicalEngineID(id)
	if canonical == "" {
		return EngineDescriptor{}, false
	}
	for _, e := range engines {
		if e.ID == canonical {
			return e, true
		}
	}
	return EngineDescriptor{}, false
}

// IsInstalled reports whether the engine's executable resolves on PATH.
func IsInstalled(id string) bool {
	e, ok := EngineByID(id)
	if !ok {
		return false
	}
	_, err := lookPath(e.Command)
	return err == nil
}

// Detect returns the engine to use. An explicitly configured engine is
// trusted verbatim (no installed-check; a missing executable surfaces at
// invocation). With no configuration the engines are probed in priority
// order and the first installed one wins; "" means none is installed.
func Detect(configured string) string {
	if c := strings.TrimSpace(configured); c != "" {
		if canonical := CanonicalEngineID(c); canonical != "" {
			return canonical
		}
		return strings.ToLower(c)
	}
	for _, e := range engines {
		if _, err := lookPath(e.Command); err == nil {
			return e.ID
		}
	}
	return ""
}

// DefaultModel returns the default model id for an engine, or "" when the
// engine has no default (configured via its own config files).
func DefaultModel(engine string) string {
	e, ok := EngineByID(engine)
	if !ok {
		return ""
	}
	return e.DefaultModel
}
