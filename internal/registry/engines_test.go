package registry

import (
	"errors"
	"testing"
)

// stubLookPath makes only the named commands appear installed.
func stubLookPath(t *testing.T, installed ...string) {
	t.Helper()
	orig := lookPath
	lookPath = func(cmd string) (string, error) {
		for _, c := range installed {
			if c == cmd {
				return "/usr/local/bin/" + cmd, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestDetect_NoConfiguration_FirstInstalledInPriorityOrder(t *testing.T) {
	stubLookPath(t, "codex", "ollama")

	if got := Detect(""); got != "codex" {
		t.Fatalf("Detect: got %q want %q", got, "codex")
	}
}

func TestDetect_PrefersClaudeWhenInstalled(t *testing.T) {
	stubLookPath(t, "ollama", "claude", "opencode")

	if got := Detect(""); got != "claude" {
		t.Fatalf("Detect: got %q want %q", got, "claude")
	}
}

func TestDetect_NothingInstalled_Empty(t *testing.T) {
	stubLookPath(t)

	if got := Detect(""); got != "" {
		t.Fatalf("Detect: got %q want empty", got)
	}
}

func TestDetect_ExplicitEngineTrustedWithoutProbe(t *testing.T) {
	stubLookPath(t) // nothing installed

	if got := Detect("codex"); got != "codex" {
		t.Fatalf("Detect: got %q want %q", got, "codex")
	}
}

func TestCanonicalEngineID_ResolvesAliases(t *testing.T) {
	cases := map[string]string{
		"claude":      "claude",
		"claude-code": "claude",
		"CLAUDE":      "claude",
		"  opencode ": "opencode",
		"cursor":      "cursor",
		"nonsense":    "",
	}
	for in, want := range cases {
		if got := CanonicalEngineID(in); got != want {
			t.Fatalf("CanonicalEngineID(%q): got %q want %q", in, got, want)
		}
	}
}

func TestIsInstalled_ProbesEngineCommand(t *testing.T) {
	stubLookPath(t, "cursor-agent")

	if !IsInstalled("cursor") {
		t.Fatal("IsInstalled(cursor): got false want true")
	}
	if IsInstalled("claude") {
		t.Fatal("IsInstalled(claude): got true want false")
	}
	if IsInstalled("no-such-engine") {
		t.Fatal("IsInstalled(no-such-engine): got true want false")
	}
}

func TestDefaultModel_KnownAndUnknownEngines(t *testing.T) {
	if got := DefaultModel("claude"); got == "" {
		t.Fatal("DefaultModel(claude): got empty want a default")
	}
	if got := DefaultModel("no-such-engine"); got != "" {
		t.Fatalf("DefaultModel(no-such-engine): got %q want empty", got)
	}
}
