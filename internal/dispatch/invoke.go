package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// promptMode says how an engine receives the prompt: as a trailing argument
// or on stdin. Engines that read confirmations from stdin get an empty
// reader in arg mode so they cannot block interactively.
type promptMode string

const (
	promptArg   promptMode = "arg"
	promptStdin promptMode = "stdin"
)

type invocation struct {
	exe  string
	args []string
	mode promptMode
}

// invocationFor builds the argv for one engine. Flags vary per engine:
// model flag, output flag, and the non-interactive flag each tool requires.
// The executable can be overridden via OMNAI_<ENGINE>_PATH.
func invocationFor(engineID string, model string) (invocation, bool) {
	withModel := func(args []string, flag string) []string {
		if strings.TrimSpace(model) == "" {
			return args
		}
		return append(args, flag, model)
	}
	switch engineID {
	case "claude":
		return invocation{
			exe:  envOr("OMNAI_CLAUDE_PATH", "claude"),
			args: withModel([]string{"-p", "--output-format", "text"}, "--model"),
			mode: promptArg,
		}, true
	case "opencode":
		return invocation{
			exe:  envOr("OMNAI_OPENCODE_PATH", "opencode"),
			args: withModel([]string{"run"}, "--model"),
			mode: promptArg,
		}, true
	case "codex":
		return invocation{
			exe:  envOr("OMNAI_CODEX_PATH", "codex"),
			args: withModel([]string{"exec", "--skip-git-repo-check"}, "-m"),
			mode: promptStdin,
		}, true
	case "ollama":
		m := model
		if m == "" {
			m = "qwen2.5-coder:7b"
		}
		return invocation{
			exe:  envOr("OMNAI_OLLAMA_PATH", "ollama"),
			args: []string{"run", m},
			mode: promptStdin,
		}, true
	case "aider":
		return invocation{
			exe:  envOr("OMNAI_AIDER_PATH", "aider"),
			args: withModel([]string{"--yes", "--no-auto-commits", "--message"}, "--model"),
			mode: promptArg,
		}, true
	case "qwen":
		return invocation{
			exe:  envOr("OMNAI_QWEN_PATH", "qwen"),
			args: withModel([]string{"-p"}, "--model"),
			mode: promptArg,
		}, true
	case "cursor":
		return invocation{
			exe:  envOr("OMNAI_CURSOR_PATH", "cursor-agent"),
			args: withModel([]string{"-p"}, "--model"),
			mode: promptArg,
		}, true
	case "goose":
		return invocation{
			exe:  envOr("OMNAI_GOOSE_PATH", "goose"),
			args: []string{"run", "-t"},
			mode: promptArg,
		}, true
	case "copilot":
		return invocation{
			exe:  envOr("OMNAI_COPILOT_PATH", "copilot"),
			args: withModel([]string{"-p"}, "--model"),
			mode: promptArg,
		}, true
	default:
		return invocation{}, false
	}
}

func envOr(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// invokeResult is the raw subprocess outcome before classification.
type invokeResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
	TimedOut bool
	RunErr   error
}

// runCommand is swappable in tests.
var runCommand = runCommandReal

// runCommandReal invokes the engine subprocess with a hard timeout. On
// expiry the process is killed and the result is marked TimedOut.
func runCommandReal(ctx context.Context, inv invocation, prompt string, timeout time.Duration, dir string) invokeResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := inv.args
	if inv.mode == promptArg && prompt != "" {
		args = append(append([]string{}, args...), prompt)
	}
	cmd := exec.CommandContext(ctx, inv.exe, args...)
	cmd.Dir = dir
	if inv.mode == promptStdin {
		cmd.Stdin = strings.NewReader(prompt)
	} else {
		cmd.Stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	} else if runErr != nil {
		exitCode = -1
	}
	return invokeResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Elapsed:  elapsed,
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
		RunErr:   runErr,
	}
}

func isExecNotFound(err error) bool {
	if err == nil {
		return false
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "executable file not found") || strings.Contains(text, "no such file or directory")
}
