// Package dispatch composes engine detection, model validation, subprocess
// invocation, error classification, and retry into a single "run a prompt"
// façade. The context health tracker is deliberately not wired in here; it
// is a separate observability path the caller opts into.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omnai-sh/omnai/internal/classify"
	"github.com/omnai-sh/omnai/internal/config"
	"github.com/omnai-sh/omnai/internal/registry"
	"github.com/omnai-sh/omnai/internal/retry"
)

type Request struct {
	Prompt     string
	Engine     string
	Model      string
	Timeout    time.Duration
	WorkingDir string
	Retry      bool
}

type Result struct {
	Stdout   string
	ExitCode int
	Elapsed  time.Duration
	Engine   string
	Model    string
}

// Error is the classified failure surfaced to callers. Every failure
// carries a kind and a remediation suggestion; Candidates carries ranked
// model alternatives when validation produced them.
type Error struct {
	Kind       classify.Kind
	Message    string
	Suggestion string
	Candidates []registry.ModelConfig
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind classify.Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Suggestion: classify.Suggestion(kind)}
}

type Dispatcher struct {
	Settings config.Settings

	progress *progressLog
}

func New(settings config.Settings) *Dispatcher {
	return &Dispatcher{
		Settings: settings,
		progress: newProgressLog(settings.StateDir),
	}
}

// Run executes one prompt synchronously. Ordering is fixed: detect engine,
// validate model, invoke, classify, optionally retry. Later stages depend on
// the identities resolved by earlier ones.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Result, error) {
	engineID, model, err := d.resolve(req)
	if err != nil {
		return Result{}, err
	}

	d.progress.append(map[string]any{
		"event":  "dispatch_start",
		"engine": engineID,
		"model":  model,
	})

	var res Result
	attempt := func() error {
		r, err := d.invokeOnce(ctx, engineID, model, req)
		if err != nil {
			return err
		}
		res = r
		return nil
	}

	if !req.Retry {
		err = attempt()
	} else {
		policy := retry.Policy{
			MaxAttempts:       d.Settings.MaxAttempts,
			InitialDelay:      d.Settings.InitialDelay,
			BackoffMultiplier: d.Settings.BackoffMultiplier,
			MaxDelay:          60 * time.Second,
			OnRetry: func(err error, attempt int, delay time.Duration) {
				d.progress.append(map[string]any{
					"event":    "dispatch_retry",
					"engine":   engineID,
					"attempt":  attempt,
					"delay_ms": delay.Milliseconds(),
					"error":    err.Error(),
				})
			},
		}
		err = retry.Run(ctx, policy, attempt, kindOf)
	}

	if err != nil {
		d.progress.append(map[string]any{
			"event":  "dispatch_fail",
			"engine": engineID,
			"error":  err.Error(),
		})
		return Result{}, err
	}
	d.progress.append(map[string]any{
		"event":      "dispatch_done",
		"engine":     engineID,
		"exit_code":  res.ExitCode,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
	return res, nil
}

// resolve performs engine detection and model validation for a request.
func (d *Dispatcher) resolve(req Request) (engineID string, model string, err error) {
	requested := strings.TrimSpace(req.Engine)
	if requested == "" {
		requested = d.Settings.Engine
	}
	if requested != "" && registry.CanonicalEngineID(requested) == "" {
		return "", "", newError(classify.KindEngineUnknown, fmt.Sprintf("unknown engine %q", requested))
	}
	engineID = registry.Detect(requested)
	if engineID == "" {
		return "", "", newError(classify.KindEngineNotInstalled, "no supported AI engine found on PATH")
	}

	model = strings.TrimSpace(req.Model)
	if model == "" {
		model = d.Settings.Model
	}
	if model == "" {
		// Deliberate bypass: no model requested means "engine default",
		// which is not validated against the table.
		return engineID, registry.DefaultModel(engineID), nil
	}
	cfg, verr := registry.Validate(model, engineID)
	if verr != nil {
		ve := verr.(*registry.ValidationError)
		return "", "", &Error{
			Kind:       ve.Kind,
			Message:    ve.Message,
			Suggestion: classify.Suggestion(ve.Kind),
			Candidates: ve.Candidates,
		}
	}
	return engineID, cfg.Model, nil
}

// invokeOnce runs the subprocess a single time and classifies any failure.
func (d *Dispatcher) invokeOnce(ctx context.Context, engineID string, model string, req Request) (Result, error) {
	inv, ok := invocationFor(engineID, model)
	if !ok {
		return Result{}, newError(classify.KindEngineUnknown, fmt.Sprintf("no invocation mapping for engine %q", engineID))
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = d.Settings.Timeout
	}
	raw := runCommand(ctx, inv, req.Prompt, timeout, req.WorkingDir)

	if raw.TimedOut {
		return Result{}, newError(classify.KindTimeout, fmt.Sprintf("%s did not finish within %s", engineID, timeout))
	}
	if raw.RunErr != nil && isExecNotFound(raw.RunErr) {
		return Result{}, newError(classify.KindEngineNotInstalled, fmt.Sprintf("%s executable not found: %v", engineID, raw.RunErr))
	}
	if raw.ExitCode != 0 {
		combined := raw.Stdout + "\n" + raw.Stderr
		if raw.RunErr != nil {
			combined += "\n" + raw.RunErr.Error()
		}
		kind := classify.Classify(engineID, combined)
		msg := firstNonEmptyLine(raw.Stderr)
		if msg == "" {
			msg = firstNonEmptyLine(raw.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("%s exited with status %d", engineID, raw.ExitCode)
		}
		return Result{}, newError(kind, msg)
	}
	return Result{
		Stdout:   raw.Stdout,
		ExitCode: raw.ExitCode,
		Elapsed:  raw.Elapsed,
		Engine:   engineID,
		Model:    model,
	}, nil
}

// kindOf recovers the classified kind from a dispatch error for the retry
// controller's fatal check.
func kindOf(err error) classify.Kind {
	if de, ok := err.(*Error); ok {
		return de.Kind
	}
	return classify.KindUnknown
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
