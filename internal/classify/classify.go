// Package classify maps raw backend output to a closed error taxonomy.
//
// Each supported engine wraps a different underlying tool with different
// failure phrasing, so rule sets are per-engine: the same words can mean
// different things (ollama's "not found" is a missing model; claude's
// "not_found_error" is a missing API resource). Rules are ordered and the
// first match wins; no match classifies as KindUnknown.
package classify

import "strings"

type Kind string

const (
	KindRateLimit        Kind = "rate_limit"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindAuthentication   Kind = "authentication"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindInvalidRequest   Kind = "invalid_request"
	KindModelNotFound    Kind = "model_not_found"
	KindConnectionFailed Kind = "connection_failed"
	KindTimeout          Kind = "timeout"
	KindContextLength    Kind = "context_length"
	KindUserAbort        Kind = "user_abort"
	KindUnknown          Kind = "unknown"

	// Validation and dispatch kinds. These are never produced by Classify;
	// they originate in the registry and dispatcher but share the taxonomy.
	KindEngineUnknown            Kind = "engine_unknown"
	KindEngineNotInstalled       Kind = "engine_not_installed"
	KindModelNotFoundSuggestions Kind = "model_not_found_with_suggestions"
	KindModelWrongEngine         Kind = "model_wrong_engine"
	KindInternal                 Kind = "internal_error"
)

type rule struct {
	needle string
	kind   Kind
}

// genericRules cover phrasing shared across backends. Engine rules are
// consulted first, so an engine can override any of these.
var genericRules = []rule{
	{"rate limit", KindRateLimit},
	{"too many requests", KindRateLimit},
	{"429", KindRateLimit},
	{"quota", KindQuotaExceeded},
	{"billing", KindQuotaExceeded},
	{"insufficient credit", KindQuotaExceeded},
	{"unauthorized", KindAuthentication},
	{"invalid api key", KindAuthentication},
	{"authentication", KindAuthentication},
	{"not logged in", KindAuthentication},
	{"permission denied", KindPermissionDenied},
	{"forbidden", KindPermissionDenied},
	{"context length", KindContextLength},
	{"context window", KindContextLength},
	{"too many tokens", KindContextLength},
	{"prompt is too long", KindContextLength},
	{"unknown model", KindModelNotFound},
	{"model not found", KindModelNotFound},
	{"connection refused", KindConnectionFailed},
	{"connection reset", KindConnectionFailed},
	{"broken pipe", KindConnectionFailed},
	{"could not resolve host", KindConnectionFailed},
	{"service unavailable", KindConnectionFailed},
	{"gateway timeout", KindConnectionFailed},
	{"network is unreachable", KindConnectionFailed},
	{"timed out", KindTimeout},
	{"deadline exceeded", KindTimeout},
	{"idle timeout", KindTimeout},
	{"invalid argument", KindInvalidRequest},
	{"invalid request", KindInvalidRequest},
	{"usage:", KindInvalidRequest},
	{"interrupted", KindUserAbort},
	{"aborted by user", KindUserAbort},
}

// rulesByEngine hold phrasing specific to one backend CLI. Order matters:
// more specific needles come before generic ones that would shadow them.
var rulesByEngine = map[string][]rule{
	"claude": {
		{"overloaded_error", KindRateLimit},
		{"rate_limit_error", KindRateLimit},
		{"authentication_error", KindAuthentication},
		{"credit balance is too low", KindQuotaExceeded},
		{"permission_error", KindPermissionDenied},
		{"not_found_error", KindNotFound},
		{"invalid_request_error", KindInvalidRequest},
	},
	"opencode": {
		{"model not available", KindModelNotFound},
		{"no providers configured", KindAuthentication},
		{"provider returned error", KindConnectionFailed},
	},
	"codex": {
		{"stream disconnected", KindConnectionFailed},
		{"stream closed before", KindConnectionFailed},
		{"login required", KindAuthentication},
		{"unsupported model", KindModelNotFound},
	},
	"ollama": {
		// Ollama's "not found" almost always means the model is not pulled.
		{"try pulling it first", KindModelNotFound},
		{"pull the model", KindModelNotFound},
		{"not found", KindModelNotFound},
		{"could not connect to ollama", KindConnectionFailed},
		{"connect: connection refused", KindConnectionFailed},
	},
	"aider": {
		{"unknown model", KindModelNotFound},
		{"litellm", KindConnectionFailed},
		{"api key", KindAuthentication},
	},
	"qwen": {
		{"login expired", KindAuthentication},
	},
	"cursor": {
		{"not authenticated", KindAuthentication},
	},
	"goose": {
		{"no provider configured", KindAuthentication},
	},
	"copilot": {
		{"gh auth login", KindAuthentication},
		{"not authenticated", KindAuthentication},
	},
}

// Classify maps one engine invocation's combined output (stdout+stderr plus
// any runner error text) to an error kind.
func Classify(engineID string, output string) Kind {
	lower := strings.ToLower(output)
	for _, r := range rulesByEngine[strings.ToLower(strings.TrimSpace(engineID))] {
		if strings.Contains(lower, r.needle) {
			return r.kind
		}
	}
	for _, r := range genericRules {
		if strings.Contains(lower, r.needle) {
			return r.kind
		}
	}
	return KindUnknown
}

var suggestions = map[Kind]string{
	KindRateLimit: "Rate limited by the provider. Wait a minute and retry, or switch to a different engine/model.",
	KindQuotaExceeded: "Provider quota or credit exhausted. Check your billing dashboard or switch to a free-tier model.",
	KindAuthentication: "Authentication failed. Re-run the engine's login flow (e.g. `claude login`, `gh auth login`) or check the API key environment variable.",
	KindPermissionDenied: "The provider rejected the request for permission reasons. Verify your account has access to this model.",
	KindNotFound: "The requested resource was not found. Check the identifier and try again.",
	KindInvalidRequest: "The request was rejected as invalid. Check the prompt and flags; this will not succeed on retry.",
	KindModelNotFound: "The model is unknown to this engine. Run `omnai models --engine <engine>` for known models.",
	KindConnectionFailed: "Could not reach the provider. Check network connectivity (and that the local server is running, for local engines).",
	KindTimeout: "The engine did not finish within the timeout. Increase --timeout or simplify the prompt.",
	KindContextLength: "The prompt exceeds the model's context window. Shorten the prompt or pick a larger-context model.",
	KindUserAbort: "The run was cancelled.",
	KindEngineUnknown: "Unknown engine. Run `omnai engines` for the supported set.",
	KindEngineNotInstalled: "No supported engine executable was found on PATH. Install one (e.g. `npm install -g @anthropic-ai/claude-code`) or set --engine explicitly.",
	KindModelNotFoundSuggestions: "The model is not in the configuration table; did you mean one of the suggestions?",
	KindModelWrongEngine: "The model exists but belongs to a different engine. Pass the matching --engine or drop the flag.",
	KindInternal: "Internal error. This is a bug in omnai, not the backend.",
}

// Suggestion returns a human remediation hint for a kind.
func Suggestion(kind Kind) string {
	if s, ok := suggestions[kind]; ok {
		return s
	}
	return "Unrecognized failure. Re-run with --verbose to capture the raw backend output."
}

// Fatal reports whether a kind is the caller's fault and must never be
// retried.
func Fatal(kind Kind) bool {
	return kind == KindUserAbort || kind == KindInvalidRequest
}
