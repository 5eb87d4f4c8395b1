package registry

import "strings"

type CostLevel string

const (
	CostFree      CostLevel = "free"
	CostCheap     CostLevel = "cheap"
	CostMedium    CostLevel = "medium"
	CostExpensive CostLevel = "expensive"
)

type SpeedLevel string

const (
	SpeedVeryFast SpeedLevel = "very-fast"
	SpeedFast     SpeedLevel = "fast"
	SpeedMedium   SpeedLevel = "medium"
	SpeedSlow     SpeedLevel = "slow"
	SpeedVerySlow SpeedLevel = "very-slow"
)

type QualityLevel string

const (
	QualityExcellent QualityLevel = "excellent"
	QualityGood      QualityLevel = "good"
	QualityFair      QualityLevel = "fair"
	QualityBasic     QualityLevel = "basic"
)

// ModelConfig is one entry of the static model table. Model is the
// engine-facing identifier, which can differ from ID (e.g. provider/model
// forms passed through to the CLI).
type ModelConfig struct {
	ID            string       `json:"id"`
	Engine        string       `json:"engine"`
	Model         string       `json:"model"`
	FullName      string       `json:"full_name"`
	ContextWindow int          `json:"context_window"`
	Cost          CostLevel    `json:"cost"`
	Speed         SpeedLevel   `json:"speed"`
	Quality       QualityLevel `json:"quality"`
	FreeTier      bool         `json:"free_tier"`
	BestFor       []string     `json:"best_for,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

// models preserves declaration order; FindSimilar and ListConfigs iterate it
// directly so results follow table order.
var models = []ModelConfig{
	// Claude
	{ID: "claude-sonnet-4-20250514", Engine: "claude", Model: "claude-sonnet-4-20250514", FullName: "Claude Sonnet 4 (May 2025)", ContextWindow: 200_000, Cost: CostMedium, Speed: SpeedFast, Quality: QualityExcellent, FreeTier: true, BestFor: []string{"coding", "analysis", "reasoning", "general"}, Notes: "Best balance of speed, quality, and cost. Recommended default."},
	{ID: "claude-opus-4-20250514", Engine: "claude", Model: "claude-opus-4-20250514", FullName: "Claude Opus 4 (May 2025)", ContextWindow: 200_000, Cost: CostExpensive, Speed: SpeedSlow, Quality: QualityExcellent, BestFor: []string{"complex-reasoning", "research", "high-stakes"}, Notes: "Use when quality matters more than cost/speed."},
	{ID: "claude-sonnet-3.7", Engine: "claude", Model: "claude-sonnet-3.7", FullName: "Claude Sonnet 3.7", ContextWindow: 200_000, Cost: CostMedium, Speed: SpeedFast, Quality: QualityExcellent, FreeTier: true, BestFor: []string{"coding", "analysis", "reasoning"}, Notes: "Previous generation Sonnet. Still very capable."},
	{ID: "claude-haiku-3.5", Engine: "claude", Model: "claude-haiku-3.5", FullName: "Claude Haiku 3.5", ContextWindow: 200_000, Cost: CostCheap, Speed: SpeedVeryFast, Quality: QualityGood, FreeTier: true, BestFor: []string{"simple-tasks", "batch-processing", "quick-responses"}, Notes: "Fastest and cheapest Claude model."},

	// OpenCode
	{ID: "gpt-4o", Engine: "opencode", Model: "gpt-4o", FullName: "GPT-4o", ContextWindow: 128_000, Cost: CostMedium, Speed: SpeedFast, Quality: QualityExcellent, BestFor: []string{"coding", "multimodal", "general", "reasoning"}, Notes: "OpenAI's flagship model. Optimized for speed and cost."},
	{ID: "gpt-4-turbo", Engine: "opencode", Model: "gpt-4-turbo", FullName: "GPT-4 Turbo", ContextWindow: 128_000, Cost: CostMedium, Speed: SpeedFast, Quality: QualityExcellent, BestFor: []string{"coding", "analysis", "reasoning"}, Notes: "Previous generation GPT-4. Still very capable."},
	{ID: "gpt-3.5-turbo", Engine: "opencode", Model: "gpt-3.5-turbo", FullName: "GPT-3.5 Turbo", ContextWindow: 16_385, Cost: CostCheap, Speed: SpeedVeryFast, Quality: QualityGood, BestFor: []string{"simple-tasks", "batch-processing", "prototyping"}, Notes: "Fastest and cheapest OpenAI model."},
	{ID: "o1-preview", Engine: "opencode", Model: "o1-preview", FullName: "OpenAI o1 Preview", ContextWindow: 128_000, Cost: CostExpensive, Speed: SpeedSlow, Quality: QualityExcellent, BestFor: []string{"complex-reasoning", "math", "science"}, Notes: "Advanced reasoning model with extended thinking time."},
	{ID: "o1", Engine: "opencode", Model: "o1", FullName: "OpenAI o1", ContextWindow: 200_000, Cost: CostExpensive, Speed: SpeedSlow, Quality: QualityExcellent, BestFor: []string{"complex-reasoning", "production", "high-stakes"}, Notes: "Production reasoning model with extended context."},
	{ID: "deepseek-chat", Engine: "opencode", Model: "deepseek-chat", FullName: "DeepSeek V3", ContextWindow: 64_000, Cost: CostCheap, Speed: SpeedFast, Quality: QualityExcellent, BestFor: []string{"coding", "reasoning", "cost-efficiency"}, Notes: "Extremely cost-efficient with excellent coding ability."},
	{ID: "minimax-m2.1", Engine: "opencode", Model: "minimax-m2.1", FullName: "MiniMax M2.1", ContextWindow: 32_000, Cost: CostCheap, Speed: SpeedFast, Quality: QualityGood, BestFor: []string{"general", "cost-efficiency"}, Notes: "MiniMax's latest model. Very cost-efficient."},
	{ID: "minimax-m2.1-free", Engine: "opencode", Model: "minimax-m2.1-free", FullName: "MiniMax M2.1 (Free)", ContextWindow: 32_000, Cost: CostFree, Speed: SpeedFast, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "cost-efficiency", "prototyping"}, Notes: "Free tier MiniMax M2.1 via opencode. No API key required."},
	{ID: "big-pickle", Engine: "opencode", Model: "big-pickle", FullName: "Big Pickle", ContextWindow: 200_000, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "reasoning", "long-context"}, Notes: "Free reasoning model via opencode. 200K context window."},
	{ID: "glm-4.7-free", Engine: "opencode", Model: "glm-4.7-free", FullName: "GLM-4.7 (Free)", ContextWindow: 204_000, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "long-context", "analysis"}, Notes: "Free GLM model via opencode."},
	{ID: "gpt-5-nano", Engine: "opencode", Model: "gpt-5-nano", FullName: "GPT-5 Nano", ContextWindow: 16_000, Cost: CostFree, Speed: SpeedVeryFast, Quality: QualityFair, FreeTier: true, BestFor: []string{"simple-tasks", "testing", "prototyping"}, Notes: "Free lightweight model via opencode."},
	{ID: "grok-code", Engine: "opencode", Model: "grok-code", FullName: "Grok Code", ContextWindow: 32_000, Cost: CostFree, Speed: SpeedFast, Quality: QualityGood, FreeTier: true, BestFor: []string{"coding", "debugging", "prototyping"}, Notes: "Free coding-focused model via opencode."},
	{ID: "minimax-m2", Engine: "opencode", Model: "minimax/MiniMax-M2", FullName: "MiniMax M2 (API)", ContextWindow: 32_000, Cost: CostCheap, Speed: SpeedFast, Quality: QualityGood, BestFor: []string{"general", "cost-efficiency"}, Notes: "MiniMax M2 via private API key."},
	{ID: "minimax-m2.1-api", Engine: "opencode", Model: "minimax/MiniMax-M2.1", FullName: "MiniMax M2.1 (API)", ContextWindow: 32_000, Cost: CostCheap, Speed: SpeedFast, Quality: QualityGood, BestFor: []string{"general", "cost-efficiency"}, Notes: "MiniMax M2.1 via private API key."},

	// Codex
	{ID: "deepseek-v3", Engine: "codex", Model: "deepseek-v3", FullName: "DeepSeek V3 (via Codex)", ContextWindow: 64_000, Cost: CostCheap, Speed: SpeedFast, Quality: QualityExcellent, BestFor: []string{"coding", "reasoning"}, Notes: "DeepSeek V3 via Codex CLI."},
	{ID: "claude-sonnet-4", Engine: "codex", Model: "claude-sonnet-4", FullName: "Claude Sonnet 4 (via Codex)", ContextWindow: 200_000, Cost: CostMedium, Speed: SpeedFast, Quality: QualityExcellent, BestFor: []string{"coding", "reasoning"}, Notes: "Claude Sonnet 4 accessed via Codex CLI."},

	// Ollama (local)
	{ID: "qwen2.5-coder:7b", Engine: "ollama", Model: "qwen2.5-coder:7b", FullName: "Qwen 2.5 Coder 7B", ContextWindow: 32_768, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"coding", "offline-work", "privacy", "local-dev"}, Notes: "Free local inference. Requires ~6GB RAM."},
	{ID: "qwen2.5-coder:14b", Engine: "ollama", Model: "qwen2.5-coder:14b", FullName: "Qwen 2.5 Coder 14B", ContextWindow: 32_768, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"coding", "offline-work", "privacy"}, Notes: "Larger Qwen model. Requires ~12GB RAM."},
	{ID: "qwen2.5-coder:32b", Engine: "ollama", Model: "qwen2.5-coder:32b", FullName: "Qwen 2.5 Coder 32B", ContextWindow: 32_768, Cost: CostFree, Speed: SpeedSlow, Quality: QualityExcellent, FreeTier: true, BestFor: []string{"coding", "complex-problems", "local-dev"}, Notes: "Largest Qwen coder. Requires ~24GB RAM."},
	{ID: "deepseek-coder-v2:16b", Engine: "ollama", Model: "deepseek-coder-v2:16b", FullName: "DeepSeek Coder V2 16B", ContextWindow: 16_384, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"coding", "local-dev"}, Notes: "DeepSeek's local coding model. Requires ~12GB RAM."},
	{ID: "codellama:7b", Engine: "ollama", Model: "codellama:7b", FullName: "Code Llama 7B", ContextWindow: 16_384, Cost: CostFree, Speed: SpeedFast, Quality: QualityFair, FreeTier: true, BestFor: []string{"coding", "local-dev", "lightweight"}, Notes: "Meta's Code Llama. Requires ~5GB RAM."},
	{ID: "llama3.2:3b", Engine: "ollama", Model: "llama3.2:3b", FullName: "Llama 3.2 3B", ContextWindow: 128_000, Cost: CostFree, Speed: SpeedVeryFast, Quality: QualityFair, FreeTier: true, BestFor: []string{"simple-tasks", "lightweight", "prototyping"}, Notes: "Ultra-lightweight general model. Requires ~2GB RAM."},
	{ID: "llama3.2", Engine: "ollama", Model: "llama3.2", FullName: "Llama 3.2", ContextWindow: 128_000, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "local-dev"}, Notes: "General-purpose Llama model."},
	{ID: "llama3.1", Engine: "ollama", Model: "llama3.1", FullName: "Llama 3.1", ContextWindow: 128_000, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "local-dev"}, Notes: "Previous generation Llama. Still capable."},
	{ID: "mistral", Engine: "ollama", Model: "mistral", FullName: "Mistral 7B", ContextWindow: 32_768, Cost: CostFree, Speed: SpeedFast, Quality: QualityGood, FreeTier: true, BestFor: []string{"general", "lightweight"}, Notes: "Mistral's 7B model. Requires ~5GB RAM."},
	{ID: "deepseek-coder", Engine: "ollama", Model: "deepseek-coder", FullName: "DeepSeek Coder", ContextWindow: 16_384, Cost: CostFree, Speed: SpeedMedium, Quality: QualityGood, FreeTier: true, BestFor: []string{"coding", "local-dev"}, Notes: "DeepSeek's original coding model."},
}

var modelsByID map[string]*ModelConfig

func init() {
	modelsByID = make(map[string]*ModelConfig, len(models))
	for i := range models {
		m := &models[i]
		if _, exists := modelsByID[m.ID]; exists {
			// Keep the first entry; duplicates would silently change behavior.
			continue
		}
		modelsByID[m.ID] = m
	}
}

// GetConfig returns the configuration for a model id. Absence is an
// expected outcome, not a fault.
func GetConfig(id string) (ModelConfig, bool) {
	m, ok := modelsByID[strings.TrimSpace(id)]
	if !ok {
		return ModelConfig{}, false
	}
	return *m, true
}

// ListConfigs returns all model configs in table order, optionally filtered
// to one engine (alias-aware).
func ListConfigs(engine string) []ModelConfig {
	canonical := CanonicalEngineID(engine)
	if strings.TrimSpace(engine) == "" {
		return append([]ModelConfig{}, models...)
	}
	var out []ModelConfig
	for _, m := range models {
		if m.Engine == canonical {
			out = append(out, m)
		}
	}
	return out
}

// FindSimilar returns configs whose id case-insensitively contains the
// query, in table order, optionally engine-filtered, truncated to limit.
func FindSimilar(query string, engine string, limit int) []ModelConfig {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	canonical := CanonicalEngineID(engine)
	var out []ModelConfig
	for _, m := range models {
		if canonical != "" && m.Engine != canonical {
			continue
		}
		if !strings.Contains(strings.ToLower(m.ID), q) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Criteria filters for FindConfigs. Criteria are ANDed; values within one
// criterion are ORed. Zero-value fields are ignored.
type Criteria struct {
	Cost     []CostLevel
	Speed    []SpeedLevel
	Quality  []QualityLevel
	BestFor  []string
	FreeTier *bool
	Engine   []string
}

// FindConfigs returns models matching the criteria, in table order.
func FindConfigs(c Criteria) []ModelConfig {
	canonicalEngines := make([]string, 0, len(c.Engine))
	for _, e := range c.Engine {
		if id := CanonicalEngineID(e); id != "" {
			canonicalEngines = append(canonicalEngines, id)
		}
	}
	var out []ModelConfig
	for _, m := range models {
		if len(c.Cost) > 0 && !containsCost(c.Cost, m.Cost) {
			continue
		}
		if len(c.Speed) > 0 && !containsSpeed(c.Speed, m.Speed) {
			continue
		}
		if len(c.Quality) > 0 && !containsQuality(c.Quality, m.Quality) {
			continue
		}
		if c.FreeTier != nil && m.FreeTier != *c.FreeTier {
			continue
		}
		if len(canonicalEngines) > 0 && !containsString(canonicalEngines, m.Engine) {
			continue
		}
		if len(c.BestFor) > 0 && !anyOverlap(c.BestFor, m.BestFor) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func containsCost(xs []CostLevel, v CostLevel) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsSpeed(xs []SpeedLevel, v SpeedLevel) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsQuality(xs []QualityLevel, v QualityLevel) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func anyOverlap(want []string, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}
