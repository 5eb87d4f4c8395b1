package registry

import (
	"fmt"
	"strings"

	"github.com/omnai-sh/omnai/internal/classify"
)

const suggestionLimit = 5

// ValidationError is a failed model resolution. Candidates is populated only
// for KindModelNotFoundSuggestions.
type ValidationError struct {
	Kind       classify.Kind
	Message    string
	Candidates []ModelConfig
}

func (e *ValidationError) Error() string { return e.Message }

// Validate resolves a model id against the table, never silently
// substituting a different model. An empty model id is a deliberate bypass:
// the caller wants the engine default and no validation happens (handled by
// the caller, not here).
func Validate(modelID string, engine string) (ModelConfig, error) {
	modelID = strings.TrimSpace(modelID)
	requested := CanonicalEngineID(engine)

	if cfg, ok := GetConfig(modelID); ok {
		if requested == "" || cfg.Engine == requested {
			return cfg, nil
		}
		return ModelConfig{}, &ValidationError{
			Kind:    classify.KindModelWrongEngine,
			Message: fmt.Sprintf("model %q belongs to engine %q, not %q", modelID, cfg.Engine, requested),
		}
	}

	similar := FindSimilar(modelID, engine, suggestionLimit)
	if len(similar) > 0 {
		ids := make([]string, 0, len(similar))
		for _, m := range similar {
			ids = append(ids, m.ID)
		}
		return ModelConfig{}, &ValidationError{
			Kind:       classify.KindModelNotFoundSuggestions,
			Message:    fmt.Sprintf("unknown model %q; similar: %s", modelID, strings.Join(ids, ", ")),
			Candidates: similar,
		}
	}
	return ModelConfig{}, &ValidationError{
		Kind:    classify.KindModelNotFound,
		Message: fmt.Sprintf("unknown model %q", modelID),
	}
}
