package analysis

import (
	"context"
	"fmt"

	"vendorwatch/internal/model"
)

// Backend is an interchangeable intelligence provider. Analyze turns a
// domain and scan type into raw free-form text expected to contain one
// JSON object, plus any grounding citations the provider surfaced
// separately from the text. Implementations never retry and mutate no
// local state.
type Backend interface {
	Analyze(ctx context.Context, domain string, scanType model.ScanType) (raw string, sources []model.Source, err error)
}

// backendFor selects the provider variant the user's settings ask for.
func backendFor(settings model.Settings, cfg GeminiConfig) (Backend, error) {
	switch settings.Provider {
	case model.ProviderOllama:
		return NewOllamaBackend(settings.OllamaURL, settings.OllamaModel), nil
	case model.ProviderGemini, "":
		return NewGeminiBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", settings.Provider)
	}
}
