package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"vendorwatch/internal/model"
)

// Service runs the full single-target pipeline: backend invocation,
// normalization, and scoring. It holds no per-user state; settings are
// threaded into every call.
type Service struct {
	gemini GeminiConfig

	// newBackend is swappable in tests.
	newBackend func(model.Settings) (Backend, error)
}

func NewService(gemini GeminiConfig) *Service {
	s := &Service{gemini: gemini}
	s.newBackend = func(settings model.Settings) (Backend, error) {
		return backendFor(settings, s.gemini)
	}
	return s
}

// Analyze runs one vendor analysis and returns the scored result plus
// deduplicated grounding sources. Nothing is persisted here.
func (s *Service) Analyze(ctx context.Context, domain string, scanType model.ScanType, settings model.Settings) (*model.AnalysisResult, []model.Source, error) {
	if domain == "" {
		return nil, nil, fmt.Errorf("domain is required")
	}
	if !scanType.Valid() {
		return nil, nil, fmt.Errorf("invalid scan type: %s", scanType)
	}

	backend, err := s.newBackend(settings)
	if err != nil {
		return nil, nil, err
	}

	raw, sources, err := backend.Analyze(ctx, domain, scanType)
	if err != nil {
		return nil, nil, err
	}

	result, err := Normalize(raw, settings)
	if err != nil {
		return nil, nil, err
	}

	return result, DedupSources(sources), nil
}

// AnalyzeContract reviews contract text against the customer's
// interests. Contract review always runs on the grounded backend; the
// offline provider has no contract capability.
func (s *Service) AnalyzeContract(ctx context.Context, contractText string, settings model.Settings) (*model.ContractAnalysisResult, error) {
	if contractText == "" {
		return nil, fmt.Errorf("contract text is required")
	}
	if settings.Provider == model.ProviderOllama {
		slog.Warn("ollama provider selected, contract analysis uses gemini")
	}

	raw, err := NewGeminiBackend(s.gemini).AnalyzeContract(ctx, contractText)
	if err != nil {
		return nil, err
	}
	return NormalizeContract(raw)
}
