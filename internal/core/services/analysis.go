package services

import (
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
)

// Ensure AnalysisService implements the driving port.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService bundles the risk analyzer and the summarizer behind
// the single driving port the CLI and HTTP API consume.
type AnalysisService struct {
	*RiskAnalyzer
	*Summarizer
}

// NewAnalysisService creates the combined analysis service.
func NewAnalysisService(store driven.ClauseStore, analyses driven.AnalysisStore,
	llm driven.LLMService, prompts driven.PromptStore) *AnalysisService {
	return &AnalysisService{
		RiskAnalyzer: NewRiskAnalyzer(store, analyses, llm, prompts),
		Summarizer:   NewSummarizer(store, analyses, llm),
	}
}
