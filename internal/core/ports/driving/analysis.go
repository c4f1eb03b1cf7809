package driving

import (
	"context"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// AnalysisService runs AI analysis over an ingested contract: risk
// detection and plain-language summarisation.
type AnalysisService interface {
	// AnalyzeRisks assesses the contract for risky, unfair or unusual
	// clauses, persists the assessments and returns them.
	//
	// Failures are explicit domain errors: domain.ErrNotFound,
	// domain.ErrContractTooShort, domain.ErrGenerationFailed.
	AnalyzeRisks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error)

	// Risks returns stored assessments, highest severity first.
	Risks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error)

	// Summarize generates a plain-language summary of the contract from
	// the given perspective, persists it and returns it. An empty role
	// means neutral; an unknown role fails with domain.ErrInvalidRole.
	Summarize(ctx context.Context, contractID domain.ContractID, role domain.SummaryRole) (*domain.ContractSummary, error)

	// Summaries returns stored summaries, newest first.
	Summaries(ctx context.Context, contractID domain.ContractID) ([]domain.ContractSummary, error)
}
