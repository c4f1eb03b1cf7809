package driven

import (
	"context"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// AnalysisStore persists risk assessments and contract summaries.
type AnalysisStore interface {
	// SaveRisks stores a batch of assessments in one transaction and
	// populates their IDs and timestamps.
	SaveRisks(ctx context.Context, risks []domain.RiskAssessment) ([]domain.RiskAssessment, error)

	// ListRisks returns the assessments for a contract, highest
	// severity first, then insertion order.
	ListRisks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error)

	// SaveSummary stores one summary and populates its ID and timestamp.
	SaveSummary(ctx context.Context, summary *domain.ContractSummary) error

	// ListSummaries returns the summaries for a contract, newest first.
	ListSummaries(ctx context.Context, contractID domain.ContractID) ([]domain.ContractSummary, error)
}
