package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// Ensure AnalysisStore implements the interface.
var _ driven.AnalysisStore = (*AnalysisStore)(nil)

// AnalysisStore is an in-memory implementation of driven.AnalysisStore.
type AnalysisStore struct {
	mu          sync.RWMutex
	risks       []domain.RiskAssessment
	summaries   []domain.ContractSummary
	nextRisk    int64
	nextSummary int64
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{nextRisk: 1, nextSummary: 1}
}

// SaveRisks stores a batch of assessments and assigns their IDs.
func (s *AnalysisStore) SaveRisks(_ context.Context, risks []domain.RiskAssessment) ([]domain.RiskAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	saved := make([]domain.RiskAssessment, len(risks))
	for i, risk := range risks {
		risk.ID = s.nextRisk
		s.nextRisk++
		risk.AssessedAt = now
		s.risks = append(s.risks, risk)
		saved[i] = risk
	}
	return saved, nil
}

// riskRank orders severities for listing, highest first.
func riskRank(level domain.RiskLevel) int {
	switch level {
	case domain.RiskHigh:
		return 0
	case domain.RiskMedium:
		return 1
	default:
		return 2
	}
}

// ListRisks returns assessments for a contract, highest severity first.
func (s *AnalysisStore) ListRisks(_ context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var risks []domain.RiskAssessment
	for _, risk := range s.risks {
		if risk.ContractID == contractID {
			risks = append(risks, risk)
		}
	}
	slices.SortStableFunc(risks, func(a, b domain.RiskAssessment) int {
		if d := riskRank(a.Level) - riskRank(b.Level); d != 0 {
			return d
		}
		return int(a.ID - b.ID)
	})
	return risks, nil
}

// SaveSummary stores one summary and assigns its ID.
func (s *AnalysisStore) SaveSummary(_ context.Context, summary *domain.ContractSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary.ID = s.nextSummary
	s.nextSummary++
	summary.CreatedAt = time.Now().UTC()
	s.summaries = append(s.summaries, *summary)
	return nil
}

// ListSummaries returns summaries for a contract, newest first.
func (s *AnalysisStore) ListSummaries(_ context.Context, contractID domain.ContractID) ([]domain.ContractSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []domain.ContractSummary
	for _, summary := range s.summaries {
		if summary.ContractID == contractID {
			summaries = append(summaries, summary)
		}
	}
	slices.SortFunc(summaries, func(a, b domain.ContractSummary) int {
		return int(b.ID - a.ID)
	})
	return summaries, nil
}

// DeleteContract removes analysis data for a contract. The SQLite
// store handles this with cascading deletes; callers pairing this
// store with the in-memory clause store invoke it explicitly.
func (s *AnalysisStore) DeleteContract(contractID domain.ContractID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.risks = slices.DeleteFunc(s.risks, func(r domain.RiskAssessment) bool {
		return r.ContractID == contractID
	})
	s.summaries = slices.DeleteFunc(s.summaries, func(sm domain.ContractSummary) bool {
		return sm.ContractID == contractID
	})
}
