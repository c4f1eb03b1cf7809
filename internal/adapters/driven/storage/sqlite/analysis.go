package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// AnalysisStore returns an AnalysisStore interface backed by this store.
func (s *Store) AnalysisStore() driven.AnalysisStore {
	return &analysisStore{store: s}
}

// analysisStore implements driven.AnalysisStore.
type analysisStore struct {
	store *Store
}

var _ driven.AnalysisStore = (*analysisStore)(nil)

// SaveRisks stores a batch of assessments in one transaction.
func (s *analysisStore) SaveRisks(ctx context.Context, risks []domain.RiskAssessment) ([]domain.RiskAssessment, error) {
	if len(risks) == 0 {
		return nil, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO risk_assessments
			(contract_id, clause_id, clause_reference, risk_type, risk_level,
			 description, justification, recommendation, assessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing risk insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := make([]domain.RiskAssessment, len(risks))
	for i, risk := range risks {
		risk.AssessedAt = now

		var clauseID any
		if risk.ClauseID != nil {
			clauseID = int64(*risk.ClauseID)
		}
		res, err := stmt.ExecContext(ctx, int64(risk.ContractID), clauseID,
			risk.ClauseReference, string(risk.Type), string(risk.Level),
			risk.Description, risk.Justification, risk.Recommendation, risk.AssessedAt)
		if err != nil {
			return nil, fmt.Errorf("saving risk assessment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("risk insert id: %w", err)
		}
		risk.ID = id
		saved[i] = risk
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing risk assessments: %w", err)
	}
	return saved, nil
}

// ListRisks returns assessments for a contract, highest severity first,
// then insertion order within a severity.
func (s *analysisStore) ListRisks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, contract_id, clause_id, clause_reference, risk_type, risk_level,
		       description, justification, recommendation, assessed_at
		FROM risk_assessments WHERE contract_id = ?
		ORDER BY CASE risk_level WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, id ASC
	`, int64(contractID))
	if err != nil {
		return nil, fmt.Errorf("listing risk assessments: %w", err)
	}
	defer rows.Close()

	var risks []domain.RiskAssessment
	for rows.Next() {
		var risk domain.RiskAssessment
		var clauseID sql.NullInt64
		var riskType, riskLevel string
		if err := rows.Scan(&risk.ID, &risk.ContractID, &clauseID, &risk.ClauseReference,
			&riskType, &riskLevel, &risk.Description, &risk.Justification,
			&risk.Recommendation, &risk.AssessedAt); err != nil {
			return nil, fmt.Errorf("scanning risk assessment: %w", err)
		}
		risk.Type = domain.RiskType(riskType)
		risk.Level = domain.RiskLevel(riskLevel)
		if clauseID.Valid {
			id := domain.ClauseID(clauseID.Int64)
			risk.ClauseID = &id
		}
		risks = append(risks, risk)
	}
	return risks, rows.Err()
}

// SaveSummary stores one summary with its content as JSON.
func (s *analysisStore) SaveSummary(ctx context.Context, summary *domain.ContractSummary) error {
	summary.CreatedAt = time.Now().UTC()

	contentJSON, err := json.Marshal(summary.Content)
	if err != nil {
		return fmt.Errorf("marshalling summary content: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO summaries (contract_id, summary_type, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, int64(summary.ContractID), summary.Type, string(summary.Role),
		string(contentJSON), summary.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("summary insert id: %w", err)
	}
	summary.ID = id
	return nil
}

// ListSummaries returns summaries for a contract, newest first.
func (s *analysisStore) ListSummaries(ctx context.Context, contractID domain.ContractID) ([]domain.ContractSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, contract_id, summary_type, role, content, created_at
		FROM summaries WHERE contract_id = ? ORDER BY id DESC
	`, int64(contractID))
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ContractSummary
	for rows.Next() {
		var summary domain.ContractSummary
		var role, contentJSON string
		if err := rows.Scan(&summary.ID, &summary.ContractID, &summary.Type,
			&role, &contentJSON, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		summary.Role = domain.SummaryRole(role)
		if err := json.Unmarshal([]byte(contentJSON), &summary.Content); err != nil {
			return nil, fmt.Errorf("unmarshalling summary content: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
