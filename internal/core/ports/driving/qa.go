package driving

import (
	"context"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// AnswerService answers natural-language questions about a contract.
type AnswerService interface {
	// AnswerQuestion runs one retrieval-augmented Q&A cycle scoped to a
	// single contract and returns the reconciled answer.
	//
	// Failures are explicit domain errors, never panics:
	// domain.ErrQuestionTooShort, domain.ErrEmbeddingFailed,
	// domain.ErrNoEmbeddedClauses, domain.ErrGenerationFailed,
	// domain.ErrConfiguration. No retries are performed; the caller
	// decides whether to retry the whole cycle.
	AnswerQuestion(ctx context.Context, contractID domain.ContractID, question string) (*domain.Answer, error)

	// History returns past interactions for a contract, newest first.
	History(ctx context.Context, contractID domain.ContractID) ([]domain.QARecord, error)
}
