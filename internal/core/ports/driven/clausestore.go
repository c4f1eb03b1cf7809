package driven

import (
	"context"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// ClauseStore persists contracts and their segmented clauses.
// Backed by SQLite for metadata storage.
//
// Embedding writes are atomic: a reader concurrent with UpdateEmbedding
// sees either no embedding or the full vector, never a partial write.
type ClauseStore interface {
	// SaveContract stores a new contract and returns it with its ID set.
	SaveContract(ctx context.Context, contract *domain.Contract) error

	// GetContract retrieves a contract by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetContract(ctx context.Context, id domain.ContractID) (*domain.Contract, error)

	// ListContracts returns stored contracts, newest first.
	ListContracts(ctx context.Context) ([]domain.Contract, error)

	// UpdateContractStatus records pipeline progress for a contract.
	UpdateContractStatus(ctx context.Context, id domain.ContractID, status domain.ContractStatus) error

	// SaveClauses stores clauses for a contract in one transaction and
	// populates their IDs. Returns domain.ErrDuplicateClause when a
	// (contract, segment) pair already exists; the batch is rolled back.
	SaveClauses(ctx context.Context, clauses []domain.Clause) ([]domain.Clause, error)

	// GetClauses retrieves all clauses for a contract in stable
	// insertion (ascending ID) order.
	GetClauses(ctx context.Context, contractID domain.ContractID) ([]domain.Clause, error)

	// UpdateEmbedding stores the full embedding vector for a clause.
	// Returns domain.ErrNotFound if the clause does not exist.
	UpdateEmbedding(ctx context.Context, clauseID domain.ClauseID, embedding []float32) error

	// DeleteContract removes a contract, its clauses and its Q&A history.
	DeleteContract(ctx context.Context, id domain.ContractID) error
}

// HistoryStore persists question-answer interactions.
type HistoryStore interface {
	// RecordQA stores one interaction and returns it with ID and
	// timestamp populated.
	RecordQA(ctx context.Context, record *domain.QARecord) error

	// ListQA returns the interactions for a contract, newest first.
	ListQA(ctx context.Context, contractID domain.ContractID) ([]domain.QARecord, error)
}
