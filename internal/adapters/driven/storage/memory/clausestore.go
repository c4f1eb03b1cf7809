// Package memory provides in-memory store implementations used in tests
// and for ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// Ensure ClauseStore implements the interface.
var _ driven.ClauseStore = (*ClauseStore)(nil)

// ClauseStore is an in-memory implementation of driven.ClauseStore.
type ClauseStore struct {
	mu           sync.RWMutex
	contracts    map[domain.ContractID]domain.Contract
	clauses      map[domain.ClauseID]domain.Clause
	nextContract domain.ContractID
	nextClause   domain.ClauseID
}

// NewClauseStore creates a new in-memory clause store.
func NewClauseStore() *ClauseStore {
	return &ClauseStore{
		contracts:    make(map[domain.ContractID]domain.Contract),
		clauses:      make(map[domain.ClauseID]domain.Clause),
		nextContract: 1,
		nextClause:   1,
	}
}

// SaveContract stores a new contract and assigns its ID.
func (s *ClauseStore) SaveContract(_ context.Context, contract *domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract.ID = s.nextContract
	s.nextContract++
	if contract.UploadedAt.IsZero() {
		contract.UploadedAt = time.Now().UTC()
	}
	if contract.Status == "" {
		contract.Status = domain.StatusPending
	}
	s.contracts[contract.ID] = *contract
	return nil
}

// GetContract retrieves a contract by ID.
func (s *ClauseStore) GetContract(_ context.Context, id domain.ContractID) (*domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &contract, nil
}

// ListContracts returns stored contracts, newest first.
func (s *ClauseStore) ListContracts(_ context.Context) ([]domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contracts := make([]domain.Contract, 0, len(s.contracts))
	for _, contract := range s.contracts {
		contracts = append(contracts, contract)
	}
	slices.SortFunc(contracts, func(a, b domain.Contract) int {
		return int(b.ID - a.ID)
	})
	return contracts, nil
}

// UpdateContractStatus records pipeline progress for a contract.
func (s *ClauseStore) UpdateContractStatus(_ context.Context, id domain.ContractID, status domain.ContractStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[id]
	if !ok {
		return domain.ErrNotFound
	}
	contract.Status = status
	if status == domain.StatusCompleted || status == domain.StatusFailed {
		contract.ProcessedAt = time.Now().UTC()
	}
	s.contracts[id] = contract
	return nil
}

// SaveClauses stores clauses atomically and assigns their IDs.
func (s *ClauseStore) SaveClauses(_ context.Context, clauses []domain.Clause) ([]domain.Clause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness check over (contract, segment) before any write so the
	// batch is all-or-nothing.
	seen := make(map[string]bool)
	for _, clause := range clauses {
		key := fmt.Sprintf("%d/%s", clause.ContractID, clause.SegmentID)
		if seen[key] {
			return nil, fmt.Errorf("%w: segment %q in contract %d",
				domain.ErrDuplicateClause, clause.SegmentID, clause.ContractID)
		}
		seen[key] = true
	}
	for _, existing := range s.clauses {
		key := fmt.Sprintf("%d/%s", existing.ContractID, existing.SegmentID)
		if seen[key] {
			return nil, fmt.Errorf("%w: segment %q in contract %d",
				domain.ErrDuplicateClause, existing.SegmentID, existing.ContractID)
		}
	}

	saved := make([]domain.Clause, len(clauses))
	for i, clause := range clauses {
		clause.ID = s.nextClause
		s.nextClause++
		if clause.SegmentID == "" {
			clause.SegmentID = uuid.NewString()
		}
		if clause.CreatedAt.IsZero() {
			clause.CreatedAt = time.Now().UTC()
		}
		// Store a private copy of the vector so neither the caller's
		// slice nor the returned one can mutate stored state.
		stored := clause
		stored.Embedding = slices.Clone(clause.Embedding)
		s.clauses[clause.ID] = stored
		saved[i] = clause
	}
	return saved, nil
}

// GetClauses retrieves all clauses for a contract in ascending ID order.
func (s *ClauseStore) GetClauses(_ context.Context, contractID domain.ContractID) ([]domain.Clause, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var clauses []domain.Clause
	for _, clause := range s.clauses {
		if clause.ContractID == contractID {
			clause.Embedding = slices.Clone(clause.Embedding)
			clauses = append(clauses, clause)
		}
	}
	slices.SortFunc(clauses, func(a, b domain.Clause) int {
		return int(a.ID - b.ID)
	})
	return clauses, nil
}

// UpdateEmbedding stores the full embedding vector for a clause.
// The vector is copied so a retrieval in flight sees either the old or
// the new state, never a partially written slice.
func (s *ClauseStore) UpdateEmbedding(_ context.Context, clauseID domain.ClauseID, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clause, ok := s.clauses[clauseID]
	if !ok {
		return domain.ErrNotFound
	}
	clause.Embedding = slices.Clone(embedding)
	s.clauses[clauseID] = clause
	return nil
}

// DeleteContract removes a contract and its clauses.
func (s *ClauseStore) DeleteContract(_ context.Context, id domain.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.contracts, id)
	for clauseID, clause := range s.clauses {
		if clause.ContractID == id {
			delete(s.clauses, clauseID)
		}
	}
	return nil
}
