package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.QARecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// RecordQA stores one interaction, assigning ID and timestamp.
func (s *HistoryStore) RecordQA(_ context.Context, record *domain.QARecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.NewString()
	record.AskedAt = time.Now().UTC()
	s.records = append(s.records, *record)
	return nil
}

// ListQA returns the interactions for a contract, newest first.
func (s *HistoryStore) ListQA(_ context.Context, contractID domain.ContractID) ([]domain.QARecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.QARecord
	for _, record := range s.records {
		if record.ContractID == contractID {
			records = append(records, record)
		}
	}
	slices.Reverse(records)
	return records, nil
}
