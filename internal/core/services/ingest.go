package services

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize is how many clauses are sent to the provider per
// embedding request during ingestion.
const embedBatchSize = 64

// IngestService segments contract text, persists the result and embeds
// the clauses best-effort.
type IngestService struct {
	store    driven.ClauseStore
	embedder *Embedder

	// limiter throttles embedding batches so bulk ingestion stays
	// under the provider's rate limits. Optional.
	limiter *rate.Limiter
}

// NewIngestService creates an ingestion service. The embedder is
// optional: when nil, clauses are stored unembedded and must be
// backfilled later.
func NewIngestService(store driven.ClauseStore, embedder *Embedder) *IngestService {
	return &IngestService{store: store, embedder: embedder}
}

// SetRateLimit throttles embedding batches to r requests per second.
func (s *IngestService) SetRateLimit(r rate.Limit, burst int) {
	s.limiter = rate.NewLimiter(r, burst)
}

// Ingest segments the text, stores the contract and clauses in one
// transaction, then embeds the stored clauses. Embedding is best-effort:
// failures are logged and never roll back the insert.
func (s *IngestService) Ingest(ctx context.Context, title, text string) (*domain.Contract, []domain.Clause, error) {
	logger.Section("Contract Ingestion")

	contract := &domain.Contract{
		Title:  title,
		Text:   text,
		Status: domain.StatusPending,
	}
	if err := s.store.SaveContract(ctx, contract); err != nil {
		return nil, nil, fmt.Errorf("save contract: %w", err)
	}

	segments := SegmentContract(text)
	for i := range segments {
		segments[i].ContractID = contract.ID
	}
	logger.Info("segmented contract %d into %d clauses", contract.ID, len(segments))

	clauses, err := s.store.SaveClauses(ctx, segments)
	if err != nil {
		return nil, nil, fmt.Errorf("save clauses: %w", err)
	}

	if err := s.store.UpdateContractStatus(ctx, contract.ID, domain.StatusProcessing); err != nil {
		logger.Warn("updating contract %d status: %v", contract.ID, err)
	}
	contract.Status = domain.StatusProcessing

	status := domain.StatusCompleted
	if s.embedder != nil {
		if embedded := s.embedClauses(ctx, clauses); embedded == 0 && len(clauses) > 0 {
			status = domain.StatusFailed
		}
	}

	if err := s.store.UpdateContractStatus(ctx, contract.ID, status); err != nil {
		logger.Warn("updating contract %d status: %v", contract.ID, err)
	}
	contract.Status = status

	// Re-read so the returned clauses carry the embeddings just stored.
	clauses, err = s.store.GetClauses(ctx, contract.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get clauses: %w", err)
	}

	return contract, clauses, nil
}

// Backfill embeds any clauses of the contract still lacking an
// embedding and returns the number embedded.
func (s *IngestService) Backfill(ctx context.Context, contractID domain.ContractID) (int, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	all, err := s.store.GetClauses(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("get clauses: %w", err)
	}

	var pending []domain.Clause
	for _, clause := range all {
		if !clause.HasEmbedding() {
			pending = append(pending, clause)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	logger.Info("backfilling embeddings for %d of %d clauses (contract %d)",
		len(pending), len(all), contractID)
	return s.embedClauses(ctx, pending), nil
}

// embedClauses embeds the given clauses in batches and stores each full
// vector as it arrives. Individual failures are logged and skipped; a
// failed clause simply stays unembedded.
func (s *IngestService) embedClauses(ctx context.Context, clauses []domain.Clause) int {
	embedded := 0
	for start := 0; start < len(clauses); start += embedBatchSize {
		end := min(start+embedBatchSize, len(clauses))
		batch := clauses[start:end]

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				logger.Warn("embedding backfill interrupted: %v", err)
				return embedded
			}
		}

		texts := make([]string, len(batch))
		for i, clause := range batch {
			texts[i] = clause.Text
		}

		results := s.embedder.EmbedBatch(ctx, texts)
		stored := 0
		for i, res := range results {
			if res.Err != nil {
				logger.Warn("embedding clause %d failed: %v", batch[i].ID, res.Err)
				continue
			}
			if err := s.store.UpdateEmbedding(ctx, batch[i].ID, res.Vector); err != nil {
				logger.Warn("storing embedding for clause %d failed: %v", batch[i].ID, err)
				continue
			}
			stored++
		}

		// A stored count below the batch attempt can be benign (short
		// clauses rejected by validation) or a sign of caller batching
		// gone wrong; it is surfaced in the log either way.
		if stored < len(batch) {
			logger.Warn("embedded %d of %d clauses in batch", stored, len(batch))
		}
		embedded += stored
	}
	return embedded
}
