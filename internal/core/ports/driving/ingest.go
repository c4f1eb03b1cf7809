package driving

import (
	"context"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// IngestService turns raw contract text into stored, embedded clauses.
type IngestService interface {
	// Ingest segments the contract text, persists the contract and its
	// clauses, then embeds the clauses best-effort. Embedding failures
	// never roll back the insert; affected clauses simply remain
	// unembedded until a future backfill.
	Ingest(ctx context.Context, title, text string) (*domain.Contract, []domain.Clause, error)

	// Backfill embeds any clauses of the contract that still lack an
	// embedding. Returns the number of clauses embedded.
	Backfill(ctx context.Context, contractID domain.ContractID) (int, error)
}
