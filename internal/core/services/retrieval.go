package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// DefaultTopK is the number of most similar clauses retrieved per question.
const DefaultTopK = 5

// Retriever performs exact nearest-neighbour search over the embedded
// clauses of one contract.
type Retriever struct {
	store driven.ClauseStore
}

// NewRetriever creates a retriever over the given clause store.
func NewRetriever(store driven.ClauseStore) *Retriever {
	return &Retriever{store: store}
}

// Search returns the k clauses of the contract nearest to the query
// vector by squared Euclidean distance, ascending (most similar first).
// Clauses without an embedding, or with an embedding of a different
// dimension than the query, are invisible to the search. Ties are broken
// by ascending clause ID so repeated calls return identical orderings.
//
// An empty result is not an error here; the orchestrator treats it as
// terminal (domain.ErrNoEmbeddedClauses).
func (r *Retriever) Search(
	ctx context.Context, contractID domain.ContractID, query []float32, k int,
) ([]domain.RetrievedClause, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	clauses, err := r.store.GetClauses(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("get clauses: %w", err)
	}

	results := make([]domain.RetrievedClause, 0, len(clauses))
	for _, clause := range clauses {
		if !clause.HasEmbedding() || len(clause.Embedding) != len(query) {
			continue
		}
		results = append(results, domain.RetrievedClause{
			Clause:   clause,
			Distance: squaredL2(query, clause.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Clause.ID < results[j].Clause.ID
	})

	inScope := len(results)
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("retrieval: %d embedded clauses in scope, returning %d", inScope, len(results))
	return results, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors
// of equal length. Smaller means more similar. The square root is never
// taken: it cannot change the ordering and the raw value is cheaper.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
