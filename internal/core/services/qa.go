package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.AnswerService = (*QAService)(nil)

// MinQuestionLength is the minimum character count for a valid question,
// matching the embedding input requirement.
const MinQuestionLength = 10

// QAService orchestrates one retrieval-augmented Q&A cycle:
// validate → embed question → retrieve → assemble context → generate →
// reconcile citations → record history.
//
// The cycle is strictly sequential; no step starts before the previous
// step's result is available, and no retries are performed. Multiple
// cycles may run concurrently: the service holds no mutable state beyond
// the shared provider handles, which are safe for concurrent use.
type QAService struct {
	store     driven.ClauseStore
	history   driven.HistoryStore
	embedder  *Embedder
	retriever *Retriever
	generator *Generator
	topK      int
}

// NewQAService creates the Q&A orchestrator. The history store is
// optional; when nil, answers are not recorded.
func NewQAService(
	store driven.ClauseStore,
	history driven.HistoryStore,
	embedder *Embedder,
	generator *Generator,
) *QAService {
	return &QAService{
		store:     store,
		history:   history,
		embedder:  embedder,
		retriever: NewRetriever(store),
		generator: generator,
		topK:      DefaultTopK,
	}
}

// SetTopK overrides the number of clauses retrieved per question.
func (s *QAService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// AnswerQuestion answers a natural-language question about a contract.
func (s *QAService) AnswerQuestion(
	ctx context.Context, contractID domain.ContractID, question string,
) (*domain.Answer, error) {
	logger.Section("Q&A Cycle")

	// Input validation.
	question = strings.TrimSpace(question)
	if len(question) < MinQuestionLength {
		return nil, fmt.Errorf("%w (minimum %d characters)", domain.ErrQuestionTooShort, MinQuestionLength)
	}
	logger.Info("question for contract %d: %.100q", contractID, question)

	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}

	// Embed the question. The query embedding is ephemeral: computed
	// fresh on every request, never cached.
	queryVec, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	// Retrieve the most similar clauses within the contract scope.
	retrieved, err := s.retriever.Search(ctx, contractID, queryVec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve clauses: %w", err)
	}
	if len(retrieved) == 0 {
		// Proceeding with an empty context would produce an answer
		// grounded in nothing. Terminal instead.
		return nil, fmt.Errorf("%w for contract %d: contract may not have been fully processed",
			domain.ErrNoEmbeddedClauses, contractID)
	}
	logger.Info("retrieved %d similar clauses", len(retrieved))

	// Assemble the context block and its lookup tables.
	contextBlock := AssembleContext(retrieved)

	// Generate the structured answer.
	structured, err := s.generator.Generate(ctx, question, contextBlock.Text)
	if err != nil {
		return nil, err
	}

	// Reconcile the model's citations to stable clause identifiers.
	// Never fails: with a non-empty retrieval the top-N fallback
	// guarantees a non-empty citation set.
	clauseIDs := ResolveCitations(structured, contextBlock, retrieved)

	answer := &domain.Answer{
		ContractID:          contractID,
		Answer:              structured.Answer,
		Confidence:          structured.Confidence,
		Explanation:         structured.Explanation,
		ReferencedClauseIDs: clauseIDs,
	}

	s.record(ctx, question, answer)

	logger.Info("answered with %d referenced clauses (confidence: %s)",
		len(clauseIDs), answer.Confidence)
	return answer, nil
}

// History returns past interactions for a contract, newest first.
func (s *QAService) History(ctx context.Context, contractID domain.ContractID) ([]domain.QARecord, error) {
	if s.history == nil {
		return nil, nil
	}
	records, err := s.history.ListQA(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// record persists the interaction best-effort. A history write failure
// never fails the answer that was already produced.
func (s *QAService) record(ctx context.Context, question string, answer *domain.Answer) {
	if s.history == nil {
		return
	}
	rec := &domain.QARecord{
		ContractID:          answer.ContractID,
		Question:            question,
		Answer:              answer.Answer,
		Confidence:          answer.Confidence,
		ReferencedClauseIDs: answer.ReferencedClauseIDs,
	}
	if err := s.history.RecordQA(ctx, rec); err != nil {
		logger.Warn("recording Q&A history failed: %v", err)
	}
}
