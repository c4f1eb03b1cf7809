package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateClause indicates a clause segment identifier collides
	// within its contract. The (contract, segment) pair must be unique.
	ErrDuplicateClause = errors.New("duplicate clause")

	// ErrQuestionTooShort indicates the question failed the minimum
	// length check. A caller-correctable input error.
	ErrQuestionTooShort = errors.New("question too short")

	// ErrTextTooShort indicates text below the minimum meaningful length
	// for embedding. Short inputs are rejected, never silently degraded.
	ErrTextTooShort = errors.New("text too short for embedding")

	// ErrEmbeddingFailed indicates the embedding provider failed or
	// returned a vector of the wrong dimensionality.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDimensionMismatch indicates a provider vector whose length does
	// not match the configured embedding dimension. Always a hard failure.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoEmbeddedClauses indicates the retrieval scope held zero
	// embedded clauses. The contract may not have been fully processed.
	ErrNoEmbeddedClauses = errors.New("no clause embeddings found")

	// ErrGenerationFailed indicates the language model returned malformed
	// or invalid-shaped output, or the call itself failed.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrContractTooShort indicates contract text below the minimum
	// meaningful length for analysis. A caller-correctable input error.
	ErrContractTooShort = errors.New("contract text too short for analysis")

	// ErrInvalidRole indicates an unknown summary perspective.
	ErrInvalidRole = errors.New("invalid summary role")

	// ErrConfiguration indicates missing provider credentials or an
	// otherwise unusable provider configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no language model service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// IsInputError reports whether err is caller-correctable (4xx-equivalent)
// rather than a system failure (5xx-equivalent). The HTTP boundary uses
// this split to decide whether the caller should retry or fix the request.
func IsInputError(err error) bool {
	return errors.Is(err, ErrQuestionTooShort) ||
		errors.Is(err, ErrNoEmbeddedClauses) ||
		errors.Is(err, ErrTextTooShort) ||
		errors.Is(err, ErrContractTooShort) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrDuplicateClause)
}
