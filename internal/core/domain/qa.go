package domain

import (
	"strings"
	"time"
)

// ContextPosition is the zero-based index under which a retrieved clause
// was shown to the language model. It is scoped to a single Q&A cycle and
// is never a database identifier. See ClauseID for the persistent type.
type ContextPosition int

// Confidence is the model's self-assessed answer confidence.
type Confidence string

// Allowed confidence labels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalises a model-supplied confidence label.
// Matching is case-insensitive; anything outside the three allowed
// labels is rejected rather than coerced to a default.
func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh, true
	case ConfidenceMedium:
		return ConfidenceMedium, true
	case ConfidenceLow:
		return ConfidenceLow, true
	default:
		return "", false
	}
}

// RetrievedClause pairs a clause with its distance to the query vector.
type RetrievedClause struct {
	// Clause is the matched clause. Always carries an embedding.
	Clause Clause

	// Distance is the squared Euclidean distance to the query vector.
	// Smaller means more similar.
	Distance float64
}

// ContextBlock is the rendered retrieval context for one Q&A cycle,
// together with the lookup tables that bridge what the model sees
// (positions, numbers, titles) back to stable clause identifiers.
//
// The maps are built in the same pass that renders Text, so they cannot
// drift from what was actually shown to the model. Truncation shortens
// Text only; it never removes map entries.
type ContextBlock struct {
	// Text is the labelled clause block shown to the model,
	// possibly truncated to the context character budget.
	Text string

	// Truncated reports whether Text was cut at the budget.
	Truncated bool

	// ByPosition maps the zero-based display index to the clause ID.
	ByPosition map[ContextPosition]ClauseID

	// ByNumber maps human-facing clause numbers (e.g. "2.1") to clause IDs.
	ByNumber map[string]ClauseID

	// ByTitle maps clause titles to clause IDs.
	ByTitle map[string]ClauseID
}

// StructuredAnswer is the validated shape of the model's JSON output.
type StructuredAnswer struct {
	// Answer is the model's prose answer. Never empty after validation.
	Answer string

	// Confidence is one of high/medium/low.
	Confidence Confidence

	// ReferencedIndices are the context positions the model claims to
	// have used. May be empty; entries are unvalidated integers exactly
	// as the model supplied them.
	ReferencedIndices []int

	// Explanation is the model's reasoning note. Optional.
	Explanation string
}

// Answer is the final output of one Q&A cycle: the answer text plus the
// reconciled, stable clause identifiers backing it.
type Answer struct {
	ContractID          ContractID
	Answer              string
	Confidence          Confidence
	Explanation         string
	ReferencedClauseIDs []ClauseID
}

// QARecord is a persisted question-answer interaction.
type QARecord struct {
	ID                  string
	ContractID          ContractID
	Question            string
	Answer              string
	Confidence          Confidence
	ReferencedClauseIDs []ClauseID
	AskedAt             time.Time
}
