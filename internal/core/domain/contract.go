package domain

import (
	"strconv"
	"time"
)

// ContractID identifies a stored contract.
type ContractID int64

// ClauseID is the stable, persistent identifier of a clause.
//
// It is deliberately a distinct type from ContextPosition: a ClauseID
// survives across requests and is what gets persisted and reported,
// while a ContextPosition is only meaningful within one Q&A cycle.
type ClauseID int64

// ContractStatus tracks progress through the ingestion pipeline.
type ContractStatus string

// Contract processing states.
const (
	StatusPending    ContractStatus = "pending"
	StatusProcessing ContractStatus = "processing"
	StatusCompleted  ContractStatus = "completed"
	StatusFailed     ContractStatus = "failed"
)

// Contract represents a legal contract document uploaded to the system.
type Contract struct {
	// ID is the stable database identifier.
	ID ContractID

	// Title is the optional human-facing contract name.
	Title string

	// Text is the full contract text.
	Text string

	// Status is the processing state (pending/processing/completed/failed).
	Status ContractStatus

	// UploadedAt is when the contract was first stored.
	UploadedAt time.Time

	// ProcessedAt is when ingestion (segmentation + embedding) finished.
	// Zero until processing completes.
	ProcessedAt time.Time
}

// Clause is an immutable-once-created unit of contract text.
//
// A clause may or may not carry an embedding. Absence is a valid state:
// the clause is simply invisible to semantic retrieval until a backfill
// run embeds it.
type Clause struct {
	// ID is the stable database identifier, unique within the store.
	ID ClauseID

	// ContractID links to the owning contract.
	ContractID ContractID

	// SegmentID is the identifier assigned at segmentation time,
	// unique within the owning contract.
	SegmentID string

	// Number is the human-facing clause number (e.g. "2.1"), if any.
	Number string

	// Title is the clause heading (e.g. "Termination"), if any.
	Title string

	// Text is the full clause body.
	Text string

	// Embedding is the vector representation, nil until computed.
	// When present its length must equal the embedding model's
	// dimensionality; a partially written vector is never stored.
	Embedding []float32

	// CreatedAt is when the clause was stored.
	CreatedAt time.Time
}

// HasEmbedding reports whether the clause can participate in retrieval.
func (c *Clause) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// DisplayNumber returns the clause number, or a synthesized placeholder
// derived from the given zero-based position when the clause is unnumbered.
func (c *Clause) DisplayNumber(pos ContextPosition) string {
	if c.Number != "" {
		return c.Number
	}
	return "Clause " + strconv.Itoa(int(pos)+1)
}

// DisplayTitle returns the clause title, or "Untitled" when absent.
func (c *Clause) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "Untitled"
}
