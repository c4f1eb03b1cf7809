// Package domain defines the core business entities for Clausewise.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Contract: An uploaded legal contract document
//   - Clause: A contiguous segment of contract text with a stable identifier
//   - RetrievedClause: A clause paired with its similarity distance
//   - ContextBlock: The rendered retrieval context shown to the model
//   - StructuredAnswer: The model's raw, validated answer payload
//   - Answer: The final reconciled answer with stable clause identifiers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
