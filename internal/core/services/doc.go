// Package services implements the core business logic for Clausewise.
//
// It contains the retrieval-augmented Q&A pipeline and the ingestion
// pipeline that feeds it:
//
//   - Embedder: validated embedding generation over a provider service
//   - Retriever: exact nearest-neighbour search scoped to one contract
//   - AssembleContext: context rendering with position/number/title maps
//   - Generator: structured answer generation with strict validation
//   - ResolveCitations: three-tier citation reconciliation
//   - QAService: the orchestrator implementing driving.AnswerService
//   - IngestService: segmentation, persistence and embedding backfill
//
// Services depend only on domain types and driven ports; adapters are
// injected at the composition root.
package services
