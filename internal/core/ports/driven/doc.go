// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ClauseStore: contract and clause persistence, embedding writes
//   - HistoryStore: question-answer audit persistence
//   - EmbeddingService: generates vector embeddings
//   - LLMService: language model completions
//
// # Optional Interfaces
//
//   - PromptStore: user-customisable prompt templates; when nil,
//     embedded defaults are used
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
