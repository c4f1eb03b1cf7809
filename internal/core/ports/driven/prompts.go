package driven

// Prompt template names used with PromptStore.
const (
	// PromptQASystem is the system instruction for contract Q&A.
	// It mandates the JSON answer shape the generator validates.
	PromptQASystem = "qa_system"

	// PromptRiskSystem is the system instruction for risk analysis.
	// It mandates the JSON risks shape the analyzer validates.
	PromptRiskSystem = "risk_system"
)

// PromptStore loads named prompt templates.
// Implementations fall back to embedded defaults when a template
// is missing or unreadable.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
