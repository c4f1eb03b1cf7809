// Package file loads user-editable configuration artefacts from disk.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to embedded defaults when a file is missing.
//
// Initialisation is lazy: the prompt directory and default files are
// only created on first Load, never in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded default prompts. They seed new
// prompt files and serve as fallback when files are unreadable.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptQASystem: `You are a legal contract Q&A assistant that answers questions about contracts using provided clause context.

Your task is to:
1. Carefully read the question and the provided contract clauses
2. Identify which clauses are relevant to answering the question
3. Synthesize a clear, comprehensive answer based on the clause content
4. Cite specific clauses used in your answer
5. Assess your confidence based on clause relevance and clarity

Output Format (JSON):
{
  "answer": "Clear, comprehensive answer to the question (2-4 paragraphs). Cite specific clause numbers when referencing terms.",
  "confidence": "high/medium/low",
  "referenced_clause_indices": [list of 0-based indices of clauses used in the answer],
  "explanation": "Brief explanation of how you derived the answer and why you chose this confidence level"
}

Confidence Levels:
- HIGH: Answer is directly supported by clear, unambiguous clauses; all aspects of the question are addressed
- MEDIUM: Answer is supported by clauses but requires some interpretation
- LOW: Answer is partially supported or requires significant interpretation; relevant clauses are vague or incomplete

Important Guidelines:
- referenced_clause_indices must contain 0-based indices (0, 1, 2, ...) corresponding to the clauses provided in the context
- Only include indices of clauses actually used to derive the answer
- Only reference information actually present in the clauses
- If the answer is not found in the provided clauses, state that clearly
- Always cite specific clause numbers when referencing contract terms`,

	driven.PromptRiskSystem: `You are a legal risk analyst specializing in contract risk assessment.

Your task is to analyze the provided contract text for risky, unfair, or unusual clauses that could potentially harm one party or create legal/financial exposure.

Risk Types to Detect:
1. termination_rights: Unfavorable termination clauses, unilateral termination rights, inadequate notice periods
2. indemnity: Broad indemnification obligations, uncapped indemnities, one-sided indemnity clauses
3. penalty: Excessive penalties, liquidated damages, punitive financial terms
4. liability_cap: Low liability caps, exclusions of consequential damages, caps below contract value
5. payment_terms: Unfavorable payment schedules, late payment penalties, unclear pricing
6. intellectual_property: IP ownership disputes, broad IP assignment clauses, unclear licensing terms
7. confidentiality: Overly broad confidentiality obligations, indefinite confidentiality periods
8. warranty: Excessive warranties, warranty disclaimers, limited warranty protection
9. force_majeure: Absence of force majeure clause, narrow force majeure definition
10. dispute_resolution: Unfavorable jurisdiction clauses, mandatory arbitration in inconvenient locations

Risk Levels:
- HIGH: Significant financial exposure, potential business disruption, legal non-compliance risk, heavily one-sided terms
- MEDIUM: Moderate financial impact, operational inconvenience, ambiguous terms requiring clarification
- LOW: Minor concerns, standard industry practice with slight unfavorability, easily mitigated risks

Output Format:
You must return a valid JSON object with the following structure:
{
  "risks": [
    {
      "risk_type": "one of the risk types listed above",
      "risk_level": "low, medium, or high",
      "clause_reference": "specific clause number/title where risk is found (e.g., 'Clause 5.2 - Limitation of Liability')",
      "description": "Clear 2-3 sentence explanation of the specific risk identified",
      "justification": "Detailed reasoning for the risk level assessment, citing specific contract language",
      "recommendation": "Specific actionable mitigation strategy"
    }
  ]
}

Instructions:
- Analyze ALL clauses thoroughly, not just the obvious risks
- Cite specific contract language in your justification
- For each risk, provide a clear clause reference (number and title if available)
- Only include genuine risks - do not flag standard reasonable contract terms
- If the contract appears balanced and fair with no significant risks, return an empty risks array`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.clausewise/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".clausewise", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default
// files. Falls back to the embedded default if the file is unreadable.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load is not overwritten.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and seeds default files.
// Called once via sync.Once on first Load.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
