package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// Generation parameters for answer generation.
const (
	// generateTemperature balances consistency and natural language.
	generateTemperature = 0.2

	// generateMaxTokens bounds answers to a few paragraphs.
	generateMaxTokens = 1024
)

// defaultQASystemPrompt is the fallback instruction when no PromptStore
// is configured. It mandates the JSON shape the generator validates.
const defaultQASystemPrompt = `You are a legal contract Q&A assistant that answers questions about contracts using provided clause context.

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
- Always cite specific clause numbers when referencing contract terms`

// Generator wraps an LLM service and turns a question plus assembled
// context into a validated StructuredAnswer.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewGenerator creates a generator over the given LLM service.
// The prompt store is optional; when nil the embedded default is used.
func NewGenerator(llm driven.LLMService, prompts driven.PromptStore) *Generator {
	return &Generator{llm: llm, prompts: prompts}
}

// rawAnswer mirrors the JSON shape mandated by the system prompt.
type rawAnswer struct {
	Answer            string `json:"answer"`
	Confidence        string `json:"confidence"`
	ReferencedIndices []int  `json:"referenced_clause_indices"`
	Explanation       string `json:"explanation"`
}

// Generate invokes the language model and strictly validates its output.
//
// Any malformed JSON, missing required field, or confidence outside the
// allowed set fails with domain.ErrGenerationFailed. Nothing is patched
// with a guessed default; only an absent referenced_clause_indices is
// tolerated (it defaults to empty, meaning "the model cited nothing").
func (g *Generator) Generate(ctx context.Context, question, contextText string) (*domain.StructuredAnswer, error) {
	systemPrompt := g.systemPrompt()
	userPrompt := fmt.Sprintf(`Question: %s

Relevant Contract Clauses:
%s

Please answer the question based on the provided clauses. Return your response in the JSON format specified in the system prompt.`,
		question, contextText)

	logger.Debug("calling %s for answer generation", g.llm.ModelName())
	reply, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, driven.ChatOptions{
		MaxTokens:    generateMaxTokens,
		Temperature:  generateTemperature,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	return parseStructuredAnswer(reply)
}

// parseStructuredAnswer decodes and validates the model's JSON reply.
func parseStructuredAnswer(reply string) (*domain.StructuredAnswer, error) {
	var raw rawAnswer
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON response: %w", domain.ErrGenerationFailed, err)
	}

	if strings.TrimSpace(raw.Answer) == "" {
		return nil, fmt.Errorf("%w: response missing answer field", domain.ErrGenerationFailed)
	}

	confidence, ok := domain.ParseConfidence(raw.Confidence)
	if !ok {
		return nil, fmt.Errorf("%w: invalid confidence level %q (must be high/medium/low)",
			domain.ErrGenerationFailed, raw.Confidence)
	}

	indices := raw.ReferencedIndices
	if indices == nil {
		indices = []int{}
	}

	return &domain.StructuredAnswer{
		Answer:            raw.Answer,
		Confidence:        confidence,
		ReferencedIndices: indices,
		Explanation:       raw.Explanation,
	}, nil
}

// systemPrompt loads the Q&A system prompt, falling back to the
// embedded default when no store is configured or the load fails.
func (g *Generator) systemPrompt() string {
	if g.prompts == nil {
		return defaultQASystemPrompt
	}
	prompt, err := g.prompts.Load(driven.PromptQASystem)
	if err != nil || prompt == "" {
		return defaultQASystemPrompt
	}
	return prompt
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models emit even in JSON mode. The JSON itself is still parsed
// strictly afterwards.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
