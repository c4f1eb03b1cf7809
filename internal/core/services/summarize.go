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

// Summary generation parameters. A slightly higher temperature than
// Q&A keeps the prose natural; the token budget keeps summaries focused.
const (
	summaryTemperature = 0.3
	summaryMaxTokens   = 2048

	// minSummaryKeyPoints is the fewest key points accepted in a reply.
	minSummaryKeyPoints = 3
)

// summaryBasePrompt opens every summarisation instruction; a
// role-specific section and the output format are appended per call.
const summaryBasePrompt = `You are an expert legal contract analyst specializing in creating plain-language summaries of legal contracts.

Your task is to translate complex legal jargon into clear, accessible language that non-lawyers can understand. Focus on extracting and explaining the most important information in a straightforward, concise manner.

`

// summaryRoleContexts holds the per-perspective section of the prompt.
var summaryRoleContexts = map[domain.SummaryRole]string{
	domain.RoleSupplier: `Focus on what matters to the SUPPLIER/VENDOR:
- Highlight supplier obligations, deliverables, and performance requirements
- Emphasize payment terms, timing, and conditions
- Point out supplier rights, protections, and limitations of liability
- Identify risks and potential issues for the supplier
`,
	domain.RoleClient: `Focus on what matters to the CLIENT/BUYER:
- Highlight client protections, rights, and entitlements
- Emphasize what the client is receiving and guarantees
- Point out client obligations and payment commitments
- Identify risks and potential issues for the client
`,
	domain.RoleNeutral: `Provide a BALANCED, NEUTRAL perspective:
- Present information objectively without favoring either party
- Highlight key terms and conditions fairly
- Explain obligations and rights for all parties equally
- Identify potential concerns for all stakeholders
`,
}

// summaryOutputFormat mandates the JSON shape the summarizer validates.
const summaryOutputFormat = `
Provide your analysis as a structured JSON object with the following fields:

{
    "summary": "Main plain-language summary (3-5 well-structured paragraphs explaining the contract's purpose, key terms, and overall structure)",
    "key_points": ["List of 5-10 most important points from the contract, in order of significance"],
    "parties": "Brief description of the parties involved",
    "key_dates": ["List of important dates, deadlines, milestones, and time periods"],
    "financial_terms": "Clear summary of payment terms, amounts, schedules, and any financial penalties",
    "obligations": {
        "supplier": ["Key obligations of the supplier/vendor"],
        "client": ["Key obligations of the client/buyer"]
    },
    "rights": {
        "supplier": ["Key rights and protections for the supplier"],
        "client": ["Key rights and protections for the client"]
    },
    "termination": "Explanation of how and when the contract can be terminated",
    "risks": ["Top 3-5 risks or concerns to be aware of"],
    "confidence": "Your confidence in the summary quality: 'high', 'medium', or 'low'"
}

Guidelines:
- Use clear, simple language that a non-lawyer can understand
- Avoid legal jargon where possible; if you must use legal terms, explain them
- Be concise but comprehensive
- Use specific examples and numbers rather than vague statements
- If information is not present in the contract, omit that field`

// Summarizer produces persisted plain-language contract summaries from
// a chosen stakeholder perspective.
type Summarizer struct {
	store    driven.ClauseStore
	analyses driven.AnalysisStore
	llm      driven.LLMService
}

// NewSummarizer creates a summarizer over the given LLM service.
func NewSummarizer(store driven.ClauseStore, analyses driven.AnalysisStore, llm driven.LLMService) *Summarizer {
	return &Summarizer{store: store, analyses: analyses, llm: llm}
}

// Summarize generates, validates and persists one summary.
//
// The reply must carry a non-empty summary and at least
// minSummaryKeyPoints key points; anything less fails with
// domain.ErrGenerationFailed rather than storing a partial summary.
func (s *Summarizer) Summarize(ctx context.Context, contractID domain.ContractID, role domain.SummaryRole) (*domain.ContractSummary, error) {
	role, ok := domain.ParseSummaryRole(string(role))
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be supplier, client or neutral)", domain.ErrInvalidRole, role)
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(contract.Text)
	if len(text) < MinAnalysisTextLength {
		return nil, fmt.Errorf("%w (minimum %d characters)", domain.ErrContractTooShort, MinAnalysisTextLength)
	}
	if len(text) > MaxAnalysisTextLength {
		logger.Warn("contract %d text truncated from %d to %d chars for summarization",
			contractID, len(text), MaxAnalysisTextLength)
		text = truncateText(text, MaxAnalysisTextLength)
	}

	logger.Info("summarizing contract %d from the %s perspective", contractID, role)

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: summarySystemPrompt(role)},
		{Role: "user", Content: summaryUserPrompt(text, role)},
	}, driven.ChatOptions{
		MaxTokens:    summaryMaxTokens,
		Temperature:  summaryTemperature,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	content, err := parseSummary(reply)
	if err != nil {
		return nil, err
	}

	summary := &domain.ContractSummary{
		ContractID: contractID,
		Type:       domain.SummaryRoleSpecific,
		Role:       role,
		Content:    *content,
	}
	if role == domain.RoleNeutral {
		summary.Type = domain.SummaryOverview
	}

	if err := s.analyses.SaveSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("saving summary: %w", err)
	}
	return summary, nil
}

// Summaries returns stored summaries, newest first.
func (s *Summarizer) Summaries(ctx context.Context, contractID domain.ContractID) ([]domain.ContractSummary, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.analyses.ListSummaries(ctx, contractID)
}

// summarySystemPrompt assembles the instruction for the given role.
func summarySystemPrompt(role domain.SummaryRole) string {
	return summaryBasePrompt + summaryRoleContexts[role] + summaryOutputFormat
}

// summaryUserPrompt renders the contract text with a role reminder.
func summaryUserPrompt(text string, role domain.SummaryRole) string {
	if role == domain.RoleNeutral {
		return fmt.Sprintf(`Please analyze the following contract and provide a comprehensive plain-language summary with a balanced, neutral perspective.

Contract Text:
%s

Remember to maintain objectivity and clarity for non-lawyers.`, text)
	}
	return fmt.Sprintf(`Please analyze the following contract from the %s perspective and provide a comprehensive plain-language summary.

Contract Text:
%s

Remember to focus on what matters most to the %s, while maintaining clarity and accessibility for non-lawyers.`,
		strings.ToUpper(string(role)), text, role)
}

// parseSummary decodes and validates the model's JSON reply.
func parseSummary(reply string) (*domain.SummaryContent, error) {
	var content domain.SummaryContent
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &content); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON response: %w", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(content.Summary) == "" {
		return nil, fmt.Errorf("%w: response missing summary field", domain.ErrGenerationFailed)
	}
	if len(content.KeyPoints) < minSummaryKeyPoints {
		return nil, fmt.Errorf("%w: response carries %d key points (minimum %d)",
			domain.ErrGenerationFailed, len(content.KeyPoints), minSummaryKeyPoints)
	}
	return &content, nil
}
