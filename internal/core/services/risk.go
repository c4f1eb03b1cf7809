package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// Analysis input limits shared by the risk analyzer and the summarizer.
const (
	// MinAnalysisTextLength is the minimum contract length (after
	// trimming) worth analysing. Shorter contracts are rejected.
	MinAnalysisTextLength = 100

	// MaxAnalysisTextLength caps the contract text sent to the model.
	MaxAnalysisTextLength = 80000

	// maxRiskFieldLength caps stored description, justification and
	// recommendation text.
	maxRiskFieldLength = 2000
)

// Risk generation parameters. The larger token budget covers a full
// multi-risk assessment in one reply.
const (
	riskTemperature = 0.2
	riskMaxTokens   = 4096
)

// defaultRiskSystemPrompt is the fallback instruction when no
// PromptStore is configured. It mandates the JSON shape the analyzer
// validates.
const defaultRiskSystemPrompt = `You are a legal risk analyst specializing in contract risk assessment.

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
- If the contract appears balanced and fair with no significant risks, return an empty risks array`

// clauseNumberRx extracts the first clause-like number from a model
// clause reference, e.g. "5.2" out of "Clause 5.2 - Liability".
var clauseNumberRx = regexp.MustCompile(`\b(\d+(?:\.\d+)*)\b`)

// RiskAnalyzer assesses a contract for risky clauses using the language
// model and persists the validated results.
type RiskAnalyzer struct {
	store    driven.ClauseStore
	analyses driven.AnalysisStore
	llm      driven.LLMService
	prompts  driven.PromptStore
}

// NewRiskAnalyzer creates a risk analyzer. The prompt store is
// optional; when nil the embedded default instruction is used.
func NewRiskAnalyzer(store driven.ClauseStore, analyses driven.AnalysisStore,
	llm driven.LLMService, prompts driven.PromptStore) *RiskAnalyzer {
	return &RiskAnalyzer{store: store, analyses: analyses, llm: llm, prompts: prompts}
}

// rawRisk mirrors one element of the JSON risks array.
type rawRisk struct {
	RiskType        string `json:"risk_type"`
	RiskLevel       string `json:"risk_level"`
	ClauseReference string `json:"clause_reference"`
	Description     string `json:"description"`
	Justification   string `json:"justification"`
	Recommendation  string `json:"recommendation"`
}

// AnalyzeRisks runs one risk assessment cycle for the contract.
//
// The model's output is validated strictly: every risk needs a known
// category, a known severity and non-empty description and
// justification, or the whole assessment fails with
// domain.ErrGenerationFailed. Clause references are matched back to
// stored clause IDs best-effort; an unmatched reference leaves the
// assessment contract-level rather than failing it.
func (a *RiskAnalyzer) AnalyzeRisks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error) {
	contract, err := a.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(contract.Text)
	if len(text) < MinAnalysisTextLength {
		return nil, fmt.Errorf("%w (minimum %d characters)", domain.ErrContractTooShort, MinAnalysisTextLength)
	}

	clauses, err := a.store.GetClauses(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if len(text) > MaxAnalysisTextLength {
		logger.Warn("contract %d text truncated from %d to %d chars for risk analysis",
			contractID, len(text), MaxAnalysisTextLength)
		text = truncateText(text, MaxAnalysisTextLength)
	}

	logger.Info("analyzing risks for contract %d (%d chars, %d clauses)",
		contractID, len(text), len(clauses))

	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: a.systemPrompt()},
		{Role: "user", Content: riskUserPrompt(text, clauses)},
	}, driven.ChatOptions{
		MaxTokens:    riskMaxTokens,
		Temperature:  riskTemperature,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	risks, err := parseRisks(reply, contractID, clauses)
	if err != nil {
		return nil, err
	}

	saved, err := a.analyses.SaveRisks(ctx, risks)
	if err != nil {
		return nil, fmt.Errorf("saving risk assessments: %w", err)
	}

	counts := map[domain.RiskLevel]int{}
	for _, r := range saved {
		counts[r.Level]++
	}
	logger.Info("risk analysis complete for contract %d: %d risks (%d high, %d medium, %d low)",
		contractID, len(saved), counts[domain.RiskHigh], counts[domain.RiskMedium], counts[domain.RiskLow])
	return saved, nil
}

// Risks returns stored assessments, highest severity first.
func (a *RiskAnalyzer) Risks(ctx context.Context, contractID domain.ContractID) ([]domain.RiskAssessment, error) {
	if _, err := a.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return a.analyses.ListRisks(ctx, contractID)
}

// riskUserPrompt renders the contract text plus a clause structure
// listing, which improves the model's clause reference accuracy.
func riskUserPrompt(text string, clauses []domain.Clause) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following contract for risky, unfair, or unusual clauses.\n\nCONTRACT TEXT:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nContract Clause Structure:\n")
	for _, clause := range clauses {
		fmt.Fprintf(&sb, "Clause %s - %s\n", clause.Number, clause.Title)
	}
	sb.WriteString("\nProvide a comprehensive risk assessment following the instructions in the system prompt.")
	return sb.String()
}

// parseRisks decodes and validates the model's JSON reply, matching
// clause references to stored clause IDs.
func parseRisks(reply string, contractID domain.ContractID, clauses []domain.Clause) ([]domain.RiskAssessment, error) {
	var raw struct {
		Risks []rawRisk `json:"risks"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON response: %w", domain.ErrGenerationFailed, err)
	}

	risks := make([]domain.RiskAssessment, 0, len(raw.Risks))
	for i, r := range raw.Risks {
		riskType, ok := domain.ParseRiskType(r.RiskType)
		if !ok {
			return nil, fmt.Errorf("%w: risk %d has invalid risk_type %q",
				domain.ErrGenerationFailed, i, r.RiskType)
		}
		level, ok := domain.ParseRiskLevel(r.RiskLevel)
		if !ok {
			return nil, fmt.Errorf("%w: risk %d has invalid risk_level %q",
				domain.ErrGenerationFailed, i, r.RiskLevel)
		}
		if strings.TrimSpace(r.Description) == "" {
			return nil, fmt.Errorf("%w: risk %d missing description", domain.ErrGenerationFailed, i)
		}
		if strings.TrimSpace(r.Justification) == "" {
			return nil, fmt.Errorf("%w: risk %d missing justification", domain.ErrGenerationFailed, i)
		}

		risks = append(risks, domain.RiskAssessment{
			ContractID:      contractID,
			ClauseID:        matchClauseReference(r.ClauseReference, clauses),
			ClauseReference: r.ClauseReference,
			Type:            riskType,
			Level:           level,
			Description:     capRiskField(r.Description),
			Justification:   capRiskField(r.Justification),
			Recommendation:  capRiskField(r.Recommendation),
		})
	}
	return risks, nil
}

// matchClauseReference resolves a model clause reference like
// "Clause 5.2 - Limitation of Liability" to a stored clause ID. Tried
// in order: exact title match, exact number match on the first
// clause-like number in the reference, then title substring in either
// direction. Returns nil when nothing matches; an unmatched reference
// is a contract-level risk, not an error.
func matchClauseReference(ref string, clauses []domain.Clause) *domain.ClauseID {
	ref = strings.TrimSpace(ref)
	if ref == "" || len(clauses) == 0 {
		return nil
	}
	refLower := strings.ToLower(ref)

	for _, clause := range clauses {
		if clause.Title != "" && strings.ToLower(strings.TrimSpace(clause.Title)) == refLower {
			id := clause.ID
			return &id
		}
	}

	if m := clauseNumberRx.FindString(ref); m != "" {
		for _, clause := range clauses {
			if strings.TrimSpace(clause.Number) == m {
				id := clause.ID
				return &id
			}
		}
	}

	for _, clause := range clauses {
		if clause.Title == "" {
			continue
		}
		titleLower := strings.ToLower(clause.Title)
		if strings.Contains(refLower, titleLower) || strings.Contains(titleLower, refLower) {
			id := clause.ID
			return &id
		}
	}

	logger.Debug("could not match clause reference %q to any clause", ref)
	return nil
}

// capRiskField bounds stored assessment text, marking the cut.
func capRiskField(s string) string {
	if len(s) <= maxRiskFieldLength {
		return s
	}
	return truncateText(s, maxRiskFieldLength-3) + "..."
}

// systemPrompt loads the risk instruction, falling back to the embedded
// default when no store is configured or the load fails.
func (a *RiskAnalyzer) systemPrompt() string {
	if a.prompts == nil {
		return defaultRiskSystemPrompt
	}
	prompt, err := a.prompts.Load(driven.PromptRiskSystem)
	if err != nil || prompt == "" {
		return defaultRiskSystemPrompt
	}
	return prompt
}
