package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// riskPayload is the JSON shape of a risk assessment in responses.
type riskPayload struct {
	ID              int64            `json:"id"`
	ClauseID        *domain.ClauseID `json:"clause_id,omitempty"`
	ClauseReference string           `json:"clause_reference,omitempty"`
	RiskType        domain.RiskType  `json:"risk_type"`
	RiskLevel       domain.RiskLevel `json:"risk_level"`
	Description     string           `json:"description"`
	Justification   string           `json:"justification"`
	Recommendation  string           `json:"recommendation,omitempty"`
	AssessedAt      time.Time        `json:"assessed_at"`
}

// summaryPayload is the JSON shape of a contract summary in responses.
type summaryPayload struct {
	ID        int64                 `json:"id"`
	Type      string                `json:"summary_type"`
	Role      domain.SummaryRole    `json:"role"`
	Content   domain.SummaryContent `json:"content"`
	CreatedAt time.Time             `json:"created_at"`
}

func toRiskPayloads(risks []domain.RiskAssessment) []riskPayload {
	payloads := make([]riskPayload, len(risks))
	for i, risk := range risks {
		payloads[i] = riskPayload{
			ID:              risk.ID,
			ClauseID:        risk.ClauseID,
			ClauseReference: risk.ClauseReference,
			RiskType:        risk.Type,
			RiskLevel:       risk.Level,
			Description:     risk.Description,
			Justification:   risk.Justification,
			Recommendation:  risk.Recommendation,
			AssessedAt:      risk.AssessedAt,
		}
	}
	return payloads
}

func toSummaryPayload(summary *domain.ContractSummary) summaryPayload {
	return summaryPayload{
		ID:        summary.ID,
		Type:      summary.Type,
		Role:      summary.Role,
		Content:   summary.Content,
		CreatedAt: summary.CreatedAt,
	}
}

func (s *Server) handleAnalyzeRisks(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	risks, err := s.analysis.AnalyzeRisks(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"risks": toRiskPayloads(risks)})
}

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	risks, err := s.analysis.Risks(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"risks": toRiskPayloads(risks)})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The body is optional; an absent or empty one means neutral.
	var req struct {
		Role string `json:"role"`
	}
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	summary, err := s.analysis.Summarize(r.Context(), id, domain.SummaryRole(req.Role))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := s.analysis.Summaries(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payloads := make([]summaryPayload, len(summaries))
	for i := range summaries {
		payloads[i] = toSummaryPayload(&summaries[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": payloads})
}
